package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/manufactura-erp/internal/application/outbox"
	"github.com/jhoicas/manufactura-erp/internal/application/ports"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	domacc "github.com/jhoicas/manufactura-erp/internal/domain/accounting"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/jhoicas/manufactura-erp/internal/application/accounting")

// SequenceKeyJournal clave del generador de números de asiento.
const SequenceKeyJournal = "JE"

// LineInput línea de un asiento a crear.
type LineInput struct {
	AccountID   string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// JournalInput entrada de CreateJournalEntry. Source nil equivale a entity.ManualRef{}.
// AutoPost crea el asiento directamente en POSTED.
type JournalInput struct {
	EntryDate       time.Time
	Description     string
	Reference       string
	Source          entity.Reference
	Lines           []LineInput
	IsAutoGenerated bool
	AutoPost        bool
	ReversalOfID    string
	CreatedBy       string
}

// JournalEventPayload cuerpo de los eventos journal.entry.*.
type JournalEventPayload struct {
	EntryID       string          `json:"entry_id"`
	Number        string          `json:"number"`
	Status        string          `json:"status"`
	EntryDate     time.Time       `json:"entry_date"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Total         decimal.Decimal `json:"total"`
}

// JournalEngine valida, contabiliza, anula y reversa asientos, y deriva los reportes.
// Los métodos InTx corren en la transacción del caller; el resto abre la suya.
type JournalEngine struct {
	tx      repository.TxRunner
	periods *PeriodGate
	seq     ports.Sequencer
	audit   ports.ActivityLogger
	log     zerolog.Logger
	now     func() time.Time
}

// NewJournalEngine construye el motor contable.
func NewJournalEngine(
	tx repository.TxRunner,
	periods *PeriodGate,
	seq ports.Sequencer,
	audit ports.ActivityLogger,
	log zerolog.Logger,
) *JournalEngine {
	return &JournalEngine{
		tx:      tx,
		periods: periods,
		seq:     seq,
		audit:   audit,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateInTx valida Σdébito == Σcrédito y el período antes de escribir cualquier fila.
func (e *JournalEngine) CreateInTx(ctx context.Context, uow repository.UnitOfWork, in JournalInput) (*entity.JournalEntry, error) {
	lines := make([]entity.JournalLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.JournalLine{
			ID:          uuid.New().String(),
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		})
	}
	if err := domacc.ValidateLines(lines); err != nil {
		return nil, err
	}
	if in.EntryDate.IsZero() {
		in.EntryDate = e.now()
	}
	if err := e.periods.EnsureOpenInTx(ctx, uow, in.EntryDate); err != nil {
		return nil, err
	}
	if err := e.ensureAccounts(ctx, uow, lines); err != nil {
		return nil, err
	}

	number, err := e.seq.NextSequence(ctx, SequenceKeyJournal)
	if err != nil {
		return nil, fmt.Errorf("número de asiento: %w", err)
	}
	src := in.Source
	if src == nil {
		src = entity.ManualRef{}
	}
	now := e.now()
	entry := &entity.JournalEntry{
		ID:              uuid.New().String(),
		Number:          number,
		EntryDate:       in.EntryDate,
		Description:     in.Description,
		Reference:       in.Reference,
		Source:          src,
		Status:          entity.JournalStatusDraft,
		IsAutoGenerated: in.IsAutoGenerated,
		ReversalOfID:    in.ReversalOfID,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i := range lines {
		lines[i].EntryID = entry.ID
	}
	entry.Lines = lines
	if in.AutoPost {
		entry.Status = entity.JournalStatusPosted
		entry.PostedAt = &now
	}
	if err := uow.Journals().Create(ctx, entry); err != nil {
		return nil, err
	}
	if entry.Status == entity.JournalStatusPosted {
		if err := e.enqueue(ctx, uow, entity.TopicJournalPosted, entry); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

func (e *JournalEngine) ensureAccounts(ctx context.Context, uow repository.UnitOfWork, lines []entity.JournalLine) error {
	for _, l := range lines {
		acc, err := uow.Accounts().GetByID(ctx, l.AccountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return fmt.Errorf("cuenta %s: %w", l.AccountID, domain.ErrNotFound)
		}
	}
	return nil
}

// CreateJournalEntry crea un asiento en su propia transacción.
func (e *JournalEngine) CreateJournalEntry(ctx context.Context, in JournalInput) (*entity.JournalEntry, error) {
	var entry *entity.JournalEntry
	err := e.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		entry, err = e.CreateInTx(ctx, uow, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.activity(ctx, "journal.created", entry, in.CreatedBy)
	return entry, nil
}

func (e *JournalEngine) lockEntry(ctx context.Context, uow repository.UnitOfWork, id string) (*entity.JournalEntry, error) {
	entry, err := uow.Journals().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// PostInTx DRAFT → POSTED.
func (e *JournalEngine) PostInTx(ctx context.Context, uow repository.UnitOfWork, id string) (*entity.JournalEntry, error) {
	entry, err := e.lockEntry(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != entity.JournalStatusDraft {
		return nil, fmt.Errorf("%w: %s no está en DRAFT", domain.ErrInvalidStatus, entry.Number)
	}
	if err := domacc.ValidateLines(entry.Lines); err != nil {
		return nil, err
	}
	if err := e.periods.EnsureOpenInTx(ctx, uow, entry.EntryDate); err != nil {
		return nil, err
	}
	if err := e.ensureAccounts(ctx, uow, entry.Lines); err != nil {
		return nil, err
	}
	now := e.now()
	entry.Status = entity.JournalStatusPosted
	entry.PostedAt = &now
	entry.UpdatedAt = now
	if err := uow.Journals().UpdateStatus(ctx, entry); err != nil {
		return nil, err
	}
	if err := e.enqueue(ctx, uow, entity.TopicJournalPosted, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// PostJournal contabiliza un asiento en borrador.
func (e *JournalEngine) PostJournal(ctx context.Context, id, userID string) (*entity.JournalEntry, error) {
	return e.run(ctx, "journal.posted", userID, func(ctx context.Context, uow repository.UnitOfWork) (*entity.JournalEntry, error) {
		return e.PostInTx(ctx, uow, id)
	})
}

// VoidInTx POSTED → VOIDED. El asiento queda para auditoría y sale de todos los saldos.
func (e *JournalEngine) VoidInTx(ctx context.Context, uow repository.UnitOfWork, id string) (*entity.JournalEntry, error) {
	entry, err := e.lockEntry(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != entity.JournalStatusPosted {
		return nil, fmt.Errorf("%w: %s no está en POSTED", domain.ErrInvalidStatus, entry.Number)
	}
	if err := e.periods.EnsureOpenInTx(ctx, uow, entry.EntryDate); err != nil {
		return nil, err
	}
	now := e.now()
	entry.Status = entity.JournalStatusVoided
	entry.VoidedAt = &now
	entry.UpdatedAt = now
	if err := uow.Journals().UpdateStatus(ctx, entry); err != nil {
		return nil, err
	}
	if err := e.enqueue(ctx, uow, entity.TopicJournalVoided, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// VoidJournal anula un asiento contabilizado.
func (e *JournalEngine) VoidJournal(ctx context.Context, id, userID string) (*entity.JournalEntry, error) {
	return e.run(ctx, "journal.voided", userID, func(ctx context.Context, uow repository.UnitOfWork) (*entity.JournalEntry, error) {
		return e.VoidInTx(ctx, uow, id)
	})
}

// ReverseInTx crea y contabiliza un asiento nuevo con débitos y créditos intercambiados.
// El original sigue POSTED; un asiento se reversa una sola vez y uno VOIDED no se reversa.
// date nil usa la fecha actual.
func (e *JournalEngine) ReverseInTx(ctx context.Context, uow repository.UnitOfWork, id string, date *time.Time, userID string) (*entity.JournalEntry, error) {
	original, err := e.lockEntry(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if original.Status != entity.JournalStatusPosted {
		return nil, fmt.Errorf("%w: solo se reversan asientos POSTED (%s)", domain.ErrInvalidStatus, original.Number)
	}
	existing, err := uow.Journals().FindBySource(ctx, entity.RefReversal, original.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s por %s", domain.ErrAlreadyReversed, original.Number, existing[0].Number)
	}

	swapped := domacc.SwapLines(original.Lines)
	lines := make([]LineInput, 0, len(swapped))
	for _, l := range swapped {
		lines = append(lines, LineInput{AccountID: l.AccountID, Description: l.Description, Debit: l.Debit, Credit: l.Credit})
	}
	entryDate := e.now()
	if date != nil {
		entryDate = *date
	}
	return e.CreateInTx(ctx, uow, JournalInput{
		EntryDate:       entryDate,
		Description:     "Reversa de " + original.Number + ": " + original.Description,
		Reference:       original.Reference,
		Source:          entity.ReversalRef{OriginalEntryID: original.ID},
		Lines:           lines,
		IsAutoGenerated: original.IsAutoGenerated,
		AutoPost:        true,
		ReversalOfID:    original.ID,
		CreatedBy:       userID,
	})
}

// ReverseJournal reversa un asiento contabilizado.
func (e *JournalEngine) ReverseJournal(ctx context.Context, id string, date *time.Time, userID string) (*entity.JournalEntry, error) {
	return e.run(ctx, "journal.reversed", userID, func(ctx context.Context, uow repository.UnitOfWork) (*entity.JournalEntry, error) {
		return e.ReverseInTx(ctx, uow, id, date, userID)
	})
}

// GetEntry asiento con sus líneas.
func (e *JournalEngine) GetEntry(ctx context.Context, id string) (*entity.JournalEntry, error) {
	var entry *entity.JournalEntry
	err := e.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		entry, err = uow.Journals().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// ── Lecturas derivadas (solo POSTED) ──────────────────────────────────────────

// AccountBalance saldo firmado según la naturaleza de la cuenta.
func (e *JournalEngine) AccountBalance(ctx context.Context, accountID string, r repository.DateRange) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := e.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		acc, err := uow.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrNotFound
		}
		debit, credit, err := uow.Journals().AccountTotals(ctx, accountID, r)
		if err != nil {
			return err
		}
		balance = domacc.NormalBalance(acc.Type, debit, credit)
		return nil
	})
	return balance, err
}

func (e *JournalEngine) totals(ctx context.Context, r repository.DateRange) ([]repository.AccountTotals, error) {
	var totals []repository.AccountTotals
	err := e.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		totals, err = uow.Journals().TotalsByAccount(ctx, r)
		return err
	})
	return totals, err
}

// TrialBalance balance de comprobación del rango.
func (e *JournalEngine) TrialBalance(ctx context.Context, r repository.DateRange) (domacc.TrialBalance, error) {
	totals, err := e.totals(ctx, r)
	if err != nil {
		return domacc.TrialBalance{}, err
	}
	return domacc.BuildTrialBalance(totals), nil
}

// IncomeStatement estado de resultados del rango.
func (e *JournalEngine) IncomeStatement(ctx context.Context, r repository.DateRange) (domacc.IncomeStatement, error) {
	totals, err := e.totals(ctx, r)
	if err != nil {
		return domacc.IncomeStatement{}, err
	}
	return domacc.BuildIncomeStatement(totals), nil
}

// BalanceSheet balance general acumulado hasta asOf.
func (e *JournalEngine) BalanceSheet(ctx context.Context, asOf time.Time) (domacc.BalanceSheet, error) {
	totals, err := e.totals(ctx, repository.DateRange{To: &asOf})
	if err != nil {
		return domacc.BalanceSheet{}, err
	}
	return domacc.BuildBalanceSheet(totals), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (e *JournalEngine) run(
	ctx context.Context, action, userID string,
	fn func(ctx context.Context, uow repository.UnitOfWork) (*entity.JournalEntry, error),
) (*entity.JournalEntry, error) {
	ctx, span := tracer.Start(ctx, action)
	defer span.End()

	var entry *entity.JournalEntry
	err := e.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		entry, err = fn(ctx, uow)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("entry_id", entry.ID), attribute.String("number", entry.Number))
	e.activity(ctx, action, entry, userID)
	return entry, nil
}

func (e *JournalEngine) activity(ctx context.Context, action string, entry *entity.JournalEntry, userID string) {
	e.log.Info().
		Str("entry_id", entry.ID).
		Str("number", entry.Number).
		Str("status", entry.Status).
		Msg(action)
	ports.LogBestEffort(ctx, e.audit, entity.ActivityEvent{
		Action:   action,
		Entity:   "journal_entry",
		EntityID: entry.ID,
		Actor:    userID,
		Meta:     map[string]any{"number": entry.Number, "status": entry.Status},
		At:       e.now(),
	})
}

func (e *JournalEngine) enqueue(ctx context.Context, uow repository.UnitOfWork, topic string, entry *entity.JournalEntry) error {
	debit, _ := entry.Totals()
	return outbox.Enqueue(ctx, uow.Outbox(), topic, entry.ID, JournalEventPayload{
		EntryID:       entry.ID,
		Number:        entry.Number,
		Status:        entry.Status,
		EntryDate:     entry.EntryDate,
		ReferenceType: string(entry.Source.Kind()),
		ReferenceID:   entry.Source.RefID(),
		Total:         debit,
	})
}
