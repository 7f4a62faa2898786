package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.AccountRepository      = accountRepo{}
	_ repository.JournalRepository      = journalRepo{}
	_ repository.FiscalPeriodRepository = periodRepo{}
)

// ── Plan de cuentas ───────────────────────────────────────────────────────────

type accountRepo struct{ st *state }

func (r accountRepo) Create(_ context.Context, a *entity.Account) error {
	if _, ok := r.st.accounts[a.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.st.accounts {
		if existing.Code == a.Code {
			return domain.ErrDuplicate
		}
	}
	c := *a
	r.st.accounts[a.ID] = &c
	return nil
}

func (r accountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	a, ok := r.st.accounts[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r accountRepo) GetByCode(_ context.Context, code string) (*entity.Account, error) {
	for _, a := range r.st.accounts {
		if a.Code == code {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (r accountRepo) List(_ context.Context) ([]*entity.Account, error) {
	out := make([]*entity.Account, 0, len(r.st.accounts))
	for _, a := range r.st.accounts {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r accountRepo) Update(_ context.Context, a *entity.Account) error {
	if _, ok := r.st.accounts[a.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.st.accounts {
		if existing.ID != a.ID && existing.Code == a.Code {
			return domain.ErrDuplicate
		}
	}
	c := *a
	r.st.accounts[a.ID] = &c
	return nil
}

func (r accountRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.accounts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.accounts, id)
	return nil
}

func (r accountRepo) HasPostedLines(_ context.Context, id string) (bool, error) {
	for _, e := range r.st.journals {
		if e.Status == entity.JournalStatusDraft {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r accountRepo) HasLines(_ context.Context, id string) (bool, error) {
	for _, e := range r.st.journals {
		for _, l := range e.Lines {
			if l.AccountID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// ── Asientos ──────────────────────────────────────────────────────────────────

type journalRepo struct{ st *state }

func (r journalRepo) Create(_ context.Context, e *entity.JournalEntry) error {
	if _, ok := r.st.journals[e.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.st.journals {
		if e.Number != "" && existing.Number == e.Number {
			return domain.ErrDuplicate
		}
	}
	r.st.journals[e.ID] = cloneEntry(e)
	r.st.journalOrder = append(r.st.journalOrder, e.ID)
	return nil
}

func (r journalRepo) GetForUpdate(ctx context.Context, id string) (*entity.JournalEntry, error) {
	return r.GetByID(ctx, id)
}

func (r journalRepo) GetByID(_ context.Context, id string) (*entity.JournalEntry, error) {
	e, ok := r.st.journals[id]
	if !ok {
		return nil, nil
	}
	return cloneEntry(e), nil
}

func (r journalRepo) UpdateStatus(_ context.Context, e *entity.JournalEntry) error {
	stored, ok := r.st.journals[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = e.Status
	stored.PostedAt = e.PostedAt
	stored.VoidedAt = e.VoidedAt
	stored.UpdatedAt = e.UpdatedAt
	return nil
}

func (r journalRepo) FindBySource(_ context.Context, kind entity.ReferenceKind, refID string) ([]*entity.JournalEntry, error) {
	var out []*entity.JournalEntry
	for _, id := range r.st.journalOrder {
		e := r.st.journals[id]
		if e.Status == entity.JournalStatusVoided || e.Source == nil {
			continue
		}
		if e.Source.Kind() == kind && e.Source.RefID() == refID {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (r journalRepo) PostedDebitExists(_ context.Context, kind entity.ReferenceKind, purchaseOrderID, accountID string) (bool, error) {
	for _, e := range r.st.journals {
		if e.Status != entity.JournalStatusPosted || e.Source == nil || e.Source.Kind() != kind {
			continue
		}
		if entity.PurchaseOrderOf(e.Source) != purchaseOrderID {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID && l.Debit.IsPositive() {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r journalRepo) TotalsByAccount(_ context.Context, dr repository.DateRange) ([]repository.AccountTotals, error) {
	sums := make(map[string]*repository.AccountTotals)
	for _, e := range r.st.journals {
		if e.Status != entity.JournalStatusPosted || !dr.Contains(e.EntryDate) {
			continue
		}
		for _, l := range e.Lines {
			t, ok := sums[l.AccountID]
			if !ok {
				a := r.st.accounts[l.AccountID]
				if a == nil {
					continue
				}
				t = &repository.AccountTotals{
					AccountID: a.ID, Code: a.Code, Name: a.Name, Type: a.Type, Category: a.Category,
					Debit: decimal.Zero, Credit: decimal.Zero,
				}
				sums[l.AccountID] = t
			}
			t.Debit = t.Debit.Add(l.Debit)
			t.Credit = t.Credit.Add(l.Credit)
		}
	}
	out := make([]repository.AccountTotals, 0, len(sums))
	for _, t := range sums {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r journalRepo) AccountTotals(_ context.Context, accountID string, dr repository.DateRange) (decimal.Decimal, decimal.Decimal, error) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range r.st.journals {
		if e.Status != entity.JournalStatusPosted || !dr.Contains(e.EntryDate) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				debit = debit.Add(l.Debit)
				credit = credit.Add(l.Credit)
			}
		}
	}
	return debit, credit, nil
}

// ── Períodos ──────────────────────────────────────────────────────────────────

type periodRepo struct{ st *state }

func (r periodRepo) Get(_ context.Context, year, month int) (*entity.FiscalPeriod, error) {
	p, ok := r.st.periods[periodKey{year, month}]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r periodRepo) Upsert(_ context.Context, p *entity.FiscalPeriod) error {
	c := *p
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	r.st.periods[periodKey{p.Year, p.Month}] = &c
	return nil
}
