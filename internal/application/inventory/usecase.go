package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/manufactura-erp/internal/application/outbox"
	"github.com/jhoicas/manufactura-erp/internal/application/ports"
	"github.com/jhoicas/manufactura-erp/internal/application/retry"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/inventory"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/jhoicas/manufactura-erp/internal/application/inventory")

// MovementResult movimientos escritos por una operación y los asientos que generaron.
type MovementResult struct {
	Movements []*entity.StockMovement
	Journals  []*entity.JournalEntry
	// UnitCost costo unitario aplicado (recepción, producción) cuando aplica.
	UnitCost decimal.Decimal
}

// MovementEventPayload cuerpo del evento inventory.movement.recorded.
type MovementEventPayload struct {
	MovementID        string          `json:"movement_id"`
	Type              string          `json:"type"`
	ProductVariantID  string          `json:"product_variant_id"`
	FromLocationID    string          `json:"from_location_id,omitempty"`
	ToLocationID      string          `json:"to_location_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Reference         string          `json:"reference,omitempty"`
	BatchID           string          `json:"batch_id,omitempty"`
	VoidsMovementID   string          `json:"voids_movement_id,omitempty"`
	ProductionOrderID string          `json:"production_order_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ReceiveGoodsInput recepción de mercancía a un costo unitario dado.
// BatchNumber crea un lote con la cantidad recibida.
type ReceiveGoodsInput struct {
	LocationID        string
	ProductVariantID  string
	Quantity          decimal.Decimal
	UnitCost          decimal.Decimal
	GoodsReceiptID    string
	PurchaseOrderID   string
	Reference         string
	BatchNumber       string
	ManufacturingDate *time.Time
	ExpiryDate        *time.Time
	UserID            string
}

// IssueLine línea de salida.
type IssueLine struct {
	LocationID       string
	ProductVariantID string
	Quantity         decimal.Decimal
}

// IssueStockInput salida por venta (SalesOrderID) o consumo de producción (ProductionOrderID).
// Las reservas del documento no restan disponibilidad y se consumen con la salida.
type IssueStockInput struct {
	Lines             []IssueLine
	SalesOrderID      string
	ProductionOrderID string
	Reference         string
	UserID            string
}

// TransferInput traslado entre ubicaciones al costo promedio del origen.
type TransferInput struct {
	FromLocationID   string
	ToLocationID     string
	ProductVariantID string
	Quantity         decimal.Decimal
	TransferOrderID  string
	Reference        string
	UserID           string
}

// AdjustInput ajuste de conteo. Quantity con signo: positivo suma, negativo resta.
// UnitCost nil valoriza el sobrante al costo promedio vigente.
type AdjustInput struct {
	LocationID       string
	ProductVariantID string
	Quantity         decimal.Decimal
	UnitCost         *decimal.Decimal
	Reference        string
	UserID           string
}

// ProductionInput cierre de un lote de producción: consume materiales y da entrada al producto
// terminado al costo de manufactura.
type ProductionInput struct {
	ProductionOrderID string
	Materials         []IssueLine
	OutputLocationID  string
	OutputVariantID   string
	YieldQuantity     decimal.Decimal
	ConversionCost    decimal.Decimal
	BatchNumber       string
	ExpiryDate        *time.Time
	Reference         string
	UserID            string
}

// VoidInput anulación de un movimiento registrado.
type VoidInput struct {
	MovementID string
	Reason     string
	UserID     string
}

// RegisterMovementUseCase operaciones de negocio sobre el stock. Cada una valida y bloquea todas
// las filas involucradas antes de mutar, escribe el log de movimientos, el asiento automático y el
// evento de outbox en una sola transacción.
type RegisterMovementUseCase struct {
	tx           repository.TxRunner
	ledger       *StockLedger
	reservations *ReservationManager
	journal      MovementJournaler
	audit        ports.ActivityLogger
	log          zerolog.Logger
	now          func() time.Time

	// Attempts intentos ante contención de bloqueos.
	Attempts int
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	tx repository.TxRunner,
	ledger *StockLedger,
	reservations *ReservationManager,
	journal MovementJournaler,
	audit ports.ActivityLogger,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		tx:           tx,
		ledger:       ledger,
		reservations: reservations,
		journal:      journal,
		audit:        audit,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
		Attempts:     3,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

// ReceiveGoodsInTx da entrada a la mercancía: recalcula el costo global de la variante y el
// promedio de la ubicación, crea el lote si se informa y registra el movimiento PURCHASE.
func (uc *RegisterMovementUseCase) ReceiveGoodsInTx(ctx context.Context, uow repository.UnitOfWork, in ReceiveGoodsInput) (*MovementResult, error) {
	if in.LocationID == "" || in.ProductVariantID == "" || !in.Quantity.IsPositive() || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	// Variante antes que saldo: mismo orden de bloqueo en toda entrada.
	if _, err := uc.ledger.UpdateGlobalCostInTx(ctx, uow, in.ProductVariantID, in.Quantity, in.UnitCost); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.ReceiveAtCostInTx(ctx, uow, in.LocationID, in.ProductVariantID, in.Quantity, in.UnitCost); err != nil {
		return nil, err
	}
	batchID, err := uc.createBatch(ctx, uow, in.BatchNumber, in.LocationID, in.ProductVariantID, in.Quantity, in.ManufacturingDate, in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	m := uc.movement(entity.MovementTypePURCHASE, in.ProductVariantID, "", in.LocationID, in.Quantity, in.UnitCost, in.Reference, in.UserID, now)
	m.GoodsReceiptID = in.GoodsReceiptID
	m.PurchaseOrderID = in.PurchaseOrderID
	m.BatchID = batchID

	res := &MovementResult{UnitCost: in.UnitCost}
	if err := uc.record(ctx, uow, m, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ReceiveGoods variante con transacción propia.
func (uc *RegisterMovementUseCase) ReceiveGoods(ctx context.Context, in ReceiveGoodsInput) (*MovementResult, error) {
	return uc.run(ctx, "inventory.receive_goods", in.UserID, func(ctx context.Context, uow repository.UnitOfWork) (*MovementResult, error) {
		return uc.ReceiveGoodsInTx(ctx, uow, in)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Salida
// ──────────────────────────────────────────────────────────────────────────────

// IssueStockInTx salida de varias líneas. Agrega las líneas por (ubicación, variante), bloquea y
// valida todas las filas en orden determinista y solo entonces descuenta: si una línea no alcanza,
// ninguna se aplica. Consume lotes FIFO y valoriza al costo promedio de la ubicación.
func (uc *RegisterMovementUseCase) IssueStockInTx(ctx context.Context, uow repository.UnitOfWork, in IssueStockInput) (*MovementResult, error) {
	if len(in.Lines) == 0 || (in.SalesOrderID == "" && in.ProductionOrderID == "") {
		return nil, domain.ErrInvalidInput
	}
	need := make(map[entity.BalanceKey]decimal.Decimal, len(in.Lines))
	for _, l := range in.Lines {
		if l.LocationID == "" || l.ProductVariantID == "" || !l.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		k := entity.BalanceKey{LocationID: l.LocationID, ProductVariantID: l.ProductVariantID}
		need[k] = need[k].Add(l.Quantity)
	}
	ref := in.SalesOrderID
	if ref == "" {
		ref = in.ProductionOrderID
	}

	keys := sortedKeys(need)
	costs := make(map[entity.BalanceKey]decimal.Decimal, len(keys))
	for _, k := range keys {
		if _, err := uc.ledger.LockAndValidateInTx(ctx, uow, k.LocationID, k.ProductVariantID, need[k], ref); err != nil {
			return nil, err
		}
		bal, err := uow.Balances().Get(ctx, k.LocationID, k.ProductVariantID)
		if err != nil {
			return nil, err
		}
		costs[k] = bal.AverageCost
	}

	now := uc.now()
	res := &MovementResult{}
	for _, k := range keys {
		qty := need[k]
		if err := uc.ledger.DeductStockInTx(ctx, uow, k.LocationID, k.ProductVariantID, qty); err != nil {
			return nil, err
		}
		parts, err := uc.consumeBatches(ctx, uow, k.LocationID, k.ProductVariantID, qty)
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			m := uc.movement(entity.MovementTypeOUT, k.ProductVariantID, k.LocationID, "", p.Quantity, costs[k], in.Reference, in.UserID, now)
			m.BatchID = p.BatchID
			m.SalesOrderID = in.SalesOrderID
			m.ProductionOrderID = in.ProductionOrderID
			if err := uc.record(ctx, uow, m, res); err != nil {
				return nil, err
			}
		}
		if err := uc.reservations.FulfillByReferenceInTx(ctx, uow, ref, k.LocationID, k.ProductVariantID, qty); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// IssueStock variante con transacción propia.
func (uc *RegisterMovementUseCase) IssueStock(ctx context.Context, in IssueStockInput) (*MovementResult, error) {
	return uc.run(ctx, "inventory.issue_stock", in.UserID, func(ctx context.Context, uow repository.UnitOfWork) (*MovementResult, error) {
		return uc.IssueStockInTx(ctx, uow, in)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslado
// ──────────────────────────────────────────────────────────────────────────────

// TransferStockInTx mueve stock entre ubicaciones. El destino recibe al costo promedio del origen,
// así el traslado no cambia el valor total del inventario. Los lotes se consumen FIFO en el origen;
// en el destino el stock llega sin lote.
func (uc *RegisterMovementUseCase) TransferStockInTx(ctx context.Context, uow repository.UnitOfWork, in TransferInput) (*MovementResult, error) {
	if in.FromLocationID == "" || in.ToLocationID == "" || in.ProductVariantID == "" ||
		in.FromLocationID == in.ToLocationID || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.lockMove(ctx, uow, in.FromLocationID, in.ToLocationID, in.ProductVariantID, in.Quantity, in.TransferOrderID); err != nil {
		return nil, err
	}
	src, err := uow.Balances().Get(ctx, in.FromLocationID, in.ProductVariantID)
	if err != nil {
		return nil, err
	}
	cost := src.AverageCost
	if err := uc.ledger.DeductStockInTx(ctx, uow, in.FromLocationID, in.ProductVariantID, in.Quantity); err != nil {
		return nil, err
	}
	if _, err := uc.consumeBatches(ctx, uow, in.FromLocationID, in.ProductVariantID, in.Quantity); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.ReceiveAtCostInTx(ctx, uow, in.ToLocationID, in.ProductVariantID, in.Quantity, cost); err != nil {
		return nil, err
	}
	if err := uc.reservations.FulfillByReferenceInTx(ctx, uow, in.TransferOrderID, in.FromLocationID, in.ProductVariantID, in.Quantity); err != nil {
		return nil, err
	}

	m := uc.movement(entity.MovementTypeTRANSFER, in.ProductVariantID, in.FromLocationID, in.ToLocationID, in.Quantity, cost, in.Reference, in.UserID, uc.now())
	res := &MovementResult{UnitCost: cost}
	if err := uc.record(ctx, uow, m, res); err != nil {
		return nil, err
	}
	return res, nil
}

// TransferStock variante con transacción propia.
func (uc *RegisterMovementUseCase) TransferStock(ctx context.Context, in TransferInput) (*MovementResult, error) {
	return uc.run(ctx, "inventory.transfer_stock", in.UserID, func(ctx context.Context, uow repository.UnitOfWork) (*MovementResult, error) {
		return uc.TransferStockInTx(ctx, uow, in)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajuste
// ──────────────────────────────────────────────────────────────────────────────

// AdjustStockInTx ajuste de conteo físico. El faltante valida solo contra el físico: la pérdida ya
// ocurrió aunque el stock estuviera reservado.
func (uc *RegisterMovementUseCase) AdjustStockInTx(ctx context.Context, uow repository.UnitOfWork, in AdjustInput) (*MovementResult, error) {
	if in.LocationID == "" || in.ProductVariantID == "" || in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	res := &MovementResult{}

	if in.Quantity.IsPositive() {
		cost, err := uc.adjustmentCost(ctx, uow, in)
		if err != nil {
			return nil, err
		}
		if _, err := uc.ledger.UpdateGlobalCostInTx(ctx, uow, in.ProductVariantID, in.Quantity, cost); err != nil {
			return nil, err
		}
		if _, err := uc.ledger.ReceiveAtCostInTx(ctx, uow, in.LocationID, in.ProductVariantID, in.Quantity, cost); err != nil {
			return nil, err
		}
		res.UnitCost = cost
		m := uc.movement(entity.MovementTypeADJUSTMENT, in.ProductVariantID, "", in.LocationID, in.Quantity, cost, in.Reference, in.UserID, now)
		if err := uc.record(ctx, uow, m, res); err != nil {
			return nil, err
		}
		return res, nil
	}

	qty := in.Quantity.Neg()
	if _, err := uc.ledger.LockPhysicalInTx(ctx, uow, in.LocationID, in.ProductVariantID, qty); err != nil {
		return nil, err
	}
	bal, err := uow.Balances().Get(ctx, in.LocationID, in.ProductVariantID)
	if err != nil {
		return nil, err
	}
	res.UnitCost = bal.AverageCost
	if err := uc.ledger.DeductStockInTx(ctx, uow, in.LocationID, in.ProductVariantID, qty); err != nil {
		return nil, err
	}
	parts, err := uc.consumeBatches(ctx, uow, in.LocationID, in.ProductVariantID, qty)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		m := uc.movement(entity.MovementTypeADJUSTMENT, in.ProductVariantID, in.LocationID, "", p.Quantity, bal.AverageCost, in.Reference, in.UserID, now)
		m.BatchID = p.BatchID
		if err := uc.record(ctx, uow, m, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// AdjustStock variante con transacción propia.
func (uc *RegisterMovementUseCase) AdjustStock(ctx context.Context, in AdjustInput) (*MovementResult, error) {
	return uc.run(ctx, "inventory.adjust_stock", in.UserID, func(ctx context.Context, uow repository.UnitOfWork) (*MovementResult, error) {
		return uc.AdjustStockInTx(ctx, uow, in)
	})
}

// adjustmentCost costo del sobrante: el informado, el promedio de la ubicación o, sin saldo, el estándar.
// Bloquea variante y saldo (mismo orden que toda entrada) antes de leer el costo.
func (uc *RegisterMovementUseCase) adjustmentCost(ctx context.Context, uow repository.UnitOfWork, in AdjustInput) (decimal.Decimal, error) {
	if in.UnitCost != nil {
		return *in.UnitCost, nil
	}
	product, err := uow.Products().GetForUpdate(ctx, in.ProductVariantID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, fmt.Errorf("variante %s: %w", in.ProductVariantID, domain.ErrNotFound)
	}
	if err := uow.Balances().Ensure(ctx, in.LocationID, in.ProductVariantID); err != nil {
		return decimal.Zero, err
	}
	bal, err := uow.Balances().GetForUpdate(ctx, in.LocationID, in.ProductVariantID)
	if err != nil {
		return decimal.Zero, err
	}
	if bal != nil && bal.Quantity.IsPositive() {
		return bal.AverageCost, nil
	}
	return product.StandardCost, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Producción
// ──────────────────────────────────────────────────────────────────────────────

// CompleteProductionInTx consume los materiales contra la orden de producción y da entrada al
// producto terminado a costo unitario = (materiales + conversión) / rendimiento.
// Con rendimiento cero los materiales se consumen y no hay entrada (el costo queda en proceso).
func (uc *RegisterMovementUseCase) CompleteProductionInTx(ctx context.Context, uow repository.UnitOfWork, in ProductionInput) (*MovementResult, error) {
	if in.ProductionOrderID == "" || len(in.Materials) == 0 ||
		in.YieldQuantity.IsNegative() || in.ConversionCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.YieldQuantity.IsPositive() && (in.OutputLocationID == "" || in.OutputVariantID == "") {
		return nil, domain.ErrInvalidInput
	}
	issued, err := uc.IssueStockInTx(ctx, uow, IssueStockInput{
		Lines:             in.Materials,
		ProductionOrderID: in.ProductionOrderID,
		Reference:         in.Reference,
		UserID:            in.UserID,
	})
	if err != nil {
		return nil, err
	}
	consumed := make([]inventory.ConsumedMaterial, 0, len(issued.Movements))
	for _, m := range issued.Movements {
		consumed = append(consumed, inventory.ConsumedMaterial{
			ProductVariantID: m.ProductVariantID,
			Quantity:         m.Quantity,
			UnitCost:         m.UnitCost(),
		})
	}
	unitCost := inventory.ComputeCOGM(consumed, in.ConversionCost, in.YieldQuantity)
	issued.UnitCost = unitCost
	if !in.YieldQuantity.IsPositive() {
		return issued, nil
	}

	if _, err := uc.ledger.UpdateGlobalCostInTx(ctx, uow, in.OutputVariantID, in.YieldQuantity, unitCost); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.ReceiveAtCostInTx(ctx, uow, in.OutputLocationID, in.OutputVariantID, in.YieldQuantity, unitCost); err != nil {
		return nil, err
	}
	now := uc.now()
	batchID, err := uc.createBatch(ctx, uow, in.BatchNumber, in.OutputLocationID, in.OutputVariantID, in.YieldQuantity, &now, in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	m := uc.movement(entity.MovementTypeIN, in.OutputVariantID, "", in.OutputLocationID, in.YieldQuantity, unitCost, in.Reference, in.UserID, now)
	m.ProductionOrderID = in.ProductionOrderID
	m.BatchID = batchID
	if err := uc.record(ctx, uow, m, issued); err != nil {
		return nil, err
	}
	return issued, nil
}

// CompleteProduction variante con transacción propia.
func (uc *RegisterMovementUseCase) CompleteProduction(ctx context.Context, in ProductionInput) (*MovementResult, error) {
	return uc.run(ctx, "inventory.complete_production", in.UserID, func(ctx context.Context, uow repository.UnitOfWork) (*MovementResult, error) {
		return uc.CompleteProductionInTx(ctx, uow, in)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

// VoidMovementInTx compensa un movimiento con otro de tipo VOID en sentido contrario y reversa su
// asiento. El log no se edita. Devolver stock a una ubicación recalcula su promedio al costo
// original; retirarlo conserva el promedio.
func (uc *RegisterMovementUseCase) VoidMovementInTx(ctx context.Context, uow repository.UnitOfWork, in VoidInput) (*MovementResult, error) {
	if in.MovementID == "" {
		return nil, domain.ErrInvalidInput
	}
	orig, err := uow.Movements().GetByID(ctx, in.MovementID)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, fmt.Errorf("movimiento %s: %w", in.MovementID, domain.ErrNotFound)
	}
	if orig.Type == entity.MovementTypeVOID {
		return nil, fmt.Errorf("un movimiento VOID no se anula: %w", domain.ErrInvalidStatus)
	}
	prev, err := uow.Movements().FindVoiding(ctx, orig.ID)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return nil, fmt.Errorf("movimiento %s ya anulado por %s: %w", orig.ID, prev.ID, domain.ErrConflict)
	}

	// El VOID invierte el sentido: sale de donde entró y entra de donde salió.
	from, to := orig.ToLocationID, orig.FromLocationID
	if err := uc.lockMove(ctx, uow, from, to, orig.ProductVariantID, orig.Quantity, ""); err != nil {
		return nil, err
	}
	if from != "" {
		if err := uc.ledger.DeductStockInTx(ctx, uow, from, orig.ProductVariantID, orig.Quantity); err != nil {
			return nil, err
		}
	}
	if to != "" {
		if _, err := uc.ledger.ReceiveAtCostInTx(ctx, uow, to, orig.ProductVariantID, orig.Quantity, orig.UnitCost()); err != nil {
			return nil, err
		}
	}
	if err := uc.restoreBatch(ctx, uow, orig, from != ""); err != nil {
		return nil, err
	}

	reference := in.Reason
	if reference == "" {
		reference = orig.Reference
	}
	m := uc.movement(entity.MovementTypeVOID, orig.ProductVariantID, from, to, orig.Quantity, orig.UnitCost(), reference, in.UserID, uc.now())
	m.VoidsMovementID = orig.ID
	m.BatchID = orig.BatchID
	res := &MovementResult{UnitCost: orig.UnitCost()}
	if err := uc.record(ctx, uow, m, res); err != nil {
		return nil, err
	}
	reversed, err := uc.journal.ReverseMovementJournalInTx(ctx, uow, orig.ID, in.UserID)
	if err != nil {
		return nil, err
	}
	res.Journals = append(res.Journals, reversed...)
	return res, nil
}

// VoidMovement variante con transacción propia.
func (uc *RegisterMovementUseCase) VoidMovement(ctx context.Context, in VoidInput) (*MovementResult, error) {
	return uc.run(ctx, "inventory.void_movement", in.UserID, func(ctx context.Context, uow repository.UnitOfWork) (*MovementResult, error) {
		return uc.VoidMovementInTx(ctx, uow, in)
	})
}

// restoreBatch deshace el efecto del movimiento sobre su lote. removing indica que el VOID retira
// stock (el original lo había agregado al lote).
func (uc *RegisterMovementUseCase) restoreBatch(ctx context.Context, uow repository.UnitOfWork, orig *entity.StockMovement, removing bool) error {
	if orig.BatchID == "" || orig.Type == entity.MovementTypeTRANSFER {
		return nil
	}
	b, err := uow.Batches().GetByID(ctx, orig.BatchID)
	if err != nil || b == nil {
		return err
	}
	if removing {
		b.Quantity = decimal.Max(decimal.Zero, b.Quantity.Sub(orig.Quantity))
		if b.Quantity.IsZero() {
			b.Status = entity.BatchStatusDepleted
		}
	} else {
		b.Quantity = b.Quantity.Add(orig.Quantity)
		if b.Status == entity.BatchStatusDepleted {
			b.Status = entity.BatchStatusActive
		}
	}
	b.UpdatedAt = uc.now()
	return uow.Batches().Update(ctx, b)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

// StockAt stock de la clave a una fecha, recalculado desde el log de movimientos.
func (uc *RegisterMovementUseCase) StockAt(ctx context.Context, locationID, variantID string, asOf time.Time) (decimal.Decimal, error) {
	qty := decimal.Zero
	err := uc.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		list, err := uow.Movements().ListUntil(ctx, locationID, variantID, asOf)
		if err != nil {
			return err
		}
		for _, m := range list {
			qty = qty.Add(m.Delta(locationID))
		}
		return nil
	})
	return qty, err
}

// Availability físico, reservado y disponible de la clave (lectura bloqueante de corta duración).
func (uc *RegisterMovementUseCase) Availability(ctx context.Context, locationID, variantID string) (Availability, error) {
	var a Availability
	err := uc.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		a, err = uc.ledger.LockAvailabilityInTx(ctx, uow, locationID, variantID, "")
		return err
	})
	return a, err
}

// ── helpers ───────────────────────────────────────────────────────────────────

// lockMove bloquea origen y destino en orden determinista. El origen se valida contra el
// disponible (excluyendo las reservas de excludeRef); el destino solo se crea y bloquea.
func (uc *RegisterMovementUseCase) lockMove(ctx context.Context, uow repository.UnitOfWork, from, to, variantID string, qty decimal.Decimal, excludeRef string) error {
	keys := make([]entity.BalanceKey, 0, 2)
	if from != "" {
		keys = append(keys, entity.BalanceKey{LocationID: from, ProductVariantID: variantID})
	}
	if to != "" {
		keys = append(keys, entity.BalanceKey{LocationID: to, ProductVariantID: variantID})
	}
	sortKeys(keys)
	for _, k := range keys {
		if k.LocationID == from {
			if _, err := uc.ledger.LockAndValidateInTx(ctx, uow, from, variantID, qty, excludeRef); err != nil {
				return err
			}
			continue
		}
		if err := uow.Balances().Ensure(ctx, to, variantID); err != nil {
			return err
		}
		if _, err := uow.Balances().GetForUpdate(ctx, to, variantID); err != nil {
			return err
		}
	}
	return nil
}

// consumeBatches descuenta qty de los lotes FIFO y retorna las porciones: una por lote y, si los
// lotes no alcanzan, una final sin lote.
func (uc *RegisterMovementUseCase) consumeBatches(ctx context.Context, uow repository.UnitOfWork, locationID, variantID string, qty decimal.Decimal) ([]entity.BatchConsumption, error) {
	batches, err := uow.Batches().ListActiveForUpdate(ctx, locationID, variantID)
	if err != nil {
		return nil, err
	}
	parts, rest := inventory.AllocateFIFO(batches, qty)
	byID := make(map[string]*entity.Batch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}
	now := uc.now()
	for _, p := range parts {
		b := byID[p.BatchID]
		b.Quantity = b.Quantity.Sub(p.Quantity)
		if b.Quantity.IsZero() {
			b.Status = entity.BatchStatusDepleted
		}
		b.UpdatedAt = now
		if err := uow.Batches().Update(ctx, b); err != nil {
			return nil, err
		}
	}
	if rest.IsPositive() {
		parts = append(parts, entity.BatchConsumption{Quantity: rest})
	}
	return parts, nil
}

func (uc *RegisterMovementUseCase) createBatch(
	ctx context.Context, uow repository.UnitOfWork,
	number, locationID, variantID string, qty decimal.Decimal,
	manufactured, expiry *time.Time,
) (string, error) {
	if number == "" {
		return "", nil
	}
	now := uc.now()
	made := now
	if manufactured != nil {
		made = *manufactured
	}
	b := &entity.Batch{
		ID:                uuid.New().String(),
		BatchNumber:       number,
		ProductVariantID:  variantID,
		LocationID:        locationID,
		Quantity:          qty,
		ManufacturingDate: made,
		ExpiryDate:        expiry,
		Status:            entity.BatchStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uow.Batches().Create(ctx, b); err != nil {
		return "", fmt.Errorf("lote %s: %w", number, err)
	}
	return b.ID, nil
}

func (uc *RegisterMovementUseCase) movement(
	typ, variantID, from, to string, qty, unitCost decimal.Decimal,
	reference, userID string, now time.Time,
) *entity.StockMovement {
	cost := unitCost
	return &entity.StockMovement{
		ID:               uuid.New().String(),
		Type:             typ,
		ProductVariantID: variantID,
		FromLocationID:   from,
		ToLocationID:     to,
		Quantity:         qty,
		Cost:             &cost,
		Reference:        reference,
		CreatedBy:        userID,
		CreatedAt:        now,
	}
}

// record escribe el movimiento, su asiento automático y el evento, todo en la transacción del caller.
func (uc *RegisterMovementUseCase) record(ctx context.Context, uow repository.UnitOfWork, m *entity.StockMovement, res *MovementResult) error {
	if err := uow.Movements().Create(ctx, m); err != nil {
		return err
	}
	entry, err := uc.journal.RecordInventoryMovementInTx(ctx, uow, m)
	if err != nil {
		return err
	}
	if err := outbox.Enqueue(ctx, uow.Outbox(), entity.TopicMovementRecorded, m.ProductVariantID, MovementEventPayload{
		MovementID:        m.ID,
		Type:              m.Type,
		ProductVariantID:  m.ProductVariantID,
		FromLocationID:    m.FromLocationID,
		ToLocationID:      m.ToLocationID,
		Quantity:          m.Quantity,
		UnitCost:          m.UnitCost(),
		Reference:         m.Reference,
		BatchID:           m.BatchID,
		VoidsMovementID:   m.VoidsMovementID,
		ProductionOrderID: m.ProductionOrderID,
		CreatedAt:         m.CreatedAt,
	}); err != nil {
		return err
	}
	res.Movements = append(res.Movements, m)
	if entry != nil {
		res.Journals = append(res.Journals, entry)
	}
	return nil
}

// run abre la transacción (con reintento ante contención), traza y registra la actividad.
func (uc *RegisterMovementUseCase) run(
	ctx context.Context, action, userID string,
	fn func(ctx context.Context, uow repository.UnitOfWork) (*MovementResult, error),
) (*MovementResult, error) {
	ctx, span := tracer.Start(ctx, action)
	defer span.End()

	var res *MovementResult
	err := retry.OnContention(ctx, uc.Attempts, func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
			var err error
			res, err = fn(ctx, uow)
			return err
		})
	})
	if err != nil {
		span.RecordError(err)
		uc.log.Warn().Err(err).Str("action", action).Msg("operación de inventario rechazada")
		return nil, err
	}

	ids := make([]string, 0, len(res.Movements))
	for _, m := range res.Movements {
		ids = append(ids, m.ID)
	}
	span.SetAttributes(attribute.Int("movements", len(ids)), attribute.Int("journals", len(res.Journals)))
	uc.log.Info().
		Str("action", action).
		Strs("movement_ids", ids).
		Int("journals", len(res.Journals)).
		Msg("movimiento de inventario registrado")
	first := ""
	if len(ids) > 0 {
		first = ids[0]
	}
	ports.LogBestEffort(ctx, uc.audit, entity.ActivityEvent{
		Action:   action,
		Entity:   "stock_movement",
		EntityID: first,
		Actor:    userID,
		Meta:     map[string]any{"movement_ids": ids},
		At:       uc.now(),
	})
	return res, nil
}
