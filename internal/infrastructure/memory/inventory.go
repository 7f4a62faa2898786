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
	_ repository.InventoryBalanceRepository = balanceRepo{}
	_ repository.StockMovementRepository    = movementRepo{}
	_ repository.ReservationRepository      = reservationRepo{}
	_ repository.BatchRepository            = batchRepo{}
	_ repository.ProductRepository          = productRepo{}
)

// ── Saldos ────────────────────────────────────────────────────────────────────

type balanceRepo struct{ st *state }

func key(locationID, variantID string) entity.BalanceKey {
	return entity.BalanceKey{LocationID: locationID, ProductVariantID: variantID}
}

func (r balanceRepo) Get(_ context.Context, locationID, variantID string) (*entity.InventoryBalance, error) {
	b, ok := r.st.balances[key(locationID, variantID)]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r balanceRepo) GetForUpdate(ctx context.Context, locationID, variantID string) (*entity.InventoryBalance, error) {
	return r.Get(ctx, locationID, variantID)
}

func (r balanceRepo) Ensure(_ context.Context, locationID, variantID string) error {
	k := key(locationID, variantID)
	if _, ok := r.st.balances[k]; !ok {
		r.st.balances[k] = &entity.InventoryBalance{
			LocationID:       locationID,
			ProductVariantID: variantID,
			Quantity:         decimal.Zero,
			AverageCost:      decimal.Zero,
			UpdatedAt:        time.Now(),
		}
	}
	return nil
}

func (r balanceRepo) Increment(ctx context.Context, locationID, variantID string, qty decimal.Decimal) error {
	_ = r.Ensure(ctx, locationID, variantID)
	b := r.st.balances[key(locationID, variantID)]
	b.Quantity = b.Quantity.Add(qty)
	b.UpdatedAt = time.Now()
	return nil
}

// Deduct replica el CHECK (quantity >= 0) de la tabla.
func (r balanceRepo) Deduct(_ context.Context, locationID, variantID string, qty decimal.Decimal) error {
	b, ok := r.st.balances[key(locationID, variantID)]
	if !ok {
		return domain.ErrBalanceRowMissing
	}
	next := b.Quantity.Sub(qty)
	if next.IsNegative() {
		return &domain.StockShortageError{
			Kind:             domain.ErrInsufficientPhysicalStock,
			LocationID:       locationID,
			ProductVariantID: variantID,
			Required:         qty,
			Physical:         b.Quantity,
			Available:        b.Quantity,
		}
	}
	b.Quantity = next
	b.UpdatedAt = time.Now()
	return nil
}

func (r balanceRepo) SetAverageCost(_ context.Context, locationID, variantID string, cost decimal.Decimal) error {
	b, ok := r.st.balances[key(locationID, variantID)]
	if !ok {
		return domain.ErrBalanceRowMissing
	}
	b.AverageCost = cost
	b.UpdatedAt = time.Now()
	return nil
}

func (r balanceRepo) TotalQuantity(_ context.Context, variantID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for k, b := range r.st.balances {
		if k.ProductVariantID == variantID {
			total = total.Add(b.Quantity)
		}
	}
	return total, nil
}

func (r balanceRepo) ListByVariant(_ context.Context, variantID string) ([]*entity.InventoryBalance, error) {
	var out []*entity.InventoryBalance
	for k, b := range r.st.balances {
		if k.ProductVariantID == variantID {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type movementRepo struct{ st *state }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	for _, existing := range r.st.movements {
		if existing.ID == m.ID {
			return domain.ErrDuplicate
		}
	}
	c := *m
	r.st.movements = append(r.st.movements, &c)
	return nil
}

func (r movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	for _, m := range r.st.movements {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return nil, nil
}

func (r movementRepo) FindVoiding(_ context.Context, movementID string) (*entity.StockMovement, error) {
	for _, m := range r.st.movements {
		if m.Type == entity.MovementTypeVOID && m.VoidsMovementID == movementID {
			c := *m
			return &c, nil
		}
	}
	return nil, nil
}

func (r movementRepo) ListUntil(_ context.Context, locationID, variantID string, asOf time.Time) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.st.movements {
		if m.ProductVariantID != variantID || m.CreatedAt.After(asOf) {
			continue
		}
		if m.FromLocationID == locationID || m.ToLocationID == locationID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r movementRepo) ListByProductionOrder(_ context.Context, productionOrderID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.st.movements {
		if m.ProductionOrderID == productionOrderID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r movementRepo) ConsumptionByVariant(_ context.Context, from, to time.Time) ([]repository.ConsumptionTotal, error) {
	voided := make(map[string]bool)
	for _, m := range r.st.movements {
		if m.Type == entity.MovementTypeVOID {
			voided[m.VoidsMovementID] = true
		}
	}
	sums := make(map[string]*repository.ConsumptionTotal)
	var order []string
	for _, m := range r.st.movements {
		if m.Type != entity.MovementTypeOUT || voided[m.ID] || m.CreatedAt.Before(from) || m.CreatedAt.After(to) {
			continue
		}
		t, ok := sums[m.ProductVariantID]
		if !ok {
			t = &repository.ConsumptionTotal{ProductVariantID: m.ProductVariantID, Quantity: decimal.Zero, Value: decimal.Zero}
			sums[m.ProductVariantID] = t
			order = append(order, m.ProductVariantID)
		}
		t.Quantity = t.Quantity.Add(m.Quantity)
		t.Value = t.Value.Add(m.Value())
	}
	out := make([]repository.ConsumptionTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *sums[id])
	}
	return out, nil
}

// ── Reservas ──────────────────────────────────────────────────────────────────

type reservationRepo struct{ st *state }

func (r reservationRepo) Create(_ context.Context, res *entity.StockReservation) error {
	if _, ok := r.st.reservations[res.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *res
	r.st.reservations[res.ID] = &c
	r.st.resOrder = append(r.st.resOrder, res.ID)
	return nil
}

func (r reservationRepo) GetForUpdate(_ context.Context, id string) (*entity.StockReservation, error) {
	res, ok := r.st.reservations[id]
	if !ok {
		return nil, nil
	}
	c := *res
	return &c, nil
}

func (r reservationRepo) Update(_ context.Context, res *entity.StockReservation) error {
	if _, ok := r.st.reservations[res.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *res
	r.st.reservations[res.ID] = &c
	return nil
}

func (r reservationRepo) SumActive(_ context.Context, locationID, variantID, excludeReferenceID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, res := range r.st.reservations {
		if !res.IsActive() || res.LocationID != locationID || res.ProductVariantID != variantID {
			continue
		}
		if excludeReferenceID != "" && res.ReferenceID == excludeReferenceID {
			continue
		}
		total = total.Add(res.Quantity)
	}
	return total, nil
}

func (r reservationRepo) ListActiveByReference(_ context.Context, referenceID, locationID, variantID string) ([]*entity.StockReservation, error) {
	var out []*entity.StockReservation
	for _, id := range r.st.resOrder {
		res := r.st.reservations[id]
		if res.IsActive() && res.ReferenceID == referenceID &&
			res.LocationID == locationID && res.ProductVariantID == variantID {
			c := *res
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r reservationRepo) ExpireBefore(_ context.Context, now time.Time) (int, error) {
	n := 0
	for _, res := range r.st.reservations {
		if res.IsActive() && res.ReservedUntil != nil && res.ReservedUntil.Before(now) {
			res.Status = entity.ReservationStatusCancelled
			res.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// ── Lotes ─────────────────────────────────────────────────────────────────────

type batchRepo struct{ st *state }

func (r batchRepo) Create(_ context.Context, b *entity.Batch) error {
	for _, existing := range r.st.batches {
		if existing.BatchNumber == b.BatchNumber {
			return domain.ErrDuplicate
		}
	}
	c := *b
	r.st.batches[b.ID] = &c
	return nil
}

func (r batchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	b, ok := r.st.batches[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r batchRepo) ListActiveForUpdate(_ context.Context, locationID, variantID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.st.batches {
		if b.LocationID == locationID && b.ProductVariantID == variantID &&
			b.Status == entity.BatchStatusActive && b.Quantity.IsPositive() {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ManufacturingDate.Equal(out[j].ManufacturingDate) {
			return out[i].BatchNumber < out[j].BatchNumber
		}
		return out[i].ManufacturingDate.Before(out[j].ManufacturingDate)
	})
	return out, nil
}

func (r batchRepo) Update(_ context.Context, b *entity.Batch) error {
	if _, ok := r.st.batches[b.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *b
	r.st.batches[b.ID] = &c
	return nil
}

// ── Productos ─────────────────────────────────────────────────────────────────

type productRepo struct{ st *state }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.st.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.st.products {
		if p.SKU != "" && existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	c := *p
	r.st.products[p.ID] = &c
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r productRepo) UpdateStandardCost(_ context.Context, productID string, cost decimal.Decimal) error {
	p, ok := r.st.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.StandardCost = cost
	p.UpdatedAt = time.Now()
	return nil
}
