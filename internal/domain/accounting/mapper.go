package accounting

import (
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementContext clave de la tabla de reglas: tipo de movimiento más documento asociado.
type MovementContext string

const (
	ContextNone                  MovementContext = ""
	ContextGoodsReceipt          MovementContext = "GOODS_RECEIPT"
	ContextSale                  MovementContext = "SALE"
	ContextProductionConsumption MovementContext = "PRODUCTION_CONSUMPTION"
	ContextProductionOutput      MovementContext = "PRODUCTION_OUTPUT"
	ContextAdjustmentGain        MovementContext = "ADJUSTMENT_GAIN"
	ContextAdjustmentLoss        MovementContext = "ADJUSTMENT_LOSS"
)

// AccountCodes códigos contables por defecto del mapeo automático.
// CategoryInventory sobrescribe Inventory según la categoría del producto.
type AccountCodes struct {
	Inventory         string
	COGS              string
	WIP               string
	AccruedPayable    string
	AdjustmentGain    string
	AdjustmentLoss    string
	CategoryInventory map[string]string
}

// MappedLine línea derivada por código de cuenta; el servicio la resuelve a ID.
type MappedLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

type slot int

const (
	slotInventory slot = iota
	slotCOGS
	slotWIP
	slotAccruedPayable
	slotAdjustmentGain
	slotAdjustmentLoss
)

type rule struct {
	debit, credit slot
	description   string
}

var rules = map[MovementContext]rule{
	ContextGoodsReceipt:          {slotInventory, slotAccruedPayable, "Recepción de mercancía"},
	ContextSale:                  {slotCOGS, slotInventory, "Costo de venta"},
	ContextProductionConsumption: {slotWIP, slotInventory, "Consumo de materiales a producción"},
	ContextProductionOutput:      {slotInventory, slotWIP, "Entrada de producto terminado"},
	ContextAdjustmentGain:        {slotInventory, slotAdjustmentGain, "Ajuste positivo de inventario"},
	ContextAdjustmentLoss:        {slotAdjustmentLoss, slotInventory, "Ajuste negativo de inventario"},
}

// Classify determina la regla aplicable a un movimiento.
// TRANSFER y VOID no tienen regla: el traslado no cambia el valor y la anulación reversa el asiento original.
func Classify(m *entity.StockMovement) MovementContext {
	switch m.Type {
	case entity.MovementTypePURCHASE:
		return ContextGoodsReceipt
	case entity.MovementTypeIN:
		if m.GoodsReceiptID != "" {
			return ContextGoodsReceipt
		}
		return ContextProductionOutput
	case entity.MovementTypeOUT:
		if m.SalesOrderID != "" {
			return ContextSale
		}
		return ContextProductionConsumption
	case entity.MovementTypeADJUSTMENT:
		if m.ToLocationID != "" {
			return ContextAdjustmentGain
		}
		if m.FromLocationID != "" {
			return ContextAdjustmentLoss
		}
	}
	return ContextNone
}

// InventoryCode cuenta de inventario del producto: override, default de categoría o default global.
func (c AccountCodes) InventoryCode(p *entity.Product) string {
	if p != nil && p.InventoryAccountCode != "" {
		return p.InventoryAccountCode
	}
	if p != nil {
		if code, ok := c.CategoryInventory[p.Category]; ok && code != "" {
			return code
		}
	}
	return c.Inventory
}

// COGSCode cuenta de costo de venta del producto: override o default.
func (c AccountCodes) COGSCode(p *entity.Product) string {
	if p != nil && p.COGSAccountCode != "" {
		return p.COGSAccountCode
	}
	return c.COGS
}

func (c AccountCodes) resolve(s slot, p *entity.Product) string {
	switch s {
	case slotInventory:
		return c.InventoryCode(p)
	case slotCOGS:
		return c.COGSCode(p)
	case slotWIP:
		return c.WIP
	case slotAccruedPayable:
		return c.AccruedPayable
	case slotAdjustmentGain:
		return c.AdjustmentGain
	case slotAdjustmentLoss:
		return c.AdjustmentLoss
	}
	return ""
}

// MapMovement traduce un movimiento a líneas balanceadas (función pura).
// El valor (cantidad × costo) se redondea a AmountScale; si queda en cero no produce líneas,
// igual que un movimiento sin regla.
func MapMovement(m *entity.StockMovement, p *entity.Product, codes AccountCodes) (MovementContext, []MappedLine) {
	ctx := Classify(m)
	r, ok := rules[ctx]
	if !ok {
		return ctx, nil
	}
	amount := m.Value().Round(AmountScale)
	if amount.IsZero() {
		return ctx, nil
	}
	desc := r.description
	if m.Reference != "" {
		desc += " " + m.Reference
	}
	return ctx, []MappedLine{
		{AccountCode: codes.resolve(r.debit, p), Debit: amount, Credit: decimal.Zero, Description: desc},
		{AccountCode: codes.resolve(r.credit, p), Debit: decimal.Zero, Credit: amount, Description: desc},
	}
}
