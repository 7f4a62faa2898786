package entity

import "fmt"

// ReferenceKind etiqueta persistida (reference_type) del documento que originó un asiento.
type ReferenceKind string

const (
	RefManual          ReferenceKind = "MANUAL"
	RefStockMovement   ReferenceKind = "STOCK_MOVEMENT"
	RefGoodsReceipt    ReferenceKind = "GOODS_RECEIPT"
	RefSalesOrder      ReferenceKind = "SALES_ORDER"
	RefPurchaseBill    ReferenceKind = "PURCHASE_BILL"
	RefProductionOrder ReferenceKind = "PRODUCTION_ORDER"
	RefReversal        ReferenceKind = "REVERSAL"
)

// Reference variante cerrada de documentos origen. Solo los tipos de este paquete la implementan,
// así los type switch del mapeo contable quedan acotados.
type Reference interface {
	Kind() ReferenceKind
	RefID() string
	sealed()
}

// ManualRef asiento manual, sin documento origen.
type ManualRef struct{}

// MovementRef asiento automático de un movimiento de stock (clave de idempotencia).
type MovementRef struct{ MovementID string }

// GoodsReceiptRef recepción de mercancía de una orden de compra.
type GoodsReceiptRef struct{ GoodsReceiptID, PurchaseOrderID string }

// SalesOrderRef pedido de venta.
type SalesOrderRef struct{ SalesOrderID string }

// PurchaseBillRef factura de proveedor; PurchaseOrderID habilita el control de doble registro.
type PurchaseBillRef struct{ BillID, PurchaseOrderID string }

// ProductionOrderRef orden de producción.
type ProductionOrderRef struct{ ProductionOrderID string }

// ReversalRef asiento de reversa del asiento original.
type ReversalRef struct{ OriginalEntryID string }

func (ManualRef) Kind() ReferenceKind          { return RefManual }
func (MovementRef) Kind() ReferenceKind        { return RefStockMovement }
func (GoodsReceiptRef) Kind() ReferenceKind    { return RefGoodsReceipt }
func (SalesOrderRef) Kind() ReferenceKind      { return RefSalesOrder }
func (PurchaseBillRef) Kind() ReferenceKind    { return RefPurchaseBill }
func (ProductionOrderRef) Kind() ReferenceKind { return RefProductionOrder }
func (ReversalRef) Kind() ReferenceKind        { return RefReversal }

func (ManualRef) RefID() string            { return "" }
func (r MovementRef) RefID() string        { return r.MovementID }
func (r GoodsReceiptRef) RefID() string    { return r.GoodsReceiptID }
func (r SalesOrderRef) RefID() string      { return r.SalesOrderID }
func (r PurchaseBillRef) RefID() string    { return r.BillID }
func (r ProductionOrderRef) RefID() string { return r.ProductionOrderID }
func (r ReversalRef) RefID() string        { return r.OriginalEntryID }

func (ManualRef) sealed()          {}
func (MovementRef) sealed()        {}
func (GoodsReceiptRef) sealed()    {}
func (SalesOrderRef) sealed()      {}
func (PurchaseBillRef) sealed()    {}
func (ProductionOrderRef) sealed() {}
func (ReversalRef) sealed()        {}

// PurchaseOrderOf orden de compra asociada a la referencia, o "".
func PurchaseOrderOf(ref Reference) string {
	switch r := ref.(type) {
	case GoodsReceiptRef:
		return r.PurchaseOrderID
	case PurchaseBillRef:
		return r.PurchaseOrderID
	}
	return ""
}

// ParseReference reconstruye la referencia desde las columnas persistidas.
func ParseReference(kind, id, purchaseOrderID string) (Reference, error) {
	switch ReferenceKind(kind) {
	case RefManual, "":
		return ManualRef{}, nil
	case RefStockMovement:
		return MovementRef{MovementID: id}, nil
	case RefGoodsReceipt:
		return GoodsReceiptRef{GoodsReceiptID: id, PurchaseOrderID: purchaseOrderID}, nil
	case RefSalesOrder:
		return SalesOrderRef{SalesOrderID: id}, nil
	case RefPurchaseBill:
		return PurchaseBillRef{BillID: id, PurchaseOrderID: purchaseOrderID}, nil
	case RefProductionOrder:
		return ProductionOrderRef{ProductionOrderID: id}, nil
	case RefReversal:
		return ReversalRef{OriginalEntryID: id}, nil
	}
	return nil, fmt.Errorf("reference_type desconocido: %q", kind)
}
