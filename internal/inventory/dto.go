package inventory

import "github.com/shopspring/decimal"

// SupplierRef references an existing supplier by id.
type SupplierRef struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// CreateProductRequest is the body of POST /add. Only the supplier
// reference is validated; other fields are stored as given.
type CreateProductRequest struct {
	Name     string          `json:"name"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"minStock"`
	Price    decimal.Decimal `json:"price"`
	Supplier *SupplierRef    `json:"supplier" validate:"required"`
}

// UpdateProductRequest is the body of PUT /update/{id}. A missing supplier
// or id 0 unlinks it.
type UpdateProductRequest struct {
	Name     string       `json:"name"`
	Stock    int          `json:"stock"`
	MinStock int          `json:"minStock"`
	Supplier *SupplierRef `json:"supplier"`
}

func (r UpdateProductRequest) toUpdate() ProductUpdate {
	upd := ProductUpdate{Name: r.Name, Stock: r.Stock, MinStock: r.MinStock}
	if r.Supplier != nil {
		id := r.Supplier.ID
		upd.SupplierID = &id
	}
	return upd
}

// SaleResponse is returned by the sell endpoint.
type SaleResponse struct {
	Message  string  `json:"message"`
	Product  Product `json:"product"`
	LowStock bool    `json:"lowStock"`
	Notified bool    `json:"notified"`
}

// RestockResponse is returned by the restock endpoint.
type RestockResponse struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}
