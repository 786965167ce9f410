package suppliers

import (
	"fmt"

	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
)

// Supplier represents a vendor that restocks products. The products it
// supplies are derived from Product.supplier and never serialised here.
type Supplier struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name    string `json:"name" gorm:"not null;default:''"`
	Mobile  string `json:"mobile" gorm:"not null;default:''"`
	Email   string `json:"email" gorm:"not null;default:''"`
	Company string `json:"company" gorm:"not null;default:''"`
}

// TableName binds the gorm model to the shared suppliers table.
func (Supplier) TableName() string {
	return "suppliers"
}

// ErrNotFound indicates the supplier id does not exist.
var ErrNotFound = fmt.Errorf("supplier: %w", httpx.ErrNotFound)
