package suppliers

// SupplierForm is the request body for create and update.
type SupplierForm struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

func (f SupplierForm) toSupplier() Supplier {
	return Supplier{Name: f.Name, Mobile: f.Mobile, Email: f.Email, Company: f.Company}
}
