package domain

// Vendor is an organization that groups developer-portal users.
type Vendor struct {
	ID         string
	Name       string
	Address    string
	Email      string
	IsApproved bool
	CreatedBy  string
}

// VendorPatch holds the fields an update may change. Nil fields are left as-is.
type VendorPatch struct {
	ID         *string
	IsApproved *bool
}

// Contact identifies the person behind a vendor request.
type Contact struct {
	Name  string
	Email string
}

// JoinRequest asks an administrator to let a user into a vendor.
type JoinRequest struct {
	Email  string
	Vendor string
}
