package domain

import "slices"

// User is an identity known to the user directory.
type User struct {
	Email   string
	Name    string
	IsAdmin bool
	Vendors []string
}

// IsMemberOf reports whether the user belongs to the vendor.
func (u User) IsMemberOf(vendorID string) bool {
	return slices.Contains(u.Vendors, vendorID)
}
