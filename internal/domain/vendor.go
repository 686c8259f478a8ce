package domain

// VendorContext identifies the vendor whose data a request works on.
type VendorContext struct {
	VendorID string
}
