package dto

type VendorRequest struct {
	VendorID string `json:"vendorId"`
}

type VendorResponse struct {
	TraceID  string `json:"traceId"`
	VendorID string `json:"vendorId"`
}
