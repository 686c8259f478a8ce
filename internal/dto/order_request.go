package dto

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// SelectRequest selects an order; a null orderId clears the selection.
type SelectRequest struct {
	OrderID *int `json:"orderId"`
}

type LocateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}
