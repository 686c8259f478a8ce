package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendordesk/internal/domain"
	"vendordesk/internal/dto"
	apperrors "vendordesk/internal/errors"
	"vendordesk/internal/order/selection"
	"vendordesk/internal/order/usecase"
	"vendordesk/internal/vendor"
)

type Board interface {
	EnsureLoaded(ctx context.Context) (usecase.BoardView, error)
	Refresh(ctx context.Context) (usecase.BoardView, error)
	View() usecase.BoardView
	Select(orderID *int) (selection.Snapshot, error)
	Locate(ctx context.Context, locator selection.Locator) (selection.Snapshot, error)
	Subscribe() (<-chan selection.Snapshot, func())
	EditStatus(orderID int, status string) (usecase.BoardOrder, error)
	CommitStatus(ctx context.Context, orderID int) (usecase.CommitOutcome, error)
}

// BoardProvider returns the board of the vendor a request acts for.
type BoardProvider func(vendor domain.VendorContext) Board

type OrderController struct {
	boards BoardProvider
	logger *zap.Logger
}

func NewOrderController(boards BoardProvider, logger *zap.Logger) *OrderController {
	return &OrderController{
		boards: boards,
		logger: logger,
	}
}

// Routes mounts the order and selection endpoints.
func (c *OrderController) Routes(r chi.Router) {
	r.Get("/orders", c.GetOrders)
	r.Post("/orders/refresh", c.RefreshOrders)
	r.Put("/orders/{orderId}/status", c.EditStatus)
	r.Post("/orders/{orderId}/commit", c.CommitStatus)
	r.Get("/selection", c.GetSelection)
	r.Put("/selection", c.Select)
	r.Post("/selection/locate", c.Locate)
	r.Get("/selection/events", c.SelectionEvents)
}

func (c *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger, board := c.begin(r)

	view, err := board.EnsureLoaded(r.Context())
	c.writeBoard(w, traceID, view, err, logger)
}

func (c *OrderController) RefreshOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger, board := c.begin(r)

	view, err := board.Refresh(r.Context())
	c.writeBoard(w, traceID, view, err, logger)
}

func (c *OrderController) EditStatus(w http.ResponseWriter, r *http.Request) {
	traceID, logger, board := c.begin(r)

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.Status == "" {
		c.writeValidationError(w, traceID, "status is required", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status is required",
		})
		return
	}

	order, err := board.EditStatus(orderID, req.Status)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderResponse{TraceID: traceID, Order: toOrderDTO(order)})
}

func (c *OrderController) CommitStatus(w http.ResponseWriter, r *http.Request) {
	traceID, logger, board := c.begin(r)

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	outcome, err := board.CommitStatus(r.Context(), orderID)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	resp := dto.CommitResponse{
		TraceID: traceID,
		Order:   toOrderDTO(outcome.Order),
		Skipped: outcome.Skipped,
	}
	if s := outcome.Shipping; s != nil {
		resp.Shipping = &dto.ShippingDTO{
			OrderID:        s.OrderID,
			Method:         s.Method,
			Cost:           s.Cost,
			ShippedAt:      s.ShippedAt,
			TrackingNumber: s.TrackingNumber,
			Status:         s.Status,
		}
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) GetSelection(w http.ResponseWriter, r *http.Request) {
	traceID, _, board := c.begin(r)

	c.writeJSON(w, http.StatusOK, dto.SelectionResponse{
		TraceID:   traceID,
		Selection: toSelectionDTO(board.View().Selection),
	})
}

func (c *OrderController) Select(w http.ResponseWriter, r *http.Request) {
	traceID, logger, board := c.begin(r)

	var req dto.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	snap, err := board.Select(req.OrderID)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.SelectionResponse{TraceID: traceID, Selection: toSelectionDTO(snap)})
}

// Locate centers the map on a position the client obtained from the
// browser's geolocation API.
func (c *OrderController) Locate(w http.ResponseWriter, r *http.Request) {
	traceID, logger, board := c.begin(r)

	var req dto.LocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if err := validateLocateRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	coords := domain.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	snap, err := board.Locate(r.Context(), selection.LocatorFunc(func(ctx context.Context) (domain.Coordinates, error) {
		return coords, nil
	}))
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.SelectionResponse{TraceID: traceID, Selection: toSelectionDTO(snap)})
}

// SelectionEvents streams the selection as server-sent events: the current
// state first, then one event per focal point change.
func (c *OrderController) SelectionEvents(w http.ResponseWriter, r *http.Request) {
	_, logger, board := c.begin(r)

	updates, cancel := board.Subscribe()
	defer cancel()

	rc := http.NewResponseController(w)
	// the stream outlives the server write timeout
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("clearing write deadline failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, rc, board.View().Selection); err != nil {
		logger.Debug("selection stream closed", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEvent(w, rc, snap); err != nil {
				logger.Debug("selection stream closed", zap.Error(err))
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, snap selection.Snapshot) error {
	payload, err := json.Marshal(toSelectionDTO(snap))
	if err != nil {
		return fmt.Errorf("encoding selection event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: selection\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return rc.Flush()
}

func validateLocateRequest(req dto.LocateRequest) error {
	var details []apperrors.ValidationDetail

	if req.Latitude == nil {
		details = append(details, apperrors.ValidationDetail{Field: "latitude", Message: "latitude is required"})
	} else if *req.Latitude < -90 || *req.Latitude > 90 {
		details = append(details, apperrors.ValidationDetail{Field: "latitude", Message: "latitude must be between -90 and 90"})
	}

	if req.Longitude == nil {
		details = append(details, apperrors.ValidationDetail{Field: "longitude", Message: "longitude is required"})
	} else if *req.Longitude < -180 || *req.Longitude > 180 {
		details = append(details, apperrors.ValidationDetail{Field: "longitude", Message: "longitude must be between -180 and 180"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *OrderController) begin(r *http.Request) (string, *zap.Logger, Board) {
	traceID := uuid.New().String()
	v, ok := vendor.FromContext(r.Context())
	if !ok {
		c.logger.Warn("request without vendor context", zap.String("path", r.URL.Path))
	}
	logger := c.logger.With(zap.String("traceId", traceID), zap.String("vendorId", v.VendorID))
	return traceID, logger, c.boards(v)
}

func (c *OrderController) parseOrderID(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (int, bool) {
	orderIDStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.Atoi(orderIDStr)
	if err != nil || orderID <= 0 {
		logger.Warn("invalid orderId in path", zap.String("orderId", orderIDStr))
		c.writeValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return orderID, true
}

// writeBoard answers with the board even when loading failed so the client
// renders the empty list next to the error.
func (c *OrderController) writeBoard(w http.ResponseWriter, traceID string, view usecase.BoardView, err error, logger *zap.Logger) {
	if errors.Is(err, usecase.ErrRefreshSuperseded) {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "REFRESH_SUPERSEDED", err.Error())
		return
	}

	status := http.StatusOK
	if err != nil {
		var code string
		status, code = errorStatus(err)
		logger.Warn("loading orders failed", zap.String("code", code), zap.Error(err))
	}

	resp := dto.OrderBoardResponse{
		TraceID:   traceID,
		VendorID:  view.Vendor.VendorID,
		Orders:    make([]dto.OrderDTO, 0, len(view.Orders)),
		Selection: toSelectionDTO(view.Selection),
		Loaded:    view.Loaded,
	}
	for _, o := range view.Orders {
		resp.Orders = append(resp.Orders, toOrderDTO(o))
	}
	if !view.RefreshedAt.IsZero() {
		at := view.RefreshedAt
		resp.RefreshedAt = &at
	}
	if view.Err != nil {
		msg := view.Err.Error()
		resp.Error = &msg
	}

	c.writeJSON(w, status, resp)
}

func (c *OrderController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("unexpected error", zap.Error(err))
		message = "an unexpected error occurred"
	} else {
		logger.Warn("request failed", zap.String("code", code), zap.Error(err))
	}
	c.writeErrorResponse(w, traceID, status, code, message)
}

func errorStatus(err error) (int, string) {
	if _, ok := apperrors.IsValidationError(err); ok {
		return http.StatusBadRequest, "VALIDATION_ERROR"
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return http.StatusNotFound, "NOT_FOUND"
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return http.StatusConflict, "CONFLICT"
	}
	if _, ok := apperrors.IsNetworkError(err); ok {
		return http.StatusBadGateway, "BACKEND_UNREACHABLE"
	}
	if _, ok := apperrors.IsServerError(err); ok {
		return http.StatusBadGateway, "BACKEND_ERROR"
	}
	if _, ok := apperrors.IsParseError(err); ok {
		return http.StatusBadGateway, "BACKEND_MALFORMED_RESPONSE"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func toOrderDTO(o usecase.BoardOrder) dto.OrderDTO {
	out := dto.OrderDTO{
		OrderID:         o.OrderID,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		ItemID:          o.ItemID,
		ItemName:        o.ItemName,
		Quantity:        o.Quantity,
		Price:           o.Price,
		Status:          string(o.Status),
		CommittedStatus: string(o.CommittedStatus),
		Committing:      o.Committing,
		HasLocation:     o.HasLocation(),
	}
	if !o.OrderDate.IsZero() {
		d := o.OrderDate
		out.OrderDate = &d
	}
	if o.Location != nil {
		out.Location = &dto.CoordinatesDTO{Latitude: o.Location.Latitude, Longitude: o.Location.Longitude}
	}
	return out
}

func toSelectionDTO(s selection.Snapshot) dto.SelectionDTO {
	out := dto.SelectionDTO{
		SelectedOrderID: s.SelectedOrderID,
		MapCenter:       dto.CoordinatesDTO{Latitude: domain.DefaultMapCenter.Latitude, Longitude: domain.DefaultMapCenter.Longitude},
		Zoom:            domain.DefaultMapZoom,
	}
	if s.FocalPoint != nil {
		focal := dto.CoordinatesDTO{Latitude: s.FocalPoint.Latitude, Longitude: s.FocalPoint.Longitude}
		out.FocalPoint = &focal
		out.MapCenter = focal
	}
	return out
}

func (c *OrderController) writeErrorResponse(w http.ResponseWriter, traceID string, statusCode int, code, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusBadRequest,
		Code:      "VALIDATION_ERROR",
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
