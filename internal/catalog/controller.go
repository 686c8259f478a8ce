package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendordesk/internal/dto"
	apperrors "vendordesk/internal/errors"
	"vendordesk/internal/vendor"
)

type Controller struct {
	useCase UseCase
	logger  *zap.Logger
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/items", c.HandleListItems)
	r.Post("/items", c.HandleAddItem)
	r.Put("/items/{itemId}", c.HandleUpdateItem)
	r.Delete("/items/{itemId}", c.HandleDeleteItem)
	r.Get("/categories", c.HandleListCategories)
}

func (c *Controller) HandleListItems(w http.ResponseWriter, r *http.Request) {
	traceID, logger, vendorID := c.begin(r)

	resp, err := c.useCase.ListItems(r.Context(), vendorID, r.URL.Query().Get("q"))
	if err != nil {
		c.handleError(w, traceID, "list items failed", err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	traceID, logger, vendorID := c.begin(r)

	resp, err := c.useCase.ListCategories(r.Context(), vendorID)
	if err != nil {
		c.handleError(w, traceID, "list categories failed", err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	traceID, logger, vendorID := c.begin(r)

	req, ok := c.decodeItemRequest(w, r, traceID, logger)
	if !ok {
		return
	}

	if err := c.useCase.AddItem(r.Context(), vendorID, req); err != nil {
		c.handleError(w, traceID, "add item failed", err, logger)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (c *Controller) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	traceID, logger, vendorID := c.begin(r)

	itemID, ok := c.parseItemID(w, r, traceID)
	if !ok {
		return
	}
	req, ok := c.decodeItemRequest(w, r, traceID, logger)
	if !ok {
		return
	}

	if err := c.useCase.UpdateItem(r.Context(), vendorID, itemID, req); err != nil {
		c.handleError(w, traceID, "update item failed", err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	traceID, logger, _ := c.begin(r)

	itemID, ok := c.parseItemID(w, r, traceID)
	if !ok {
		return
	}

	if err := c.useCase.DeleteItem(r.Context(), itemID); err != nil {
		c.handleError(w, traceID, "delete item failed", err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) begin(r *http.Request) (string, *zap.Logger, string) {
	traceID := uuid.New().String()
	v, _ := vendor.FromContext(r.Context())
	return traceID, c.logger.With(zap.String("traceId", traceID), zap.String("vendorId", v.VendorID)), v.VendorID
}

func (c *Controller) parseItemID(w http.ResponseWriter, r *http.Request, traceID string) (int, bool) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "itemId"))
	if err != nil || itemID <= 0 {
		c.writeValidationError(w, traceID, "invalid itemId", apperrors.ValidationDetail{
			Field:   "itemId",
			Message: "itemId must be a positive integer",
		})
		return 0, false
	}
	return itemID, true
}

func (c *Controller) decodeItemRequest(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (ItemRequest, bool) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return ItemRequest{}, false
	}

	if err := validateItemRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return ItemRequest{}, false
	}
	return req, true
}

func validateItemRequest(req ItemRequest) error {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(req.Name) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if req.CostPrice.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "costPrice", Message: "costPrice must be non-negative"})
	}
	if req.SellingPrice.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "sellingPrice", Message: "sellingPrice must be non-negative"})
	}
	if req.StockQuantity < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "stockQuantity", Message: "stockQuantity must be non-negative"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *Controller) handleError(w http.ResponseWriter, traceID, msg string, err error, logger *zap.Logger) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	message := "an unexpected error occurred"

	if _, ok := apperrors.IsServerError(err); ok {
		status, code, message = http.StatusBadGateway, "BACKEND_ERROR", err.Error()
	} else if _, ok := apperrors.IsNetworkError(err); ok {
		status, code, message = http.StatusBadGateway, "BACKEND_UNREACHABLE", err.Error()
	} else if _, ok := apperrors.IsParseError(err); ok {
		status, code, message = http.StatusBadGateway, "BACKEND_MALFORMED_RESPONSE", err.Error()
	}

	logger.Error(msg, zap.Error(err))
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *Controller) writeValidationError(w http.ResponseWriter, traceID, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusBadRequest,
		Code:      "VALIDATION_ERROR",
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
