// Package rest provides HTTP handlers for the store's operation surface.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	storeerrors "github.com/abgdnv/storefront/internal/store/errors"
	"github.com/abgdnv/storefront/internal/store/ledger"
	"github.com/abgdnv/storefront/internal/store/service"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.StoreService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the store REST API with the provided service.
func NewHandler(service service.StoreService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the store service.
// State-changing routes require a caller identity; reads are anonymous.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.With(web.AuthMiddleware).Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Get("/buyers", h.FindBuyers)
			r.With(web.AuthMiddleware).Post("/restock", h.Restock)
			r.With(web.AuthMiddleware).Post("/purchase", h.Purchase)
			r.With(web.AuthMiddleware).Post("/return", h.Return)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Create handles the publication of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	caller, ok := web.Caller(w, r, mLogger)
	if !ok {
		return
	}
	var createDto service.ProductCreateDto
	if ok := h.decodeValid(w, r, mLogger, &createDto); !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to add product", "Name", createDto.Name)

	created, err := h.service.AddProduct(r.Context(), ledger.Account(caller), createDto)
	if err != nil {
		h.respondOpError(w, r, mLogger, err, "Failed to add product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product added successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Restock increases a product's available quantity.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	caller, ok := web.Caller(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	var restockDto service.RestockDto
	if ok := h.decodeValid(w, r, mLogger, &restockDto); !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to restock product", "ID", id, "Quantity", restockDto.Quantity)

	updated, err := h.service.Restock(r.Context(), ledger.Account(caller), id, restockDto.Quantity)
	if err != nil {
		h.respondOpError(w, r, mLogger, err, fmt.Sprintf("Failed to restock product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product restocked successfully", "ID", updated.ID, "NewQuantity", updated.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Purchase buys one unit of the product for the calling account.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	buyer, ok := web.Caller(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	var purchaseDto service.PurchaseDto
	if ok := h.decodeValid(w, r, mLogger, &purchaseDto); !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to buy product", "ID", id, "Buyer", buyer)

	if err := h.service.BuyProduct(r.Context(), ledger.Account(buyer), id, purchaseDto.ValueSent); err != nil {
		h.respondOpError(w, r, mLogger, err, fmt.Sprintf("Failed to buy product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product bought successfully", "ID", id, "Buyer", buyer)
	w.WriteHeader(http.StatusOK)
}

// Return reverses the calling account's open purchase of the product.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	buyer, ok := web.Caller(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to return product", "ID", id, "Buyer", buyer)

	if err := h.service.ReturnProduct(r.Context(), ledger.Account(buyer), id); err != nil {
		h.respondOpError(w, r, mLogger, err, fmt.Sprintf("Failed to return product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product returned successfully", "ID", id, "Buyer", buyer)
	w.WriteHeader(http.StatusOK)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondOpError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves one page of the catalog.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	offset, ok := web.ParseOffset(r, w, mLogger)
	if !ok {
		return
	}
	page, err := h.service.FindAll(r.Context(), offset)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

// FindBuyers retrieves one page of a product's current buyers.
func (h *Handler) FindBuyers(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	offset, ok := web.ParseOffset(r, w, mLogger)
	if !ok {
		return
	}
	page, err := h.service.FindBuyers(r.Context(), id, offset)
	if err != nil {
		h.respondOpError(w, r, mLogger, err, fmt.Sprintf("Failed to fetch buyers for product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// parseID extracts and validates the product ID from the request path.
func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) (ledger.ProductID, bool) {
	pathValueID := r.PathValue("id")
	id, err := ledger.ParseID(pathValueID)
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return "", false
	}
	return id, true
}

// decodeValid decodes the request body into dto and validates it, responding
// with 400 on either failure.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondOpError maps ledger errors onto HTTP statuses and writes the response.
func (h *Handler) respondOpError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		mLogger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, mLogger, status, fallback)
		return
	}
	mLogger.WarnContext(r.Context(), fallback, "error", err)
	web.RespondError(w, mLogger, status, message)
}

// mapError translates the store error taxonomy to HTTP status codes.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, storeerrors.ErrInvalidInput):
		return http.StatusBadRequest, "Product name must not be empty"
	case errors.Is(err, storeerrors.ErrUnauthorized):
		return http.StatusForbidden, "Caller is not the store owner"
	case errors.Is(err, storeerrors.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, storeerrors.ErrNoPurchaseFound):
		return http.StatusNotFound, "No open purchase found"
	case errors.Is(err, storeerrors.ErrProductExists):
		return http.StatusConflict, "Product already exists"
	case errors.Is(err, storeerrors.ErrAlreadyPurchased):
		return http.StatusConflict, "Buyer already holds an open purchase"
	case errors.Is(err, storeerrors.ErrOutOfStock):
		return http.StatusConflict, "Product is out of stock"
	case errors.Is(err, storeerrors.ErrGracePeriodExpired):
		return http.StatusConflict, "Return grace period expired"
	case errors.Is(err, storeerrors.ErrInsufficientPayment):
		return http.StatusPaymentRequired, "Payment is below the listed price"
	case errors.Is(err, storeerrors.ErrQuantityOverflow):
		return http.StatusUnprocessableEntity, "Restock would overflow product quantity"
	case errors.Is(err, storeerrors.ErrTransferFailed):
		return http.StatusBadGateway, "Value transfer failed"
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
