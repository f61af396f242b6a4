package handler

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/inventory-service/internal/core/service"
	"github.com/rl1809/inventory-service/internal/platform/observability"
	"github.com/rl1809/inventory-service/internal/port"
)

const (
	apiKeyHeader    = "x-api-key"
	requestIDHeader = "X-Request-ID"

	msgNotFound        = "Product or inventory not found"
	msgUpdated         = "Inventory updated successfully"
	msgUpdateFailed    = "Failed to update inventory"
	msgInvalidID       = "Invalid product ID"
	msgInvalidBody     = "Invalid request body"
	msgInvalidQuantity = "Invalid quantity"
	msgUnauthorized    = "Unauthorized"
)

//go:embed openapi.yaml
var openAPIDocument []byte

type HTTPHandler struct {
	inventoryService *service.InventoryService
	authorizer       port.Authorizer
	logger           *zap.Logger
	validate         *validator.Validate
}

type UpdateInventoryHTTPRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type MessageHTTPResponse struct {
	Message string `json:"message"`
}

type ErrorHTTPResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(inventoryService *service.InventoryService, authorizer port.Authorizer, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		inventoryService: inventoryService,
		authorizer:       authorizer,
		logger:           logger,
		validate:         validator.New(),
	}
}

// Routes builds the router. Only the write endpoint sits behind the API key.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(h.RequestID)
	r.Use(h.AccessLog)
	r.Use(middleware.Recoverer)

	r.Get("/api-docs", h.APIDocs)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)
		r.Get("/inventories/{productId}", h.GetInventory)
		r.With(h.RequireAPIKey).Put("/inventories/{productId}", h.UpdateInventory)
	})

	return r
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorHTTPResponse{Error: msgNotFound})
		return
	}

	doc, err := h.inventoryService.GetInventory(r.Context(), productID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorHTTPResponse{Error: msgNotFound})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *HTTPHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: msgInvalidID})
		return
	}

	var req UpdateInventoryHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: msgInvalidBody})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: msgInvalidQuantity})
		return
	}

	err := h.inventoryService.UpdateInventory(r.Context(), productID, *req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: msgInvalidQuantity})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorHTTPResponse{Error: msgUpdateFailed})
		return
	}

	writeJSON(w, http.StatusOK, MessageHTTPResponse{Message: msgUpdated})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) APIDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(openAPIDocument)
}

// RequireAPIKey rejects the request before the handler runs when the
// x-api-key header is missing or does not validate.
func (h *HTTPHandler) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorizer.Validate(r.Header.Get(apiKeyHeader)) {
			h.logger.Warn("Rejected unauthorized request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("request_id", observability.RequestIDFrom(r.Context())),
			)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(msgUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
	})
}

func (h *HTTPHandler) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", observability.RequestIDFrom(r.Context())),
		)
	})
}

func parseProductID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
