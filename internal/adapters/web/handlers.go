// Package web exposes the back office over a JSON HTTP API.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"commerce-backoffice/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc app.ApplicationService
	log *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log *zap.Logger) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// Checkout
	r.Post("/api/pos/checkout", h.posCheckout)
	r.Post("/api/checkout", h.onlineCheckout)
	r.Post("/api/checkout/prepare", h.preparePayment)
	r.Post("/api/checkout/confirm", h.confirmPayment)

	// Orders
	r.Get("/api/orders", h.listOrders)
	r.Get("/api/orders/{id}", h.getOrder)

	// Inventory
	r.Get("/api/stock", h.stockLevels)
	r.Post("/api/stock/adjust", h.adjustStock)
	r.Get("/api/stock/{id}/adjustments", h.listAdjustments)

	// Ledger
	r.Get("/api/ledger", h.ledgerEntries)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v. On failure it writes the error
// response and returns false: 413 when the body limit was hit, 400 otherwise.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, "request body too large", "BODY_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) posCheckout(w http.ResponseWriter, r *http.Request) {
	var req app.POSCheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CheckoutPOS(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) onlineCheckout(w http.ResponseWriter, r *http.Request) {
	var req app.OnlineCheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CheckoutOnline(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) preparePayment(w http.ResponseWriter, r *http.Request) {
	var req app.OnlineCheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.PrepareOnlinePayment(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, r, "token is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.ConfirmOnlinePayment(r.Context(), req.Token)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	res, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("channel"), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetStockLevels(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req app.AdjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AdjustStock(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) listAdjustments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid item id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	res, err := h.svc.ListAdjustments(r.Context(), id, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) ledgerEntries(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	res, err := h.svc.GetLedgerEntries(r.Context(), r.URL.Query().Get("fy"), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}
