// Package handler exposes the order service over HTTP/JSON.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/pos-backoffice/internal/domain/order"
	"github.com/xenking/pos-backoffice/internal/domain/stats"
)

// Handler routes the order and stats endpoints, delegating all business
// logic to the domain services.
type Handler struct {
	orders *order.Service
	stats  *stats.Service
}

// New constructs a Handler with the required domain services.
func New(orders *order.Service, stats *stats.Service) *Handler {
	return &Handler{orders: orders, stats: stats}
}

// Routes registers all endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.createOrder)
	r.Put("/orders/{orderID}", h.editOrder)
	r.Post("/orders/{orderID}/cancel", h.cancelOrder)
	r.Delete("/orders/{orderID}", h.deleteOrder)
	r.Get("/stats", h.getStats)
}

// messageResponse is the body of acknowledgement and error responses.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(ctx).Debug("Response write failed", zap.Error(err))
	}
}

func writeMessage(ctx context.Context, w http.ResponseWriter, code int, msg string) {
	writeJSON(ctx, w, code, messageResponse{Message: msg})
}

func decodePayload(r *http.Request) (order.Payload, bool) {
	var p order.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return order.Payload{}, false
	}
	return p, true
}
