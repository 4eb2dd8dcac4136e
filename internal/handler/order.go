package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/pos-backoffice/internal/domain/order"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.orders.List())
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, ok := decodePayload(r)
	if !ok {
		writeMessage(ctx, w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	created, err := h.orders.Create(ctx, payload)
	if err != nil {
		h.writeOrderError(ctx, w, err, "Order not found.")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, created)
}

func (h *Handler) editOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, ok := decodePayload(r)
	if !ok {
		writeMessage(ctx, w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if err := h.orders.Edit(ctx, chi.URLParam(r, "orderID"), payload); err != nil {
		h.writeOrderError(ctx, w, err, "Order not found.")
		return
	}
	writeMessage(ctx, w, http.StatusOK, "Order updated successfully")
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.orders.Cancel(ctx, chi.URLParam(r, "orderID")); err != nil {
		// Re-cancelling a cancelled order is indistinguishable from a
		// missing order at this surface, per the published contract.
		h.writeOrderError(ctx, w, err, "Order not found or already cancelled.")
		return
	}
	writeMessage(ctx, w, http.StatusOK, "Order cancelled and items restocked.")
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.orders.Delete(ctx, chi.URLParam(r, "orderID")); err != nil {
		h.writeOrderError(ctx, w, err, "Order not found.")
		return
	}
	writeMessage(ctx, w, http.StatusOK, "Order permanently deleted.")
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.stats.Report(ctx)
	if err != nil {
		zctx.From(ctx).Error("Stats report failed", zap.Error(err))
		writeMessage(ctx, w, http.StatusBadGateway, "Stats unavailable: inventory data could not be fetched.")
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

// writeOrderError maps domain errors onto the HTTP contract.
func (h *Handler) writeOrderError(ctx context.Context, w http.ResponseWriter, err error, notFoundMsg string) {
	var iqErr *order.InvalidQuantityError
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeMessage(ctx, w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, order.ErrEmptyItems):
		writeMessage(ctx, w, http.StatusBadRequest, err.Error())
	case errors.As(err, &iqErr):
		writeMessage(ctx, w, http.StatusBadRequest, iqErr.Error())
	default:
		zctx.From(ctx).Error("Order operation failed", zap.Error(err))
		writeMessage(ctx, w, http.StatusInternalServerError, "Internal server error.")
	}
}
