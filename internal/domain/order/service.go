package order

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/pos-backoffice/internal/domain/stock"
)

// StockDispatcher sends a batched stock adjustment to the inventory service.
type StockDispatcher interface {
	UpdateStock(ctx context.Context, updates []stock.Update) error
}

// PointsAwarder credits loyalty points to a customer on the auth service.
type PointsAwarder interface {
	AwardPoints(ctx context.Context, customerID string, points int64) error
}

// Payload carries the caller-supplied, mutable fields of an order. Only these
// whitelisted fields are ever merged into a stored record; anything else in a
// request body is discarded. On edit, nil Items / Total / CustomerDetails and
// empty User.Name / PaymentMethod leave the stored value untouched.
type Payload struct {
	Items           []Item    `json:"items"`
	Total           *float64  `json:"total"`
	User            User      `json:"user"`
	CustomerDetails *Customer `json:"customerDetails"`
	PaymentMethod   string    `json:"paymentMethod"`
}

// Service owns the order lifecycle: identifier generation, state transitions
// and their invariants, and the stock-reconciliation dispatches that keep
// inventory consistent with order state.
//
// All mutations commit locally first; collaborator calls happen after the
// durable write, outside the store lock, and their failures are logged but
// never propagated to the caller.
type Service struct {
	store     Store
	inventory StockDispatcher
	loyalty   PointsAwarder

	now func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(store Store, inventory StockDispatcher, loyalty PointsAwarder) *Service {
	return &Service{
		store:     store,
		inventory: inventory,
		loyalty:   loyalty,
		now:       time.Now,
	}
}

// nextID issues the next daily-scoped order identifier. Must be called under
// the store's exclusive lock; the single-writer discipline is what keeps the
// sequence unique. The %04d padding widens past 9999 instead of wrapping.
func nextID(st *State, now time.Time) string {
	day := now.Format("20060102")
	if st.Counters == nil {
		st.Counters = make(map[string]int)
	}
	st.Counters[day]++
	return fmt.Sprintf("#ORD-%s-%04d", day, st.Counters[day])
}

// itemSet projects order lines onto the inventory-tracked sku space.
func itemSet(items []Item) stock.Set {
	s := stock.NewSet()
	for _, it := range items {
		s.Add(it.SKU, it.Qty)
	}
	return s
}

func validateItems(items []Item) error {
	for _, it := range items {
		if it.Qty <= 0 {
			return &InvalidQuantityError{SKU: it.SKU}
		}
	}
	return nil
}

func findIndex(orders []Order, id string) int {
	for i := range orders {
		if orders[i].OrderID != "" && orders[i].OrderID == id {
			return i
		}
	}
	return -1
}

// Create assigns a fresh order id, stamps timestamp and COMPLETED status,
// durably appends the order, then dispatches the consumption delta and, for
// loyalty customers, awards floor(total/100) points.
func (s *Service) Create(ctx context.Context, p Payload) (*Order, error) {
	if len(p.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if err := validateItems(p.Items); err != nil {
		return nil, err
	}

	total := 0.0
	if p.Total != nil {
		total = *p.Total
	}

	now := s.now()
	var created Order
	err := s.store.Update(func(st *State) error {
		created = Order{
			OrderID:         nextID(st, now),
			Timestamp:       now.UTC(),
			Status:          StatusCompleted,
			Items:           p.Items,
			Total:           total,
			User:            p.User,
			CustomerDetails: p.CustomerDetails,
			PaymentMethod:   p.PaymentMethod,
		}
		st.Orders = append(st.Orders, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, created.OrderID, stock.Set(nil).Diff(itemSet(created.Items)))
	s.awardPoints(ctx, &created)

	zctx.From(ctx).Info("Order created",
		zap.String("order_id", created.OrderID),
		zap.String("cashier", created.User.Name))
	return &created, nil
}

// Edit merges the whitelisted payload fields into an existing order, forces
// EDITED status, and dispatches the net item diff. Editing with an identical
// item set dispatches nothing.
func (s *Service) Edit(ctx context.Context, orderID string, p Payload) error {
	id := NormalizeID(orderID)
	if p.Items != nil {
		if err := validateItems(p.Items); err != nil {
			return err
		}
	}

	var changes stock.Changes
	err := s.store.Update(func(st *State) error {
		i := findIndex(st.Orders, id)
		if i < 0 {
			return ErrNotFound
		}
		o := &st.Orders[i]

		if p.Items != nil {
			changes = itemSet(o.Items).Diff(itemSet(p.Items))
			o.Items = p.Items
		}
		if p.Total != nil {
			o.Total = *p.Total
		}
		if p.User.Name != "" {
			o.User = p.User
		}
		if p.CustomerDetails != nil {
			o.CustomerDetails = p.CustomerDetails
		}
		if p.PaymentMethod != "" {
			o.PaymentMethod = p.PaymentMethod
		}
		o.Status = StatusEdited
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatch(ctx, id, changes)

	zctx.From(ctx).Info("Order edited", zap.String("order_id", id))
	return nil
}

// Cancel marks an order CANCELLED and returns its items to stock. The
// terminal guard rejects an already-cancelled order so stock is never
// credited twice; per the published contract this surfaces as not found.
func (s *Service) Cancel(ctx context.Context, orderID string) error {
	id := NormalizeID(orderID)

	var changes stock.Changes
	err := s.store.Update(func(st *State) error {
		i := findIndex(st.Orders, id)
		if i < 0 {
			return ErrNotFound
		}
		o := &st.Orders[i]
		if o.Status == StatusCancelled {
			return ErrNotFound
		}
		changes = itemSet(o.Items).Diff(nil)
		o.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatch(ctx, id, changes)

	zctx.From(ctx).Info("Order cancelled", zap.String("order_id", id))
	return nil
}

// Delete permanently removes an order. Items of a not-yet-cancelled order are
// returned to stock first; a failure of that dispatch is logged and swallowed
// so the delete itself always proceeds. Cancelled orders were already
// reconciled and trigger no dispatch.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	id := NormalizeID(orderID)

	var changes stock.Changes
	err := s.store.Update(func(st *State) error {
		i := findIndex(st.Orders, id)
		if i < 0 {
			return ErrNotFound
		}
		if st.Orders[i].Status != StatusCancelled {
			changes = itemSet(st.Orders[i].Items).Diff(nil)
		}
		st.Orders = append(st.Orders[:i], st.Orders[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatch(ctx, id, changes)

	zctx.From(ctx).Info("Order permanently deleted", zap.String("order_id", id))
	return nil
}

// List returns every order carrying a valid id, newest first. The zero-padded
// fixed-width id format makes the lexicographic sort a (date, sequence)
// ordering; that invariant must hold for any future id format change.
func (s *Service) List() []Order {
	var out []Order
	s.store.View(func(st State) {
		out = make([]Order, 0, len(st.Orders))
		for _, o := range st.Orders {
			if o.OrderID == "" {
				continue
			}
			out = append(out, o)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID > out[j].OrderID })
	return out
}

// dispatch sends a non-empty delta batch to inventory. Failures leave local
// state committed and are logged for later reconciliation.
func (s *Service) dispatch(ctx context.Context, orderID string, changes stock.Changes) {
	updates := changes.Updates()
	if len(updates) == 0 {
		return
	}
	if err := s.inventory.UpdateStock(ctx, updates); err != nil {
		zctx.From(ctx).Error("Stock dispatch failed, inventory will drift until reconciled",
			zap.String("order_id", orderID),
			zap.Int("updates", len(updates)),
			zap.Error(err))
	}
}

// awardPoints credits floor(total/100) loyalty points for sales attached to a
// loyalty customer. Best effort: the order is already committed.
func (s *Service) awardPoints(ctx context.Context, o *Order) {
	if o.CustomerDetails == nil || o.CustomerDetails.ID == "" {
		return
	}
	points := decimal.NewFromFloat(o.Total).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
	if points <= 0 {
		return
	}
	if err := s.loyalty.AwardPoints(ctx, o.CustomerDetails.ID, points); err != nil {
		zctx.From(ctx).Error("Loyalty points award failed",
			zap.String("order_id", o.OrderID),
			zap.String("customer_id", o.CustomerDetails.ID),
			zap.Int64("points", points),
			zap.Error(err))
	}
}
