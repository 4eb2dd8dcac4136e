package stats

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/pos-backoffice/internal/domain/order"
)

type memStore struct {
	state order.State
}

func (m *memStore) Update(fn func(*order.State) error) error {
	return fn(&m.state)
}

func (m *memStore) View(fn func(order.State)) {
	fn(m.state)
}

type fakeCatalog struct {
	products map[string]Product
	err      error
}

func (f *fakeCatalog) Products(_ context.Context) (map[string]Product, error) {
	return f.products, f.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(hour int) time.Time {
	return time.Date(2024, 1, 1, hour, 15, 0, 0, time.Local)
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]Product{
		"1001": {Name: "Gold Ring", Price: dec("140"), Cost: dec("90")},
		"2002": {Name: "Silver Chain", Price: dec("60"), Cost: dec("25")},
	}}
}

func TestReport_AggregatesSales(t *testing.T) {
	st := &memStore{state: order.State{Orders: []order.Order{
		{
			OrderID:   "#ORD-20240101-0001",
			Timestamp: at(9),
			Status:    order.StatusCompleted,
			Items:     []order.Item{{SKU: "1001", Qty: 2}},
			Total:     280,
			User:      order.User{Name: "Dana"},
		},
		{
			OrderID:   "#ORD-20240101-0002",
			Timestamp: at(9),
			Status:    order.StatusEdited,
			Items:     []order.Item{{SKU: "2002", Qty: 1}},
			Total:     60,
			User:      order.User{Name: "Dana"},
		},
		{
			OrderID:   "#ORD-20240101-0003",
			Timestamp: at(14),
			Status:    order.StatusCompleted,
			Items:     []order.Item{{SKU: "1001", Qty: 1}},
			Total:     140,
			User:      order.User{Name: "Mike"},
		},
		{
			// Cancelled orders are excluded from every aggregate.
			OrderID:   "#ORD-20240101-0004",
			Timestamp: at(14),
			Status:    order.StatusCancelled,
			Items:     []order.Item{{SKU: "1001", Qty: 5}},
			Total:     700,
			User:      order.User{Name: "Mike"},
		},
	}}}

	svc := NewService(st, testCatalog())
	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 480.0, report.TotalRevenue)
	assert.Equal(t, 3, report.TotalSales)
	assert.Equal(t, []NameCount{{Name: "Dana", Sales: 2}, {Name: "Mike", Sales: 1}}, report.SalesByCashier)
	assert.Equal(t, []NameCount{{Name: "09:00", Sales: 2}, {Name: "14:00", Sales: 1}}, report.SalesByHour)
	// Gold Ring: (140-90)*3 = 150, Silver Chain: (60-25)*1 = 35.
	assert.Equal(t, []NameProfit{
		{Name: "Gold Ring", Profit: 150},
		{Name: "Silver Chain", Profit: 35},
	}, report.ProfitByItem)
}

func TestReport_SkipsCustomAndUnknownSKUs(t *testing.T) {
	st := &memStore{state: order.State{Orders: []order.Order{
		{
			OrderID:   "#ORD-20240101-0001",
			Timestamp: at(9),
			Status:    order.StatusCompleted,
			Items: []order.Item{
				{SKU: "CUSTOM-resize", Qty: 1},
				{SKU: "gone-sku", Qty: 3},
				{SKU: "1001", Qty: 1},
			},
			Total: 200,
		},
	}}}

	svc := NewService(st, testCatalog())
	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []NameProfit{{Name: "Gold Ring", Profit: 50}}, report.ProfitByItem)
}

func TestReport_ProfitTruncatedToTopTen(t *testing.T) {
	products := make(map[string]Product)
	var orders []order.Order
	for i := 0; i < 12; i++ {
		sku := string(rune('a' + i))
		products[sku] = Product{
			Name:  "Item " + sku,
			Price: decimal.NewFromInt(int64(10 + i)),
			Cost:  decimal.NewFromInt(5),
		}
		orders = append(orders, order.Order{
			OrderID:   "#ORD-20240101-000" + sku,
			Timestamp: at(9),
			Status:    order.StatusCompleted,
			Items:     []order.Item{{SKU: sku, Qty: 1}},
		})
	}

	svc := NewService(&memStore{state: order.State{Orders: orders}}, &fakeCatalog{products: products})
	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	require.Len(t, report.ProfitByItem, 10)
	assert.Equal(t, "Item l", report.ProfitByItem[0].Name, "highest margin first")
}

func TestReport_EmptyStore(t *testing.T) {
	svc := NewService(&memStore{}, testCatalog())
	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.TotalRevenue)
	assert.Zero(t, report.TotalSales)
	assert.Empty(t, report.SalesByCashier)
	assert.Empty(t, report.ProfitByItem)
}

func TestReport_FailsWhenInventoryUnavailable(t *testing.T) {
	svc := NewService(&memStore{}, &fakeCatalog{err: errors.New("connection refused")})

	_, err := svc.Report(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch products")
}
