// Package stats derives read-only sales analytics by joining the stored
// orders with live product data from the inventory service.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/pos-backoffice/internal/domain/order"
)

// Product is the subset of an inventory record the aggregator needs to
// compute per-item profit.
type Product struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Cost  decimal.Decimal `json:"cost"`
}

// Catalog fetches the current product map (sku -> product) from inventory.
type Catalog interface {
	Products(ctx context.Context) (map[string]Product, error)
}

// NameCount is a labelled sale counter.
type NameCount struct {
	Name  string `json:"name"`
	Sales int    `json:"sales"`
}

// NameProfit is a per-product profit total.
type NameProfit struct {
	Name   string  `json:"name"`
	Profit float64 `json:"profit"`
}

// Report is the aggregated sales view over all COMPLETED and EDITED orders.
type Report struct {
	TotalRevenue   float64      `json:"totalRevenue"`
	TotalSales     int          `json:"totalSales"`
	SalesByCashier []NameCount  `json:"salesByCashier"`
	SalesByHour    []NameCount  `json:"salesByHour"`
	ProfitByItem   []NameProfit `json:"profitByItem"`
}

// profitTop caps the per-item profit ranking.
const profitTop = 10

// Service computes reports from the order store and the inventory catalog.
type Service struct {
	store   order.Store
	catalog Catalog
}

// NewService creates a stats Service.
func NewService(store order.Store, catalog Catalog) *Service {
	return &Service{store: store, catalog: catalog}
}

// Report builds the full stats report. The product fetch runs concurrently
// with the local order scan; if inventory is unreachable the whole report
// fails rather than returning partial numbers.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	g, ctx := errgroup.WithContext(ctx)

	var products map[string]Product
	g.Go(func() error {
		var err error
		products, err = s.catalog.Products(ctx)
		return errors.Wrap(err, "fetch products")
	})

	var sold []order.Order
	g.Go(func() error {
		s.store.View(func(st order.State) {
			for _, o := range st.Orders {
				if o.Status == order.StatusCompleted || o.Status == order.StatusEdited {
					sold = append(sold, o)
				}
			}
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	byCashier := make(map[string]int)
	byHour := make(map[string]int)
	profit := make(map[string]decimal.Decimal)

	for _, o := range sold {
		revenue = revenue.Add(decimal.NewFromFloat(o.Total))

		if o.User.Name != "" {
			byCashier[o.User.Name]++
		}

		hour := fmt.Sprintf("%02d:00", o.Timestamp.Local().Hour())
		byHour[hour]++

		for _, it := range o.Items {
			if it.SKU == "" || strings.HasPrefix(it.SKU, "CUSTOM-") {
				continue
			}
			p, ok := products[it.SKU]
			if !ok {
				// Product removed from inventory since the sale; no cost basis.
				continue
			}
			margin := p.Price.Sub(p.Cost).Mul(decimal.NewFromInt(int64(it.Qty)))
			profit[p.Name] = profit[p.Name].Add(margin)
		}
	}

	report := &Report{
		TotalRevenue:   revenue.InexactFloat64(),
		TotalSales:     len(sold),
		SalesByCashier: sortedCounts(byCashier),
		SalesByHour:    sortedCounts(byHour),
		ProfitByItem:   topProfits(profit, profitTop),
	}
	return report, nil
}

// sortedCounts flattens a counter map sorted ascending by label. Hour labels
// of the form HH:00 therefore come out in chronological order.
func sortedCounts(counts map[string]int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, sales := range counts {
		out = append(out, NameCount{Name: name, Sales: sales})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// topProfits ranks products by profit descending (name ascending on ties)
// and keeps the first limit entries.
func topProfits(profit map[string]decimal.Decimal, limit int) []NameProfit {
	out := make([]NameProfit, 0, len(profit))
	for name, p := range profit {
		out = append(out, NameProfit{Name: name, Profit: p.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Profit != out[j].Profit {
			return out[i].Profit > out[j].Profit
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
