package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/pos-backoffice/internal/domain/stock"
)

func TestInventory_UpdateStock(t *testing.T) {
	var got stockUpdateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/update-stock", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inv := NewInventory(srv.URL, New(time.Second))
	err := inv.UpdateStock(context.Background(), []stock.Update{{SKU: "1001", Change: -2}})
	require.NoError(t, err)
	assert.Equal(t, []stock.Update{{SKU: "1001", Change: -2}}, got.StockUpdates)
}

func TestInventory_UpdateStock_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	inv := NewInventory(srv.URL, New(time.Second))
	err := inv.UpdateStock(context.Background(), []stock.Update{{SKU: "1001", Change: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestInventory_Products(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"1001":{"name":"Gold Ring","price":140,"cost":90,"stock":5}}`))
	}))
	defer srv.Close()

	inv := NewInventory(srv.URL+"/", New(time.Second))
	products, err := inv.Products(context.Background())
	require.NoError(t, err)

	p, ok := products["1001"]
	require.True(t, ok)
	assert.Equal(t, "Gold Ring", p.Name)
	assert.Equal(t, "140", p.Price.String())
	assert.Equal(t, "90", p.Cost.String())
}

func TestAuth_AwardPoints(t *testing.T) {
	var got pointsRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	auth := NewAuth(srv.URL, New(time.Second))
	err := auth.AwardPoints(context.Background(), "cust-7", 2)
	require.NoError(t, err)
	assert.Equal(t, "/users/cust-7/points", path)
	assert.Equal(t, int64(2), got.Points)
}
