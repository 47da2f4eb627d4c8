package travel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertFX(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "500", r.URL.Query().Get("amount"))
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "JPY", r.URL.Query().Get("to"))
		fmt.Fprint(w, `{"rates":{"JPY":74312.5},"date":"2026-04-01"}`)
	}))
	t.Cleanup(srv.Close)

	fx := NewCurrencyConverter(func(o *FXOptions) { o.BaseURL = srv.URL })

	result, err := fx.Call(context.Background(), map[string]any{
		"amount": 500.0,
		"base":   "usd",
		"target": "jpy",
	})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, "USD", payload["base"])
	assert.Equal(t, "JPY", payload["target"])
	assert.Equal(t, 500.0, payload["amount"])
	assert.Equal(t, 74312.5, payload["converted_amount"])
	assert.InDelta(t, 148.625, payload["rate"].(float64), 1e-6)
	assert.Equal(t, "2026-04-01", payload["date"])
}

func TestConvertFXUnsupportedCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates":{},"date":"2026-04-01"}`)
	}))
	t.Cleanup(srv.Close)

	fx := NewCurrencyConverter(func(o *FXOptions) { o.BaseURL = srv.URL })

	_, err := fx.Call(context.Background(), map[string]any{
		"amount": 10.0, "base": "USD", "target": "XYZ",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestConvertFXUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	fx := NewCurrencyConverter(func(o *FXOptions) { o.BaseURL = srv.URL })

	_, err := fx.Call(context.Background(), map[string]any{
		"amount": 10.0, "base": "USD", "target": "EUR",
	})
	require.Error(t, err)
}

func TestConvertFXRequiresAllArgs(t *testing.T) {
	fx := NewCurrencyConverter()
	_, err := fx.Call(context.Background(), map[string]any{"amount": 10.0})
	require.Error(t, err)
}
