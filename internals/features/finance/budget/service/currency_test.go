package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"educenter_backend/internals/metrics"
)

func TestCurrencyClientParsesRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"usd":{"code":"USD","rate":0.0000812}}`))
	}))
	defer srv.Close()

	c := NewCurrencyClient(srv.URL, time.Second, 0.000079, nil)
	if got := c.USDRate(context.Background()); got != 0.0000812 {
		t.Fatalf("rate = %v", got)
	}
}

func TestCurrencyClientFallsBack(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		"body":   func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"eur":{}}`)) },
		"slow": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			before := testutil.ToFloat64(metrics.CurrencyFallbacks)
			c := NewCurrencyClient(srv.URL, 50*time.Millisecond, 0.000079, nil)
			if got := c.USDRate(context.Background()); got != 0.000079 {
				t.Fatalf("rate = %v, want fallback", got)
			}
			if after := testutil.ToFloat64(metrics.CurrencyFallbacks); after != before+1 {
				t.Fatalf("fallback counter %v -> %v", before, after)
			}
		})
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(decimal.NewFromInt(350), 0.01); got != "$3.50" {
		t.Fatalf("FormatUSD = %q", got)
	}
}
