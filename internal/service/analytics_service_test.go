package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBillingDegradesToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/payments", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"not an array"}`))
	})
	mux.HandleFunc("/api/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/subscription-plans", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Pro","price":120,"interval":"year","is_active":true}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := NewAnalyticsService(nil, srv.URL, time.Second, nil)
	data := svc.FetchBilling(context.Background())

	assert.NotNil(t, data.Payments)
	assert.Empty(t, data.Payments)
	assert.NotNil(t, data.Subscriptions)
	assert.Empty(t, data.Subscriptions)
	require.Len(t, data.Plans, 1)
	assert.Equal(t, "Pro", data.Plans[0].Name)
}

func TestFetchBillingUnreachable(t *testing.T) {
	svc := NewAnalyticsService(nil, "http://127.0.0.1:0", 200*time.Millisecond, nil)
	data := svc.FetchBilling(context.Background())
	assert.Empty(t, data.Payments)
	assert.Empty(t, data.Subscriptions)
	assert.Empty(t, data.Plans)
}

func TestDashboard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/payments", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"x","amount":"100","late_fee":"5"}]`))
	})
	mux.HandleFunc("/api/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"plan_id":1,"status":"active"},{"id":2,"plan_id":2,"status":"active"},{"id":3,"plan_id":1,"status":"cancelled"}]`))
	})
	mux.HandleFunc("/api/subscription-plans", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"price":30,"interval":"month"},{"id":2,"price":"100","interval":"year"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newFixtureStore(t)
	m := NewAnalyticsService(s, srv.URL, time.Second, nil).Dashboard(context.Background())

	assert.Equal(t, 2, m.TotalProperties)
	assert.Equal(t, 1, m.OccupiedProperties)
	assert.Equal(t, 1, m.VacantProperties)
	assert.InDelta(t, 50.0, m.OccupancyRate, 0.001)
	assert.Equal(t, 1, m.ActiveTenants)
	assert.Equal(t, 2, m.TotalTenants)
	assert.True(t, dec("1450").Equal(m.RentCollected))
	assert.True(t, dec("1450").Equal(m.Outstanding))
	assert.Equal(t, 1, m.OpenWorkOrders)

	assert.Equal(t, 1, m.Billing.PaymentCount)
	assert.Equal(t, "105.00", m.Billing.PaymentVolume)
	assert.Equal(t, 2, m.Billing.ActiveSubscriptions)
	assert.Equal(t, "38.33", m.Billing.MonthlyRecurringRevenue.String())
}

func TestDashboardWithoutBillingAPI(t *testing.T) {
	s := newFixtureStore(t)
	m := NewAnalyticsService(s, "", time.Second, nil).Dashboard(context.Background())
	assert.Equal(t, 2, m.TotalProperties)
	assert.Zero(t, m.Billing.PaymentCount)
}
