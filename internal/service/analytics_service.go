package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"property-crm/internal/models"
	"property-crm/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BillingData is the read-only billing snapshot behind the dashboard.
type BillingData struct {
	Payments      []models.Payment          `json:"payments"`
	Subscriptions []models.Subscription     `json:"subscriptions"`
	Plans         []models.SubscriptionPlan `json:"plans"`
}

type BillingSummary struct {
	PaymentCount            int             `json:"payment_count"`
	PaymentVolume           string          `json:"payment_volume"`
	ActiveSubscriptions     int             `json:"active_subscriptions"`
	MonthlyRecurringRevenue decimal.Decimal `json:"monthly_recurring_revenue"`
}

type DashboardMetrics struct {
	TotalProperties    int     `json:"total_properties"`
	OccupiedProperties int     `json:"occupied_properties"`
	VacantProperties   int     `json:"vacant_properties"`
	OccupancyRate      float64 `json:"occupancy_rate"`
	ActiveTenants      int     `json:"active_tenants"`
	TotalTenants       int     `json:"total_tenants"`

	RentCollected  decimal.Decimal `json:"rent_collected"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	LateFees       decimal.Decimal `json:"late_fees"`
	LatePayments   int             `json:"late_payments"`
	OpenWorkOrders int             `json:"open_work_orders"`

	Billing     BillingSummary `json:"billing"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type AnalyticsService struct {
	store   *store.Store
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
	now     func() time.Time
}

func NewAnalyticsService(s *store.Store, baseURL string, timeout time.Duration, logger *logrus.Logger) *AnalyticsService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AnalyticsService{
		store:   s,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FetchBilling loads payments, subscriptions and plans concurrently. Each
// source that fails or does not return a JSON array degrades to an empty
// slice; FetchBilling itself never fails.
func (s *AnalyticsService) FetchBilling(ctx context.Context) BillingData {
	data := BillingData{
		Payments:      []models.Payment{},
		Subscriptions: []models.Subscription{},
		Plans:         []models.SubscriptionPlan{},
	}

	var g errgroup.Group
	g.Go(func() error {
		data.Payments = fetchArray[models.Payment](ctx, s, "/api/payments")
		return nil
	})
	g.Go(func() error {
		data.Subscriptions = fetchArray[models.Subscription](ctx, s, "/api/subscriptions")
		return nil
	})
	g.Go(func() error {
		data.Plans = fetchArray[models.SubscriptionPlan](ctx, s, "/api/subscription-plans")
		return nil
	})
	_ = g.Wait()

	return data
}

func fetchArray[T any](ctx context.Context, s *AnalyticsService, path string) []T {
	out := []T{}
	if s.baseURL == "" {
		return out
	}
	log := s.logger.WithField("endpoint", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		log.WithError(err).Warn("Failed to build analytics request")
		return out
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("Analytics fetch failed")
		return out
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Warn("Analytics endpoint returned non-OK status")
		return out
	}

	var items []T
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		log.WithError(err).Warn("Analytics endpoint did not return an array")
		return out
	}
	if items == nil {
		return out
	}
	return items
}

// Dashboard combines store-derived rent and occupancy metrics with the
// billing snapshot.
func (s *AnalyticsService) Dashboard(ctx context.Context) DashboardMetrics {
	billing := s.FetchBilling(ctx)

	m := DashboardMetrics{
		RentCollected: decimal.Zero,
		Outstanding:   decimal.Zero,
		LateFees:      decimal.Zero,
		GeneratedAt:   s.now(),
	}

	s.store.View(func(d *store.Data) {
		m.TotalProperties = len(d.Properties)
		for _, p := range d.Properties {
			if p.Occupancy > 0 {
				m.OccupiedProperties++
			}
		}
		m.VacantProperties = m.TotalProperties - m.OccupiedProperties
		if m.TotalProperties > 0 {
			m.OccupancyRate = float64(m.OccupiedProperties) / float64(m.TotalProperties) * 100
		}

		m.TotalTenants = len(d.Tenants)
		for i := range d.Tenants {
			if d.Tenants[i].IsActive() {
				m.ActiveTenants++
			}
		}

		for _, p := range d.Payments {
			switch p.Status {
			case models.PaymentStatusPaid, models.PaymentStatusLate:
				m.RentCollected = m.RentCollected.Add(p.Amount)
				m.LateFees = m.LateFees.Add(p.LateFee)
				if p.Status == models.PaymentStatusLate {
					m.LatePayments++
				}
			default:
				m.Outstanding = m.Outstanding.Add(p.Amount)
			}
		}

		for _, wo := range d.WorkOrders {
			if wo.Status == models.WorkOrderStatusOpen || wo.Status == models.WorkOrderStatusInProgress {
				m.OpenWorkOrders++
			}
		}
	})

	m.Billing = summarizeBilling(billing)
	return m
}

var monthsPerYear = decimal.NewFromInt(12)

func summarizeBilling(b BillingData) BillingSummary {
	summary := BillingSummary{
		PaymentCount:            len(b.Payments),
		MonthlyRecurringRevenue: decimal.Zero,
	}

	volume := decimal.Zero
	for _, p := range b.Payments {
		volume = volume.Add(p.Total())
	}
	summary.PaymentVolume = volume.StringFixed(2)

	plans := make(map[int]models.SubscriptionPlan, len(b.Plans))
	for _, p := range b.Plans {
		plans[p.ID] = p
	}
	for _, sub := range b.Subscriptions {
		if sub.Status != "active" {
			continue
		}
		summary.ActiveSubscriptions++
		plan, ok := plans[sub.PlanID]
		if !ok {
			continue
		}
		monthly := plan.Price
		if plan.Interval == "year" {
			monthly = monthly.Div(monthsPerYear)
		}
		summary.MonthlyRecurringRevenue = summary.MonthlyRecurringRevenue.Add(monthly)
	}
	summary.MonthlyRecurringRevenue = summary.MonthlyRecurringRevenue.Round(2)
	return summary
}
