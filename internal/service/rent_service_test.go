package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"property-crm/internal/models"
	"property-crm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkFunc func(ctx context.Context, event string, payload any)

func (f sinkFunc) Emit(ctx context.Context, event string, payload any) { f(ctx, event, payload) }

func newFixtureStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.NewMemorySnapshotStore(), store.WithSettings(models.Settings{
		LateFee: models.LateFeeConfig{
			Enabled:   true,
			Mode:      models.LateFeeModeFlat,
			BaseFee:   dec("10"),
			DailyRate: dec("2"),
			GraceDays: 5,
		},
	}))
	require.NoError(t, s.Load(context.Background(), store.Fixtures(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))))
	return s
}

func TestRecordPaymentLate(t *testing.T) {
	s := newFixtureStore(t)
	var recorded []string
	rent := NewRentService(s, sinkFunc(func(_ context.Context, event string, _ any) {
		recorded = append(recorded, event)
	}))

	// pay-1002 is due 2024-04-01 on prop-1001, which uses the global rules
	paid, err := rent.RecordPayment(context.Background(), "pay-1002", models.PayRequest{
		PaidDate: day("2024-04-11"),
		Method:   "Card",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusLate, paid.Status)
	assert.True(t, dec("20").Equal(paid.LateFee))
	assert.True(t, dec("1470").Equal(paid.Total()))
	assert.Equal(t, "Card", paid.Method)
	assert.Equal(t, []string{"payment.recorded"}, recorded)

	stored, err := store.Find(s, store.Payments, "pay-1002")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusLate, stored.Status)
}

func TestRecordPaymentOnTime(t *testing.T) {
	s := newFixtureStore(t)
	rent := NewRentService(s, nil)

	paid, err := rent.RecordPayment(context.Background(), "pay-1002", models.PayRequest{PaidDate: day("2024-04-03")})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
	assert.True(t, paid.LateFee.IsZero())
}

func TestRecordPaymentUsesPropertyOverride(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()

	// prop-1002 overrides grace days to 3
	p, err := store.Insert(ctx, s, store.Payments, models.Payment{
		TenantID:   "tenant-1002",
		PropertyID: "prop-1002",
		Amount:     dec("2100"),
		DueDate:    day("2024-04-01"),
	})
	require.NoError(t, err)

	rent := NewRentService(s, nil)
	paid, err := rent.RecordPayment(ctx, p.ID, models.PayRequest{PaidDate: day("2024-04-05")})
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(paid.LateFee), paid.LateFee.String())
}

func TestRecordPaymentDisabledFees(t *testing.T) {
	s := newFixtureStore(t)
	settings := s.Settings()
	settings.LateFee.Enabled = false
	require.NoError(t, s.UpdateSettings(context.Background(), settings))

	paid, err := NewRentService(s, nil).RecordPayment(context.Background(), "pay-1002", models.PayRequest{PaidDate: day("2024-05-01")})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
	assert.True(t, paid.LateFee.IsZero())
}

func TestRecordPaymentErrors(t *testing.T) {
	s := newFixtureStore(t)
	rent := NewRentService(s, nil)

	_, err := rent.RecordPayment(context.Background(), "pay-1001", models.PayRequest{PaidDate: day("2024-03-02")})
	assert.True(t, errors.Is(err, ErrPaymentAlreadyPaid))

	_, err = rent.RecordPayment(context.Background(), "missing", models.PayRequest{PaidDate: day("2024-03-02")})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordPaymentConcurrentlyRecordsOnce(t *testing.T) {
	s := newFixtureStore(t)
	rent := NewRentService(s, nil)

	const attempts = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []models.Payment
		already int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paid, err := rent.RecordPayment(context.Background(), "pay-1002", models.PayRequest{
				PaidDate: day("2024-04-01").AddDate(0, 0, i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, paid)
			case errors.Is(err, ErrPaymentAlreadyPaid):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, attempts-1, already)

	stored, err := store.Find(s, store.Payments, "pay-1002")
	require.NoError(t, err)
	require.NotNil(t, stored.PaidDate)
	assert.True(t, stored.PaidDate.Equal(*winners[0].PaidDate))
	assert.True(t, stored.LateFee.Equal(winners[0].LateFee))
}
