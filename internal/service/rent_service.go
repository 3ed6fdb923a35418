package service

import (
	"context"
	"errors"
	"fmt"

	"property-crm/internal/models"
	"property-crm/internal/store"

	"github.com/shopspring/decimal"
)

var ErrPaymentAlreadyPaid = errors.New("payment already recorded")

type RentService struct {
	store  *store.Store
	events store.EventSink
}

func NewRentService(s *store.Store, events store.EventSink) *RentService {
	return &RentService{store: s, events: events}
}

// lateFeeConfig returns the late-fee rules that apply to a property, falling
// back to the global settings when the property is unknown.
func lateFeeConfig(d *store.Data, propertyID string) models.LateFeeConfig {
	if p, ok := d.Property(propertyID); ok {
		return EffectiveLateFeeConfig(d.Settings.LateFee, &p)
	}
	return d.Settings.LateFee
}

// RecordPayment marks a payment as paid on req.PaidDate, assessing the late
// fee from the effective configuration. A payment with a fee is stored as
// Late, otherwise as Paid. The check and the write happen atomically, so a
// payment is recorded at most once.
func (s *RentService) RecordPayment(ctx context.Context, paymentID string, req models.PayRequest) (models.Payment, error) {
	updated, err := store.Update(ctx, s.store, store.Payments, paymentID, func(d *store.Data, payment *models.Payment) error {
		if payment.PaidDate != nil {
			return fmt.Errorf("payment %s: %w", paymentID, ErrPaymentAlreadyPaid)
		}

		cfg := lateFeeConfig(d, payment.PropertyID)
		fee := decimal.Zero
		if cfg.Enabled {
			fee = CalculateLateFee(payment.Amount, payment.DueDate, req.PaidDate, cfg)
		}

		paid := req.PaidDate.UTC()
		payment.PaidDate = &paid
		payment.LateFee = fee
		if req.Method != "" {
			payment.Method = req.Method
		}
		payment.Status = models.PaymentStatusPaid
		if fee.IsPositive() {
			payment.Status = models.PaymentStatusLate
		}
		return nil
	})
	if err != nil {
		return models.Payment{}, err
	}
	if s.events != nil {
		s.events.Emit(ctx, "payment.recorded", updated)
	}
	return updated, nil
}
