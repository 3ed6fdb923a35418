package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusLate    = "Late"
)

type Payment struct {
	Base
	TenantID   string          `json:"tenant_id" validate:"required"`
	PropertyID string          `json:"property_id"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date" validate:"required"`
	PaidDate   *time.Time      `json:"paid_date,omitempty"`
	Status     string          `json:"status"`
	Method     string          `json:"method"`
	LateFee    decimal.Decimal `json:"late_fee"`
	Reference  string          `json:"reference"`
}

// Total is the amount owed including any assessed late fee.
func (p Payment) Total() decimal.Decimal {
	return p.Amount.Add(p.LateFee)
}

type PayRequest struct {
	PaidDate time.Time `json:"paid_date" validate:"required"`
	Method   string    `json:"method"`
}

const (
	LateFeeModeFlat    = "flat"
	LateFeeModePercent = "percent"
)

type LateFeeConfig struct {
	Enabled        bool            `json:"enabled"`
	Mode           string          `json:"mode" validate:"oneof=flat percent"`
	BaseFee        decimal.Decimal `json:"base_fee"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
	PercentageRate decimal.Decimal `json:"percentage_rate"`
	GraceDays      int             `json:"grace_days" validate:"gte=0"`
}

// LateFeeSettings is a property-level override; nil fields fall back to the
// global LateFeeConfig.
type LateFeeSettings struct {
	Enabled        *bool            `json:"enabled,omitempty"`
	Mode           *string          `json:"mode,omitempty"`
	BaseFee        *decimal.Decimal `json:"base_fee,omitempty"`
	DailyRate      *decimal.Decimal `json:"daily_rate,omitempty"`
	PercentageRate *decimal.Decimal `json:"percentage_rate,omitempty"`
	GraceDays      *int             `json:"grace_days,omitempty"`
}

type Settings struct {
	LateFee LateFeeConfig `json:"late_fee"`
}
