package service

import (
	"time"

	"property-crm/internal/config"
	"property-crm/internal/models"

	"github.com/shopspring/decimal"
)

// CalculateLateFee returns the fee owed for a payment of amount that was due
// on due and paid on paid. Days late are whole 24h periods; the fee accrues
// only past the grace period.
func CalculateLateFee(amount decimal.Decimal, due, paid time.Time, cfg models.LateFeeConfig) decimal.Decimal {
	if !paid.After(due) {
		return decimal.Zero
	}

	daysLate := int(paid.Sub(due) / (24 * time.Hour))
	effective := daysLate - cfg.GraceDays
	if effective <= 0 {
		return decimal.Zero
	}

	switch cfg.Mode {
	case models.LateFeeModePercent:
		return cfg.BaseFee.Add(amount.Mul(cfg.PercentageRate))
	default:
		return cfg.BaseFee.Add(cfg.DailyRate.Mul(decimal.NewFromInt(int64(effective))))
	}
}

// EffectiveLateFeeConfig overlays a property's late-fee settings on the
// global config. Settings apply only when the property's override flag is on,
// and only the fields that are set.
func EffectiveLateFeeConfig(global models.LateFeeConfig, property *models.Property) models.LateFeeConfig {
	cfg := global
	if property == nil || !property.LateFeeOverride || property.LateFeeSettings == nil {
		return cfg
	}

	o := property.LateFeeSettings
	if o.Enabled != nil {
		cfg.Enabled = *o.Enabled
	}
	if o.Mode != nil {
		cfg.Mode = *o.Mode
	}
	if o.BaseFee != nil {
		cfg.BaseFee = *o.BaseFee
	}
	if o.DailyRate != nil {
		cfg.DailyRate = *o.DailyRate
	}
	if o.PercentageRate != nil {
		cfg.PercentageRate = *o.PercentageRate
	}
	if o.GraceDays != nil {
		cfg.GraceDays = *o.GraceDays
	}
	return cfg
}

// DefaultLateFeeConfig builds the global late-fee rules from configuration.
// It seeds the store settings until an edited copy has been persisted.
func DefaultLateFeeConfig(cfg *config.Config) models.LateFeeConfig {
	return models.LateFeeConfig{
		Enabled:        cfg.LateFeeEnabled,
		Mode:           cfg.LateFeeMode,
		BaseFee:        decimal.NewFromFloat(cfg.LateFeeBase),
		DailyRate:      decimal.NewFromFloat(cfg.LateFeeDailyRate),
		PercentageRate: decimal.NewFromFloat(cfg.LateFeePercentageRate),
		GraceDays:      cfg.LateFeeGraceDays,
	}
}
