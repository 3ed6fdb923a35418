package service

import (
	"testing"
	"time"

	"property-crm/internal/config"
	"property-crm/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateLateFee(t *testing.T) {
	flat := models.LateFeeConfig{
		Enabled:   true,
		Mode:      models.LateFeeModeFlat,
		BaseFee:   dec("10"),
		DailyRate: dec("2"),
		GraceDays: 5,
	}
	percent := flat
	percent.Mode = models.LateFeeModePercent
	percent.PercentageRate = dec("0.05")

	tests := []struct {
		name string
		due  string
		paid string
		cfg  models.LateFeeConfig
		want string
	}{
		{"paid on due date", "2024-01-01", "2024-01-01", flat, "0"},
		{"paid early", "2024-01-10", "2024-01-01", flat, "0"},
		{"within grace period", "2024-01-01", "2024-01-06", flat, "0"},
		{"flat ten days late", "2024-01-01", "2024-01-11", flat, "20"},
		{"percent ten days late", "2024-01-01", "2024-01-11", percent, "60"},
		{"percent ignores day count", "2024-01-01", "2024-03-01", percent, "60"},
		{"no grace period", "2024-01-01", "2024-01-02", models.LateFeeConfig{Mode: "flat", BaseFee: dec("25"), DailyRate: dec("1")}, "26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateLateFee(dec("1000"), day(tt.due), day(tt.paid), tt.cfg)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestCalculateLateFeeCountsWholeDays(t *testing.T) {
	cfg := models.LateFeeConfig{Mode: models.LateFeeModeFlat, BaseFee: dec("10"), DailyRate: dec("2"), GraceDays: 1}
	due := day("2024-01-01")

	// 1 day 23 hours late is one whole day, which the grace period absorbs
	got := CalculateLateFee(dec("1000"), due, due.Add(47*time.Hour), cfg)
	assert.True(t, got.IsZero())

	got = CalculateLateFee(dec("1000"), due, due.Add(48*time.Hour), cfg)
	assert.True(t, dec("12").Equal(got))
}

func TestEffectiveLateFeeConfig(t *testing.T) {
	global := models.LateFeeConfig{
		Enabled:   true,
		Mode:      models.LateFeeModeFlat,
		BaseFee:   dec("50"),
		DailyRate: dec("5"),
		GraceDays: 5,
	}
	grace := 2
	mode := models.LateFeeModePercent

	prop := &models.Property{
		LateFeeOverride: true,
		LateFeeSettings: &models.LateFeeSettings{GraceDays: &grace, Mode: &mode},
	}
	got := EffectiveLateFeeConfig(global, prop)
	assert.Equal(t, 2, got.GraceDays)
	assert.Equal(t, models.LateFeeModePercent, got.Mode)
	assert.True(t, dec("50").Equal(got.BaseFee))
	assert.True(t, got.Enabled)

	prop.LateFeeOverride = false
	assert.Equal(t, global, EffectiveLateFeeConfig(global, prop))
	assert.Equal(t, global, EffectiveLateFeeConfig(global, nil))
}

func TestDefaultLateFeeConfig(t *testing.T) {
	cfg := &config.Config{
		LateFeeEnabled:        true,
		LateFeeMode:           "percent",
		LateFeeBase:           10,
		LateFeeDailyRate:      2,
		LateFeePercentageRate: 0.05,
		LateFeeGraceDays:      3,
	}
	got := DefaultLateFeeConfig(cfg)
	assert.Equal(t, models.LateFeeModePercent, got.Mode)
	assert.True(t, dec("0.05").Equal(got.PercentageRate))
	assert.Equal(t, 3, got.GraceDays)
}
