package repository

import (
	"context"

	"property-crm/internal/models"

	"github.com/jmoiron/sqlx"
)

// BillingRepository reads the subscription billing tables.
type BillingRepository struct {
	db *sqlx.DB
}

func NewBillingRepository(db *sqlx.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	plans := []models.SubscriptionPlan{}
	query := "SELECT id, name, price, billing_interval, is_active, created_at FROM subscription_plans ORDER BY id"
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *BillingRepository) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	subs := []models.Subscription{}
	query := "SELECT id, user_id, plan_id, status, started_at, ends_at FROM subscriptions ORDER BY id"
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, err
	}
	return subs, nil
}
