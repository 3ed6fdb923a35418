package repository

import (
	"context"
	"database/sql"
	"errors"

	"property-crm/internal/models"

	"github.com/jmoiron/sqlx"
)

var ErrSubscriptionNotFound = errors.New("webhook subscription not found")

const webhookColumns = "id, subscriber_id, event, url, is_active, created_at, updated_at"

type WebhookRepository struct {
	db *sqlx.DB
}

func NewWebhookRepository(db *sqlx.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// ActiveSubscriptions implements service.SubscriptionSource.
func (r *WebhookRepository) ActiveSubscriptions(ctx context.Context, event string) ([]models.WebhookSubscription, error) {
	var subs []models.WebhookSubscription
	query := "SELECT " + webhookColumns + " FROM webhook_subscriptions WHERE event = ? AND is_active = TRUE"
	if err := r.db.SelectContext(ctx, &subs, query, event); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *WebhookRepository) List(ctx context.Context, subscriberID string) ([]models.WebhookSubscription, error) {
	subs := []models.WebhookSubscription{}
	query := "SELECT " + webhookColumns + " FROM webhook_subscriptions"
	args := []interface{}{}
	if subscriberID != "" {
		query += " WHERE subscriber_id = ?"
		args = append(args, subscriberID)
	}
	query += " ORDER BY id"
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *WebhookRepository) FindByID(ctx context.Context, id int) (*models.WebhookSubscription, error) {
	var sub models.WebhookSubscription
	query := "SELECT " + webhookColumns + " FROM webhook_subscriptions WHERE id = ? LIMIT 1"
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *WebhookRepository) Create(ctx context.Context, sub *models.WebhookSubscription) error {
	query := `INSERT INTO webhook_subscriptions (subscriber_id, event, url, is_active)
	          VALUES (:subscriber_id, :event, :url, :is_active)`
	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	sub.ID = int(id)
	return nil
}

func (r *WebhookRepository) Update(ctx context.Context, sub *models.WebhookSubscription) error {
	query := `UPDATE webhook_subscriptions SET subscriber_id = :subscriber_id, event = :event,
	          url = :url, is_active = :is_active WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrSubscriptionNotFound)
}

func (r *WebhookRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM webhook_subscriptions WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrSubscriptionNotFound)
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
