package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WebhookSubscription registers a URL for one event. SubscriberID "*" matches
// every subscriber.
type WebhookSubscription struct {
	ID           int       `db:"id" json:"id"`
	SubscriberID string    `db:"subscriber_id" json:"subscriber_id" validate:"required"`
	Event        string    `db:"event" json:"event" validate:"required"`
	URL          string    `db:"url" json:"url" validate:"required,url"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// WebhookMessage is the JSON body POSTed to subscribers.
type WebhookMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type SubscriptionPlan struct {
	ID        int             `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Interval  string          `db:"billing_interval" json:"interval"` // month, year
	IsActive  bool            `db:"is_active" json:"is_active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type Subscription struct {
	ID        int        `db:"id" json:"id"`
	UserID    int        `db:"user_id" json:"user_id"`
	PlanID    int        `db:"plan_id" json:"plan_id"`
	Status    string     `db:"status" json:"status"` // active, cancelled, past_due
	StartedAt time.Time  `db:"started_at" json:"started_at"`
	EndsAt    *time.Time `db:"ends_at" json:"ends_at,omitempty"`
}
