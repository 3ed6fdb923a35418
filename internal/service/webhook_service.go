package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"property-crm/internal/models"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	TypeWebhookDeliver = "webhook:deliver"
	WebhookQueue       = "webhooks"

	// WildcardSubscriber matches events from every subscriber.
	WildcardSubscriber = "*"
)

// SubscriptionSource looks up the active webhook subscriptions for an event.
type SubscriptionSource interface {
	ActiveSubscriptions(ctx context.Context, event string) ([]models.WebhookSubscription, error)
}

// TaskEnqueuer is the part of *asynq.Client the dispatcher uses.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// WebhookDelivery is the payload of a webhook:deliver task.
type WebhookDelivery struct {
	SubscriptionID int             `json:"subscription_id"`
	URL            string          `json:"url"`
	Body           json.RawMessage `json:"body"`
}

func NewWebhookDeliverTask(d WebhookDelivery) (*asynq.Task, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWebhookDeliver, payload), nil
}

type subscriberKey struct{}

// WithSubscriber tags ctx with the acting subscriber, used to match webhook
// subscriptions for events emitted under ctx.
func WithSubscriber(ctx context.Context, subscriberID string) context.Context {
	return context.WithValue(ctx, subscriberKey{}, subscriberID)
}

func SubscriberFromContext(ctx context.Context) string {
	id, _ := ctx.Value(subscriberKey{}).(string)
	return id
}

// MatchSubscriptions keeps the active subscriptions for event that belong to
// subscriberID or to the wildcard subscriber.
func MatchSubscriptions(subs []models.WebhookSubscription, event, subscriberID string) []models.WebhookSubscription {
	var out []models.WebhookSubscription
	for _, s := range subs {
		if !s.IsActive || s.Event != event {
			continue
		}
		if s.SubscriberID == WildcardSubscriber || s.SubscriberID == subscriberID {
			out = append(out, s)
		}
	}
	return out
}

// WebhookDispatcher delivers domain events to subscribed URLs. Delivery is
// fire-and-forget: Emit never blocks on the network and failures are only
// logged.
type WebhookDispatcher struct {
	subs    SubscriptionSource
	queue   TaskEnqueuer
	client  *http.Client
	timeout time.Duration
	logger  *logrus.Logger

	wg sync.WaitGroup
}

type WebhookOption func(*WebhookDispatcher)

// WithTaskQueue routes deliveries through asynq instead of in-process
// goroutines.
func WithTaskQueue(q TaskEnqueuer) WebhookOption {
	return func(d *WebhookDispatcher) { d.queue = q }
}

func WithHTTPClient(c *http.Client) WebhookOption {
	return func(d *WebhookDispatcher) { d.client = c }
}

func WithWebhookLogger(l *logrus.Logger) WebhookOption {
	return func(d *WebhookDispatcher) { d.logger = l }
}

func NewWebhookDispatcher(subs SubscriptionSource, timeout time.Duration, opts ...WebhookOption) *WebhookDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &WebhookDispatcher{
		subs:    subs,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Emit implements store.EventSink.
func (d *WebhookDispatcher) Emit(ctx context.Context, event string, payload any) {
	if d == nil || d.subs == nil {
		return
	}
	subscriber := SubscriberFromContext(ctx)
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.dispatch(detached, event, subscriber, payload)
	}()
}

func (d *WebhookDispatcher) dispatch(ctx context.Context, event, subscriber string, payload any) {
	log := d.logger.WithFields(logrus.Fields{"event": event, "subscriber": subscriber})

	lookupCtx, cancel := context.WithTimeout(ctx, d.timeout)
	subs, err := d.subs.ActiveSubscriptions(lookupCtx, event)
	cancel()
	if err != nil {
		log.WithError(err).Warn("Failed to load webhook subscriptions")
		return
	}

	matched := MatchSubscriptions(subs, event, subscriber)
	if len(matched) == 0 {
		return
	}

	body, err := json.Marshal(models.WebhookMessage{Event: event, Payload: payload})
	if err != nil {
		log.WithError(err).Error("Failed to encode webhook message")
		return
	}

	for _, sub := range matched {
		delivery := WebhookDelivery{SubscriptionID: sub.ID, URL: sub.URL, Body: body}
		if d.queue != nil {
			if err := d.enqueue(ctx, delivery); err != nil {
				log.WithError(err).WithField("url", sub.URL).Warn("Failed to enqueue webhook delivery")
			}
			continue
		}
		if err := d.Deliver(ctx, delivery); err != nil {
			log.WithError(err).WithField("url", sub.URL).Warn("Webhook delivery failed")
		}
	}
}

func (d *WebhookDispatcher) enqueue(ctx context.Context, delivery WebhookDelivery) error {
	task, err := NewWebhookDeliverTask(delivery)
	if err != nil {
		return err
	}
	_, err = d.queue.EnqueueContext(ctx, task, asynq.MaxRetry(0), asynq.Timeout(d.timeout), asynq.Queue(WebhookQueue))
	return err
}

// Deliver POSTs one webhook body and reports non-2xx responses as errors.
func (d *WebhookDispatcher) Deliver(ctx context.Context, delivery WebhookDelivery) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, delivery.URL, bytes.NewReader(delivery.Body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s responded with status %d", delivery.URL, resp.StatusCode)
	}
	d.logger.WithFields(logrus.Fields{"url": delivery.URL, "status": resp.StatusCode}).Debug("Webhook delivered")
	return nil
}

// Wait blocks until every in-flight Emit has finished.
func (d *WebhookDispatcher) Wait() {
	d.wg.Wait()
}

// Close waits for in-flight deliveries and then closes the task queue when
// it holds a connection, as *asynq.Client does.
func (d *WebhookDispatcher) Close() error {
	d.Wait()
	if c, ok := d.queue.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
