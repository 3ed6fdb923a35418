// Package store holds the CRM's in-memory aggregate. Every mutation goes
// through a single locked update that stamps timestamps, applies the derived
// cross-entity rules, persists a snapshot and emits a domain event.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"property-crm/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("record not found")

// Data is the full set of collections the CRM keeps.
type Data struct {
	Properties    []models.Property        `json:"properties"`
	Tenants       []models.Tenant          `json:"tenants"`
	Managers      []models.PropertyManager `json:"managers"`
	Contacts      []models.Contact         `json:"contacts"`
	Deals         []models.Deal            `json:"deals"`
	Quotes        []models.Quote           `json:"quotes"`
	Campaigns     []models.Campaign        `json:"campaigns"`
	Groups        []models.Group           `json:"groups"`
	WorkOrders    []models.WorkOrder       `json:"work_orders"`
	Notes         []models.Note            `json:"notes"`
	Announcements []models.Announcement    `json:"announcements"`
	Documents     []models.Document        `json:"documents"`
	Payments      []models.Payment         `json:"payments"`
	Settings      models.Settings          `json:"settings"`
}

// Property looks up a property by id, for use inside Update.
func (d *Data) Property(id string) (models.Property, bool) {
	if idx := indexOf(d.Properties, id); idx >= 0 {
		return d.Properties[idx], true
	}
	return models.Property{}, false
}

// EventSink receives domain events after a mutation has been applied.
type EventSink interface {
	Emit(ctx context.Context, event string, payload any)
}

type Store struct {
	mu     sync.RWMutex
	saveMu sync.Mutex
	data   Data

	snapshots SnapshotStore
	prefix    string
	events    EventSink
	now       func() time.Time
	newID     func() string
	logger    *logrus.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithEventSink(sink EventSink) Option {
	return func(s *Store) { s.events = sink }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithKeyPrefix namespaces snapshot keys, e.g. "crm:properties".
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithSettings sets the settings used until a persisted copy is loaded.
func WithSettings(settings models.Settings) Option {
	return func(s *Store) { s.data.Settings = settings }
}

func New(snapshots SnapshotStore, opts ...Option) *Store {
	s := &Store{
		snapshots: snapshots,
		prefix:    "crm",
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.snapshots == nil {
		s.snapshots = NewMemorySnapshotStore()
	}
	return s
}

// View runs fn with a read lock held. fn must not retain or modify d.
func (s *Store) View(fn func(d *Data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

// Settings returns the current settings.
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings
}

func (s *Store) UpdateSettings(ctx context.Context, settings models.Settings) error {
	err := s.mutate(ctx, func(d *Data, _ time.Time) ([]string, error) {
		d.Settings = settings
		return []string{collectionSettings}, nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, "settings.updated", settings)
	return nil
}

// Initialize replaces every collection at once.
func (s *Store) Initialize(ctx context.Context, data Data) error {
	err := s.mutate(ctx, func(d *Data, _ time.Time) ([]string, error) {
		*d = data
		return collectionNames(), nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, "data.initialized", nil)
	return nil
}

// MoveOutTenant marks a tenant as a past tenant, detaches it from its
// property and releases the occupied unit. The tenant record is kept.
func (s *Store) MoveOutTenant(ctx context.Context, id string, req models.MoveOutRequest) (models.Tenant, error) {
	var moved models.Tenant
	err := s.mutate(ctx, func(d *Data, now time.Time) ([]string, error) {
		idx := indexOf(d.Tenants, id)
		if idx < 0 {
			return nil, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
		}
		before := d.Tenants[idx]
		t := &d.Tenants[idx]

		moveOut := req.MoveOutDate.UTC()
		t.Status = models.TenantStatusPastTenant
		t.MoveOutDate = &moveOut
		t.MoveOutReason = req.Reason
		t.ForwardingAddress = req.ForwardingAddress
		if t.PropertyID != "" {
			t.PreviousPropertyID = t.PropertyID
		}
		t.PropertyID = ""
		t.UpdatedAt = now

		touched := []string{collectionTenants}
		touched = append(touched, tenantChanged(d, &before, t, now)...)
		moved = *t
		return touched, nil
	})
	if err != nil {
		return models.Tenant{}, err
	}
	s.emit(ctx, "tenant.moved_out", moved)
	return moved, nil
}

// mutate applies fn under the write lock and persists the collections it
// reports as touched. Snapshots are written in mutation order.
func (s *Store) mutate(ctx context.Context, fn func(d *Data, now time.Time) ([]string, error)) error {
	s.mu.Lock()
	touched, err := fn(&s.data, s.now())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	snaps, encErr := s.encode(&s.data, touched)
	s.saveMu.Lock()
	s.mu.Unlock()
	defer s.saveMu.Unlock()

	if encErr != nil {
		s.logger.WithError(encErr).Error("Failed to encode store snapshot")
		return nil
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.snapshots.SaveSnapshots(saveCtx, snaps); err != nil {
		s.logger.WithError(err).WithField("collections", touched).Warn("Failed to persist store snapshot")
	}
	return nil
}

func (s *Store) emit(ctx context.Context, event string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, event, payload)
}

func indexOf[T any, P Record[T]](items []T, id string) int {
	for i := range items {
		if P(&items[i]).Meta().ID == id {
			return i
		}
	}
	return -1
}
