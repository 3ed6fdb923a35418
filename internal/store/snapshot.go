package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	collectionProperties    = "properties"
	collectionTenants       = "tenants"
	collectionManagers      = "managers"
	collectionContacts      = "contacts"
	collectionDeals         = "deals"
	collectionQuotes        = "quotes"
	collectionCampaigns     = "campaigns"
	collectionGroups        = "groups"
	collectionWorkOrders    = "work_orders"
	collectionNotes         = "notes"
	collectionAnnouncements = "announcements"
	collectionDocuments     = "documents"
	collectionPayments      = "payments"
	collectionSettings      = "settings"
)

// collections maps each snapshot key to the Data field it serializes.
var collections = []struct {
	name  string
	field func(d *Data) any
}{
	{collectionProperties, func(d *Data) any { return &d.Properties }},
	{collectionTenants, func(d *Data) any { return &d.Tenants }},
	{collectionManagers, func(d *Data) any { return &d.Managers }},
	{collectionContacts, func(d *Data) any { return &d.Contacts }},
	{collectionDeals, func(d *Data) any { return &d.Deals }},
	{collectionQuotes, func(d *Data) any { return &d.Quotes }},
	{collectionCampaigns, func(d *Data) any { return &d.Campaigns }},
	{collectionGroups, func(d *Data) any { return &d.Groups }},
	{collectionWorkOrders, func(d *Data) any { return &d.WorkOrders }},
	{collectionNotes, func(d *Data) any { return &d.Notes }},
	{collectionAnnouncements, func(d *Data) any { return &d.Announcements }},
	{collectionDocuments, func(d *Data) any { return &d.Documents }},
	{collectionPayments, func(d *Data) any { return &d.Payments }},
	{collectionSettings, func(d *Data) any { return &d.Settings }},
}

func collectionNames() []string {
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = c.name
	}
	return names
}

// SnapshotStore is a key-value store holding one JSON document per collection.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, key string) ([]byte, bool, error)
	SaveSnapshots(ctx context.Context, snapshots map[string][]byte) error
}

type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func (r *RedisSnapshotStore) LoadSnapshot(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisSnapshotStore) SaveSnapshots(ctx context.Context, snapshots map[string][]byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, b := range snapshots {
			pipe.Set(ctx, key, b, 0)
		}
		return nil
	})
	return err
}

// MemorySnapshotStore keeps snapshots in process memory. It is used when
// Redis is unavailable and in tests.
type MemorySnapshotStore struct {
	mu    sync.Mutex
	items map[string][]byte
	saves int
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{items: map[string][]byte{}}
}

func (m *MemorySnapshotStore) LoadSnapshot(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[key]
	return b, ok, nil
}

func (m *MemorySnapshotStore) SaveSnapshots(_ context.Context, snapshots map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range snapshots {
		m.items[key] = b
	}
	m.saves++
	return nil
}

// Saves reports how many SaveSnapshots calls have been made.
func (m *MemorySnapshotStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (s *Store) key(name string) string {
	return fmt.Sprintf("%s:%s", s.prefix, name)
}

func (s *Store) encode(d *Data, names []string) (map[string][]byte, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := make(map[string][]byte, len(wanted))
	for _, c := range collections {
		if !wanted[c.name] {
			continue
		}
		b, err := json.Marshal(c.field(d))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.name, err)
		}
		out[s.key(c.name)] = b
	}
	return out, nil
}

// Load reads every collection from the snapshot store. Collections with no
// stored snapshot are taken from seed when it is non-nil, otherwise left
// empty. Settings keep their configured defaults unless a snapshot exists.
func (s *Store) Load(ctx context.Context, seed *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var seeded []string
	for _, c := range collections {
		b, ok, err := s.snapshots.LoadSnapshot(ctx, s.key(c.name))
		if err != nil {
			return fmt.Errorf("load %s: %w", c.name, err)
		}
		if ok {
			if err := json.Unmarshal(b, c.field(&s.data)); err != nil {
				return fmt.Errorf("decode %s: %w", c.name, err)
			}
			continue
		}
		if seed == nil || c.name == collectionSettings {
			continue
		}
		raw, err := json.Marshal(c.field(seed))
		if err != nil {
			return fmt.Errorf("seed %s: %w", c.name, err)
		}
		if err := json.Unmarshal(raw, c.field(&s.data)); err != nil {
			return fmt.Errorf("seed %s: %w", c.name, err)
		}
		seeded = append(seeded, c.name)
	}

	if len(seeded) > 0 {
		s.logger.WithField("collections", seeded).Info("Seeded store with fixture data")
	}
	return nil
}

// Flush writes every collection to the snapshot store.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	snaps, err := s.encode(&s.data, collectionNames())
	s.saveMu.Lock()
	s.mu.RUnlock()
	defer s.saveMu.Unlock()
	if err != nil {
		return err
	}
	return s.snapshots.SaveSnapshots(ctx, snaps)
}

// AutoSave flushes the store every interval until ctx is cancelled, then
// flushes once more before returning.
func (s *Store) AutoSave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			if err := s.Flush(finalCtx); err != nil {
				s.logger.WithError(err).Warn("Final store flush failed")
			}
			cancel()
			return
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.logger.WithError(err).Warn("Periodic store flush failed")
			}
		}
	}
}
