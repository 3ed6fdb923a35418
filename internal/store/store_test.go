package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"property-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	name    string
	payload any
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) Emit(_ context.Context, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: event, payload: payload})
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.name
	}
	return out
}

var testNow = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*Store, *MemorySnapshotStore) {
	t.Helper()
	snaps := NewMemorySnapshotStore()
	seq := 0
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	}, opts...)
	return New(snaps, opts...), snaps
}

func addProperty(t *testing.T, s *Store, name string) models.Property {
	t.Helper()
	p, err := Insert(context.Background(), s, Properties, models.Property{
		Name:    name,
		Address: "123 X",
		Type:    models.PropertyTypeApartment,
	})
	require.NoError(t, err)
	return p
}

func TestInsertActiveTenantOccupiesProperty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addProperty(t, s, "A")
	assert.Equal(t, 0, p.Occupancy)
	assert.Equal(t, models.PropertyStatusUnlisted, p.Status)

	tenant, err := Insert(ctx, s, Tenants, models.Tenant{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		PropertyID: p.ID,
		Status:     models.TenantStatusActive,
	})
	require.NoError(t, err)

	got, err := Find(s, Properties, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Occupancy)
	assert.Equal(t, models.PropertyStatusOccupied, got.Status)
	assert.Equal(t, []string{tenant.ID}, got.TenantIDs)
	assert.Equal(t, testNow, tenant.CreatedAt)
	assert.Equal(t, testNow, tenant.UpdatedAt)
}

func TestPendingTenantDoesNotOccupy(t *testing.T) {
	s, _ := newTestStore(t)
	p := addProperty(t, s, "A")

	_, err := Insert(context.Background(), s, Tenants, models.Tenant{
		Name: "Pending", Email: "p@example.com", PropertyID: p.ID, Status: models.TenantStatusPending,
	})
	require.NoError(t, err)

	got, err := Find(s, Properties, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Occupancy)
	assert.Empty(t, got.TenantIDs)
}

func TestTenantStatusTransitions(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addProperty(t, s, "A")

	first, err := Insert(ctx, s, Tenants, models.Tenant{Name: "One", Email: "one@example.com", PropertyID: p.ID, Status: models.TenantStatusActive})
	require.NoError(t, err)
	second, err := Insert(ctx, s, Tenants, models.Tenant{Name: "Two", Email: "two@example.com", PropertyID: p.ID, Status: models.TenantStatusPending})
	require.NoError(t, err)

	second.Status = models.TenantStatusActive
	_, err = Replace(ctx, s, Tenants, second.ID, second)
	require.NoError(t, err)

	got, _ := Find(s, Properties, p.ID)
	assert.Equal(t, 2, got.Occupancy)
	assert.Equal(t, []string{first.ID, second.ID}, got.TenantIDs)

	first.Status = models.TenantStatusInactive
	_, err = Replace(ctx, s, Tenants, first.ID, first)
	require.NoError(t, err)

	got, _ = Find(s, Properties, p.ID)
	assert.Equal(t, 1, got.Occupancy)
	assert.Equal(t, models.PropertyStatusOccupied, got.Status)

	second.Status = models.TenantStatusInactive
	_, err = Replace(ctx, s, Tenants, second.ID, second)
	require.NoError(t, err)

	got, _ = Find(s, Properties, p.ID)
	assert.Equal(t, 0, got.Occupancy)
	assert.Empty(t, got.TenantIDs)
	assert.Equal(t, models.PropertyStatusUnlisted, got.Status)
}

func TestUnchangedActiveTenantKeepsOccupancy(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addProperty(t, s, "A")

	tenant, err := Insert(ctx, s, Tenants, models.Tenant{Name: "One", Email: "one@example.com", PropertyID: p.ID, Status: models.TenantStatusActive})
	require.NoError(t, err)

	tenant.Phone = "555-0000"
	_, err = Replace(ctx, s, Tenants, tenant.ID, tenant)
	require.NoError(t, err)

	got, _ := Find(s, Properties, p.ID)
	assert.Equal(t, 1, got.Occupancy)
}

func TestTenantPropertyChangeMovesOccupancy(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := addProperty(t, s, "A")
	b := addProperty(t, s, "B")

	tenant, err := Insert(ctx, s, Tenants, models.Tenant{Name: "Mover", Email: "m@example.com", PropertyID: a.ID, Status: models.TenantStatusActive})
	require.NoError(t, err)

	tenant.PropertyID = b.ID
	_, err = Replace(ctx, s, Tenants, tenant.ID, tenant)
	require.NoError(t, err)

	gotA, _ := Find(s, Properties, a.ID)
	gotB, _ := Find(s, Properties, b.ID)
	assert.Equal(t, 0, gotA.Occupancy)
	assert.Equal(t, models.PropertyStatusUnlisted, gotA.Status)
	assert.Equal(t, 1, gotB.Occupancy)
	assert.Equal(t, []string{tenant.ID}, gotB.TenantIDs)
}

func TestMoveOutLastTenantResetsProperty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addProperty(t, s, "A")

	tenant, err := Insert(ctx, s, Tenants, models.Tenant{Name: "Leaving", Email: "l@example.com", PropertyID: p.ID, Status: models.TenantStatusActive})
	require.NoError(t, err)

	moveOut := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	moved, err := s.MoveOutTenant(ctx, tenant.ID, models.MoveOutRequest{
		MoveOutDate:       moveOut,
		Reason:            "Relocating",
		ForwardingAddress: "9 New St",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TenantStatusPastTenant, moved.Status)
	assert.Empty(t, moved.PropertyID)
	assert.Equal(t, p.ID, moved.PreviousPropertyID)
	require.NotNil(t, moved.MoveOutDate)
	assert.Equal(t, moveOut, *moved.MoveOutDate)
	assert.Equal(t, "Relocating", moved.MoveOutReason)

	got, _ := Find(s, Properties, p.ID)
	assert.Equal(t, 0, got.Occupancy)
	assert.Equal(t, models.PropertyStatusUnlisted, got.Status)
	assert.Empty(t, got.TenantIDs)

	stillThere, err := Find(s, Tenants, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusPastTenant, stillThere.Status)
}

func TestMoveOutUnknownTenant(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.MoveOutTenant(context.Background(), "missing", models.MoveOutRequest{MoveOutDate: testNow})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveTenantReleasesUnitAndMirror(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addProperty(t, s, "A")

	tenant, err := Insert(ctx, s, Tenants, models.Tenant{Name: "Gone", Email: "g@example.com", PropertyID: p.ID, Status: models.TenantStatusActive})
	require.NoError(t, err)
	require.Len(t, All(s, Contacts), 1)

	require.NoError(t, Remove(ctx, s, Tenants, tenant.ID))

	got, _ := Find(s, Properties, p.ID)
	assert.Equal(t, 0, got.Occupancy)
	assert.Empty(t, All(s, Contacts))
	assert.ErrorIs(t, Remove(ctx, s, Tenants, tenant.ID), ErrNotFound)
}

func TestMirroredContacts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tenant, err := Insert(ctx, s, Tenants, models.Tenant{Name: "Jane", Email: "jane@example.com", Phone: "1"})
	require.NoError(t, err)
	manager, err := Insert(ctx, s, Managers, models.PropertyManager{Name: "Max", Email: "max@example.com", Company: "Acme"})
	require.NoError(t, err)

	contacts := All(s, Contacts)
	require.Len(t, contacts, 2)
	assert.Equal(t, tenant.ID, contacts[0].RelatedEntityID)
	assert.Equal(t, models.ContactTypeTenant, contacts[0].Type)
	assert.Equal(t, manager.ID, contacts[1].RelatedEntityID)
	assert.Equal(t, models.ContactTypeManager, contacts[1].Type)
	assert.Equal(t, "Acme", contacts[1].Company)

	tenant.Email = "jane.doe@example.com"
	_, err = Replace(ctx, s, Tenants, tenant.ID, tenant)
	require.NoError(t, err)

	contacts = All(s, Contacts)
	require.Len(t, contacts, 2)
	assert.Equal(t, "jane.doe@example.com", contacts[0].Email)
}

func TestReplacePropertyKeepsDerivedFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addProperty(t, s, "A")

	tenant, err := Insert(ctx, s, Tenants, models.Tenant{Name: "One", Email: "one@example.com", PropertyID: p.ID, Status: models.TenantStatusActive})
	require.NoError(t, err)

	edit := p
	edit.Name = "A renamed"
	edit.Occupancy = 42
	edit.TenantIDs = nil
	updated, err := Replace(ctx, s, Properties, p.ID, edit)
	require.NoError(t, err)

	assert.Equal(t, "A renamed", updated.Name)
	assert.Equal(t, 1, updated.Occupancy)
	assert.Equal(t, []string{tenant.ID}, updated.TenantIDs)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	rec := &eventRecorder{}
	s, snaps := newTestStore(t, WithEventSink(rec))
	ctx := context.Background()
	p := addProperty(t, s, "A")
	saves := snaps.Saves()

	_, err := Update(ctx, s, Properties, p.ID, func(_ *Data, current *models.Property) error {
		current.Name = "half done"
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := Find(s, Properties, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, saves, snaps.Saves())

	updated, err := Update(ctx, s, Properties, p.ID, func(d *Data, current *models.Property) error {
		_, ok := d.Property(p.ID)
		require.True(t, ok)
		current.Name = "B"
		current.ID = "someone-else"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, []string{"property.created", "property.updated"}, rec.names())

	_, err = Update(ctx, s, Properties, "missing", func(*Data, *models.Property) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyManagerLink(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	manager, err := Insert(ctx, s, Managers, models.PropertyManager{Name: "Max", Email: "max@example.com"})
	require.NoError(t, err)
	p, err := Insert(ctx, s, Properties, models.Property{Name: "A", Address: "1 St", Type: models.PropertyTypeCondo, ManagerID: manager.ID})
	require.NoError(t, err)

	got, _ := Find(s, Managers, manager.ID)
	assert.Equal(t, []string{p.ID}, got.PropertyIDs)

	require.NoError(t, Remove(ctx, s, Properties, p.ID))
	got, _ = Find(s, Managers, manager.ID)
	assert.Empty(t, got.PropertyIDs)
}

func TestEventsEmitted(t *testing.T) {
	rec := &eventRecorder{}
	s, _ := newTestStore(t, WithEventSink(rec))
	ctx := context.Background()

	p := addProperty(t, s, "A")
	tenant, err := Insert(ctx, s, Tenants, models.Tenant{Name: "One", Email: "one@example.com", PropertyID: p.ID, Status: models.TenantStatusActive})
	require.NoError(t, err)
	_, err = s.MoveOutTenant(ctx, tenant.ID, models.MoveOutRequest{MoveOutDate: testNow})
	require.NoError(t, err)

	assert.Equal(t, []string{"property.created", "tenant.created", "tenant.moved_out"}, rec.names())
}

func TestMutationsPersistTouchedCollections(t *testing.T) {
	s, snaps := newTestStore(t)
	ctx := context.Background()
	p := addProperty(t, s, "A")

	_, err := Insert(ctx, s, Tenants, models.Tenant{Name: "One", Email: "one@example.com", PropertyID: p.ID, Status: models.TenantStatusActive})
	require.NoError(t, err)
	assert.Equal(t, 2, snaps.Saves())

	raw, ok, err := snaps.LoadSnapshot(ctx, "crm:properties")
	require.NoError(t, err)
	require.True(t, ok)

	var stored []models.Property
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, 1, stored[0].Occupancy)

	_, ok, _ = snaps.LoadSnapshot(ctx, "crm:contacts")
	assert.True(t, ok)
	_, ok, _ = snaps.LoadSnapshot(ctx, "crm:deals")
	assert.False(t, ok)
}

func TestLoadPrefersSnapshotsOverFixtures(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	require.NoError(t, snaps.SaveSnapshots(ctx, map[string][]byte{
		"crm:properties": []byte(`[{"id":"p-1","name":"Stored","address":"1 St","type":"House","tenant_ids":[]}]`),
	}))

	s := New(snaps)
	require.NoError(t, s.Load(ctx, Fixtures(testNow)))

	props := All(s, Properties)
	require.Len(t, props, 1)
	assert.Equal(t, "Stored", props[0].Name)

	// Collections without a snapshot are seeded.
	assert.Len(t, All(s, Tenants), 2)
	assert.NotEmpty(t, All(s, Managers))
}

func TestLoadWithoutSeedLeavesEmpty(t *testing.T) {
	s := New(NewMemorySnapshotStore(), WithSettings(models.Settings{LateFee: models.LateFeeConfig{Mode: models.LateFeeModeFlat, GraceDays: 5}}))
	require.NoError(t, s.Load(context.Background(), nil))

	assert.Empty(t, All(s, Properties))
	assert.Equal(t, 5, s.Settings().LateFee.GraceDays)
}

func TestFixturesAreConsistent(t *testing.T) {
	data := Fixtures(testNow)
	for _, p := range data.Properties {
		active := 0
		for _, tenant := range data.Tenants {
			if tenant.IsActive() && tenant.PropertyID == p.ID {
				active++
				assert.Contains(t, p.TenantIDs, tenant.ID)
			}
		}
		assert.Equal(t, active, p.Occupancy, p.Name)
	}
}

func TestAutoSaveFlushesOnCancel(t *testing.T) {
	s, snaps := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.AutoSave(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AutoSave did not return after cancel")
	}
	assert.Equal(t, 1, snaps.Saves())

	_, ok, _ := snaps.LoadSnapshot(context.Background(), "crm:settings")
	assert.True(t, ok)
}

func TestAutoSaveTicks(t *testing.T) {
	s, snaps := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.AutoSave(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return snaps.Saves() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestInitializeReplacesEverything(t *testing.T) {
	s, snaps := newTestStore(t)
	ctx := context.Background()
	addProperty(t, s, "old")

	require.NoError(t, s.Initialize(ctx, *Fixtures(testNow)))
	assert.Len(t, All(s, Properties), 2)

	_, ok, _ := snaps.LoadSnapshot(ctx, "crm:announcements")
	assert.True(t, ok)
}

func TestInsertManyBatch(t *testing.T) {
	s, snaps := newTestStore(t)
	ctx := context.Background()
	p := addProperty(t, s, "A")
	before := snaps.Saves()

	stored, err := InsertMany(ctx, s, Tenants, []models.Tenant{
		{Name: "One", Email: "one@example.com", PropertyID: p.ID, Status: models.TenantStatusActive},
		{Name: "Two", Email: "two@example.com", PropertyID: p.ID, Status: models.TenantStatusActive},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.NotEqual(t, stored[0].ID, stored[1].ID)
	assert.Equal(t, before+1, snaps.Saves())

	got, _ := Find(s, Properties, p.ID)
	assert.Equal(t, 2, got.Occupancy)
}
