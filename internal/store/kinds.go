package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"property-crm/internal/models"
)

type Record[T any] interface {
	*T
	Meta() *models.Base
}

// Kind describes one collection of Data. The optional hooks let a collection
// normalize incoming records and keep related collections consistent.
type Kind[T any, P Record[T]] struct {
	Name  string
	Event string
	slice func(*Data) *[]T

	// prepare runs before a record is stored; existing is nil on insert.
	prepare func(d *Data, existing, incoming P)
	// changed runs after a record is stored or removed and returns any other
	// collections it modified. before is nil on insert, after is nil on delete.
	changed func(d *Data, before, after P, now time.Time) []string
}

var (
	Properties = Kind[models.Property, *models.Property]{
		Name: collectionProperties, Event: "property",
		slice:   func(d *Data) *[]models.Property { return &d.Properties },
		prepare: prepareProperty,
		changed: propertyChanged,
	}
	Tenants = Kind[models.Tenant, *models.Tenant]{
		Name: collectionTenants, Event: "tenant",
		slice:   func(d *Data) *[]models.Tenant { return &d.Tenants },
		changed: tenantChanged,
	}
	Managers = Kind[models.PropertyManager, *models.PropertyManager]{
		Name: collectionManagers, Event: "manager",
		slice:   func(d *Data) *[]models.PropertyManager { return &d.Managers },
		changed: managerChanged,
	}
	Contacts = Kind[models.Contact, *models.Contact]{
		Name: collectionContacts, Event: "contact",
		slice: func(d *Data) *[]models.Contact { return &d.Contacts },
	}
	Deals = Kind[models.Deal, *models.Deal]{
		Name: collectionDeals, Event: "deal",
		slice: func(d *Data) *[]models.Deal { return &d.Deals },
	}
	Quotes = Kind[models.Quote, *models.Quote]{
		Name: collectionQuotes, Event: "quote",
		slice: func(d *Data) *[]models.Quote { return &d.Quotes },
	}
	Campaigns = Kind[models.Campaign, *models.Campaign]{
		Name: collectionCampaigns, Event: "campaign",
		slice: func(d *Data) *[]models.Campaign { return &d.Campaigns },
	}
	Groups = Kind[models.Group, *models.Group]{
		Name: collectionGroups, Event: "group",
		slice: func(d *Data) *[]models.Group { return &d.Groups },
	}
	WorkOrders = Kind[models.WorkOrder, *models.WorkOrder]{
		Name: collectionWorkOrders, Event: "work_order",
		slice:   func(d *Data) *[]models.WorkOrder { return &d.WorkOrders },
		prepare: prepareWorkOrder,
	}
	Notes = Kind[models.Note, *models.Note]{
		Name: collectionNotes, Event: "note",
		slice: func(d *Data) *[]models.Note { return &d.Notes },
	}
	Announcements = Kind[models.Announcement, *models.Announcement]{
		Name: collectionAnnouncements, Event: "announcement",
		slice: func(d *Data) *[]models.Announcement { return &d.Announcements },
	}
	Documents = Kind[models.Document, *models.Document]{
		Name: collectionDocuments, Event: "document",
		slice: func(d *Data) *[]models.Document { return &d.Documents },
	}
	Payments = Kind[models.Payment, *models.Payment]{
		Name: collectionPayments, Event: "payment",
		slice:   func(d *Data) *[]models.Payment { return &d.Payments },
		prepare: preparePayment,
	}
)

// All returns a copy of every record of kind k in insertion order.
func All[T any, P Record[T]](s *Store, k Kind[T, P]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(*k.slice(&s.data))
}

func Find[T any, P Record[T]](s *Store, k Kind[T, P], id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := *k.slice(&s.data)
	if idx := indexOf[T, P](items, id); idx >= 0 {
		return items[idx], nil
	}
	var zero T
	return zero, fmt.Errorf("%s %s: %w", k.Event, id, ErrNotFound)
}

// Insert stores item under a freshly generated id and returns the stored copy.
func Insert[T any, P Record[T]](ctx context.Context, s *Store, k Kind[T, P], item T) (T, error) {
	var stored T
	err := s.mutate(ctx, func(d *Data, now time.Time) ([]string, error) {
		meta := P(&item).Meta()
		meta.ID = s.newID()
		meta.CreatedAt = now
		meta.UpdatedAt = now
		if k.prepare != nil {
			k.prepare(d, nil, &item)
		}

		items := k.slice(d)
		*items = append(*items, item)
		touched := []string{k.Name}
		if k.changed != nil {
			last := P(&(*items)[len(*items)-1])
			touched = append(touched, k.changed(d, nil, last, now)...)
		}
		stored = (*items)[len(*items)-1]
		return touched, nil
	})
	if err != nil {
		return stored, err
	}
	s.emit(ctx, k.Event+".created", stored)
	return stored, nil
}

// InsertMany stores a batch in one mutation, as a bulk import does.
func InsertMany[T any, P Record[T]](ctx context.Context, s *Store, k Kind[T, P], batch []T) ([]T, error) {
	stored := make([]T, 0, len(batch))
	err := s.mutate(ctx, func(d *Data, now time.Time) ([]string, error) {
		touched := []string{k.Name}
		for _, item := range batch {
			meta := P(&item).Meta()
			meta.ID = s.newID()
			meta.CreatedAt = now
			meta.UpdatedAt = now
			if k.prepare != nil {
				k.prepare(d, nil, &item)
			}
			items := k.slice(d)
			*items = append(*items, item)
			if k.changed != nil {
				touched = append(touched, k.changed(d, nil, P(&(*items)[len(*items)-1]), now)...)
			}
			stored = append(stored, (*items)[len(*items)-1])
		}
		return touched, nil
	})
	if err != nil {
		return nil, err
	}
	for _, item := range stored {
		s.emit(ctx, k.Event+".created", item)
	}
	return stored, nil
}

// Replace overwrites the record with the given id, keeping its id and
// creation time.
func Replace[T any, P Record[T]](ctx context.Context, s *Store, k Kind[T, P], id string, item T) (T, error) {
	return Update(ctx, s, k, id, func(_ *Data, current *T) error {
		*current = item
		return nil
	})
}

// Update applies fn to a copy of the record with the given id and stores the
// result, all under one write lock. fn may read the rest of d; returning an
// error leaves the store unchanged. The id and creation time are kept.
func Update[T any, P Record[T]](ctx context.Context, s *Store, k Kind[T, P], id string, fn func(d *Data, current *T) error) (T, error) {
	var stored T
	err := s.mutate(ctx, func(d *Data, now time.Time) ([]string, error) {
		items := k.slice(d)
		idx := indexOf[T, P](*items, id)
		if idx < 0 {
			return nil, fmt.Errorf("%s %s: %w", k.Event, id, ErrNotFound)
		}
		before := (*items)[idx]
		item := before
		if err := fn(d, &item); err != nil {
			return nil, err
		}
		meta := P(&item).Meta()
		meta.ID = P(&before).Meta().ID
		meta.CreatedAt = P(&before).Meta().CreatedAt
		meta.UpdatedAt = now
		if k.prepare != nil {
			k.prepare(d, &before, &item)
		}

		(*items)[idx] = item
		touched := []string{k.Name}
		if k.changed != nil {
			touched = append(touched, k.changed(d, &before, P(&(*items)[idx]), now)...)
		}
		stored = (*items)[idx]
		return touched, nil
	})
	if err != nil {
		return stored, err
	}
	s.emit(ctx, k.Event+".updated", stored)
	return stored, nil
}

func Remove[T any, P Record[T]](ctx context.Context, s *Store, k Kind[T, P], id string) error {
	var removed T
	err := s.mutate(ctx, func(d *Data, now time.Time) ([]string, error) {
		items := k.slice(d)
		idx := indexOf[T, P](*items, id)
		if idx < 0 {
			return nil, fmt.Errorf("%s %s: %w", k.Event, id, ErrNotFound)
		}
		removed = (*items)[idx]
		*items = slices.Delete(slices.Clone(*items), idx, idx+1)
		touched := []string{k.Name}
		if k.changed != nil {
			touched = append(touched, k.changed(d, &removed, nil, now)...)
		}
		return touched, nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, k.Event+".deleted", removed)
	return nil
}

func prepareProperty(_ *Data, existing, incoming *models.Property) {
	if existing != nil {
		// Occupancy is derived from tenants and never taken from callers.
		incoming.Occupancy = existing.Occupancy
		incoming.TenantIDs = existing.TenantIDs
	} else {
		incoming.Occupancy = 0
		incoming.TenantIDs = []string{}
	}
	if incoming.Status == "" {
		incoming.Status = models.PropertyStatusUnlisted
	}
}

func prepareWorkOrder(_ *Data, _, incoming *models.WorkOrder) {
	if incoming.Status == "" {
		incoming.Status = models.WorkOrderStatusOpen
	}
	if incoming.Priority == "" {
		incoming.Priority = "Medium"
	}
}

func preparePayment(d *Data, _, incoming *models.Payment) {
	if incoming.Status == "" {
		incoming.Status = models.PaymentStatusPending
	}
	if incoming.PropertyID == "" {
		if idx := indexOf(d.Tenants, incoming.TenantID); idx >= 0 {
			incoming.PropertyID = d.Tenants[idx].PropertyID
		}
	}
}
