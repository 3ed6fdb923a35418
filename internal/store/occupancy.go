package store

import (
	"slices"
	"time"

	"property-crm/internal/models"
)

// applyOccupancy keeps a property's occupancy, tenant ids and status in step
// with one tenant transition. It is the only place occupancy changes.
//
// A tenant counts toward a property while it is Active and attached to it.
// Leaving (deactivation, move-out, property change or deletion) releases the
// unit; when the last unit is released the property becomes Unlisted.
func applyOccupancy(d *Data, before, after *models.Tenant, now time.Time) []string {
	wasActive := before.IsActive()
	isActive := after.IsActive()
	if wasActive && isActive && before.PropertyID == after.PropertyID {
		return nil
	}

	touched := false
	if wasActive {
		if idx := indexOf(d.Properties, before.PropertyID); idx >= 0 {
			touched = releaseUnit(&d.Properties[idx], before.ID, now) || touched
		}
	}
	if isActive {
		if idx := indexOf(d.Properties, after.PropertyID); idx >= 0 {
			touched = occupyUnit(&d.Properties[idx], after.ID, now) || touched
		}
	}
	if !touched {
		return nil
	}
	return []string{collectionProperties}
}

func occupyUnit(p *models.Property, tenantID string, now time.Time) bool {
	if slices.Contains(p.TenantIDs, tenantID) {
		return false
	}
	p.TenantIDs = append(slices.Clip(p.TenantIDs), tenantID)
	p.Occupancy++
	p.Status = models.PropertyStatusOccupied
	p.UpdatedAt = now
	return true
}

func releaseUnit(p *models.Property, tenantID string, now time.Time) bool {
	idx := slices.Index(p.TenantIDs, tenantID)
	if idx < 0 {
		return false
	}
	p.TenantIDs = slices.Delete(slices.Clone(p.TenantIDs), idx, idx+1)
	p.Occupancy = max(0, p.Occupancy-1)
	if p.Occupancy == 0 {
		p.Status = models.PropertyStatusUnlisted
	}
	p.UpdatedAt = now
	return true
}

func tenantChanged(d *Data, before, after *models.Tenant, now time.Time) []string {
	touched := applyOccupancy(d, before, after, now)
	if after == nil {
		removeMirroredContact(d, before.ID)
	} else {
		upsertMirroredContact(d, models.Contact{
			Name:            after.Name,
			Email:           after.Email,
			Phone:           after.Phone,
			Type:            models.ContactTypeTenant,
			RelatedEntityID: after.ID,
		}, now)
	}
	return append(touched, collectionContacts)
}

func managerChanged(d *Data, before, after *models.PropertyManager, now time.Time) []string {
	if after == nil {
		removeMirroredContact(d, before.ID)
	} else {
		upsertMirroredContact(d, models.Contact{
			Name:            after.Name,
			Email:           after.Email,
			Phone:           after.Phone,
			Company:         after.Company,
			Type:            models.ContactTypeManager,
			RelatedEntityID: after.ID,
		}, now)
	}
	return []string{collectionContacts}
}

// propertyChanged keeps managers' property lists in step with
// Property.ManagerID.
func propertyChanged(d *Data, before, after *models.Property, now time.Time) []string {
	var oldManager, newManager, id string
	if before != nil {
		oldManager, id = before.ManagerID, before.ID
	}
	if after != nil {
		newManager, id = after.ManagerID, after.ID
	}
	if oldManager == newManager {
		return nil
	}

	touched := false
	if idx := indexOf(d.Managers, oldManager); idx >= 0 {
		m := &d.Managers[idx]
		if i := slices.Index(m.PropertyIDs, id); i >= 0 {
			m.PropertyIDs = slices.Delete(slices.Clone(m.PropertyIDs), i, i+1)
			m.UpdatedAt = now
			touched = true
		}
	}
	if idx := indexOf(d.Managers, newManager); idx >= 0 {
		m := &d.Managers[idx]
		if !slices.Contains(m.PropertyIDs, id) {
			m.PropertyIDs = append(slices.Clip(m.PropertyIDs), id)
			m.UpdatedAt = now
			touched = true
		}
	}
	if !touched {
		return nil
	}
	return []string{collectionManagers}
}

// upsertMirroredContact creates or refreshes the contact that mirrors a
// tenant or manager, matched by RelatedEntityID. Fields the mirror does not
// own (notes, tags) are left untouched on update.
func upsertMirroredContact(d *Data, mirror models.Contact, now time.Time) {
	for i := range d.Contacts {
		c := &d.Contacts[i]
		if c.RelatedEntityID != mirror.RelatedEntityID {
			continue
		}
		c.Name = mirror.Name
		c.Email = mirror.Email
		c.Phone = mirror.Phone
		c.Type = mirror.Type
		if mirror.Company != "" {
			c.Company = mirror.Company
		}
		c.UpdatedAt = now
		return
	}

	mirror.ID = "contact-" + mirror.RelatedEntityID
	mirror.CreatedAt = now
	mirror.UpdatedAt = now
	d.Contacts = append(d.Contacts, mirror)
}

func removeMirroredContact(d *Data, relatedID string) {
	d.Contacts = slices.DeleteFunc(slices.Clone(d.Contacts), func(c models.Contact) bool {
		return c.RelatedEntityID == relatedID
	})
}
