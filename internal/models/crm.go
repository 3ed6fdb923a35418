package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ContactTypeTenant  = "Tenant"
	ContactTypeManager = "Property Manager"
	ContactTypeOwner   = "Owner"
	ContactTypeVendor  = "Vendor"
	ContactTypeLead    = "Lead"
	ContactTypeOther   = "Other"
)

var ContactTypes = []string{
	ContactTypeTenant,
	ContactTypeManager,
	ContactTypeOwner,
	ContactTypeVendor,
	ContactTypeLead,
	ContactTypeOther,
}

type Contact struct {
	Base
	Name            string   `json:"name" validate:"required,max=200"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone"`
	Company         string   `json:"company"`
	Type            string   `json:"type" validate:"omitempty,contact_type"`
	Notes           string   `json:"notes"`
	Tags            []string `json:"tags,omitempty"`
	RelatedEntityID string   `json:"related_entity_id,omitempty"`
}

type Deal struct {
	Base
	Title      string          `json:"title" validate:"required"`
	ContactID  string          `json:"contact_id"`
	PropertyID string          `json:"property_id"`
	Value      decimal.Decimal `json:"value"`
	Stage      string          `json:"stage"`
	CloseDate  *time.Time      `json:"close_date,omitempty"`
}

type Quote struct {
	Base
	DealID      string          `json:"deal_id"`
	ContactID   string          `json:"contact_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	ValidUntil  *time.Time      `json:"valid_until,omitempty"`
}

type Campaign struct {
	Base
	Name      string     `json:"name" validate:"required"`
	Channel   string     `json:"channel"`
	Status    string     `json:"status"`
	GroupID   string     `json:"group_id,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type Group struct {
	Base
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	ContactIDs  []string `json:"contact_ids"`
}

const (
	WorkOrderStatusOpen       = "Open"
	WorkOrderStatusInProgress = "In Progress"
	WorkOrderStatusCompleted  = "Completed"
	WorkOrderStatusCancelled  = "Cancelled"
)

type WorkOrder struct {
	Base
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	PropertyID  string          `json:"property_id"`
	TenantID    string          `json:"tenant_id,omitempty"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	AssignedTo  string          `json:"assigned_to"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
}

type Note struct {
	Base
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Content    string `json:"content" validate:"required"`
	Author     string `json:"author"`
}

type Announcement struct {
	Base
	Title       string     `json:"title" validate:"required"`
	Content     string     `json:"content"`
	PropertyIDs []string   `json:"property_ids"`
	Priority    string     `json:"priority"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type Document struct {
	Base
	Name       string `json:"name" validate:"required"`
	URL        string `json:"url"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}
