package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TenantStatusActive     = "Active"
	TenantStatusPending    = "Pending"
	TenantStatusInactive   = "Inactive"
	TenantStatusPastTenant = "Past Tenant"
)

var TenantStatuses = []string{
	TenantStatusActive,
	TenantStatusPending,
	TenantStatusInactive,
	TenantStatusPastTenant,
}

type Tenant struct {
	Base
	Name             string          `json:"name" validate:"required,max=200"`
	Email            string          `json:"email" validate:"required,email"`
	Phone            string          `json:"phone"`
	PropertyID       string          `json:"property_id,omitempty"`
	Unit             string          `json:"unit"`
	Status           string          `json:"status" validate:"omitempty,tenant_status"`
	LeaseStart       *time.Time      `json:"lease_start,omitempty"`
	LeaseEnd         *time.Time      `json:"lease_end,omitempty"`
	RentAmount       decimal.Decimal `json:"rent_amount"`
	SecurityDeposit  decimal.Decimal `json:"security_deposit"`
	EmergencyContact string          `json:"emergency_contact"`
	Notes            string          `json:"notes"`

	// Move-out metadata; PropertyID is cleared and kept in PreviousPropertyID.
	PreviousPropertyID string     `json:"previous_property_id,omitempty"`
	MoveOutDate        *time.Time `json:"move_out_date,omitempty"`
	MoveOutReason      string     `json:"move_out_reason,omitempty"`
	ForwardingAddress  string     `json:"forwarding_address,omitempty"`
}

// IsActive reports whether the tenant counts toward its property's occupancy.
func (t *Tenant) IsActive() bool {
	return t != nil && t.Status == TenantStatusActive && t.PropertyID != ""
}

type MoveOutRequest struct {
	MoveOutDate       time.Time `json:"move_out_date" validate:"required"`
	Reason            string    `json:"reason"`
	ForwardingAddress string    `json:"forwarding_address"`
}

type PropertyManager struct {
	Base
	Name        string   `json:"name" validate:"required,max=200"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone"`
	Company     string   `json:"company"`
	PropertyIDs []string `json:"property_ids"`
	Status      string   `json:"status"`
}
