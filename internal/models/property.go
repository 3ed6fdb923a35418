package models

import "github.com/shopspring/decimal"

const (
	PropertyTypeApartment  = "Apartment"
	PropertyTypeHouse      = "House"
	PropertyTypeCondo      = "Condo"
	PropertyTypeTownhouse  = "Townhouse"
	PropertyTypeCommercial = "Commercial"
	PropertyTypeOther      = "Other"
)

const (
	PropertyStatusUnlisted    = "Unlisted"
	PropertyStatusListed      = "Listed"
	PropertyStatusOccupied    = "Occupied"
	PropertyStatusMaintenance = "Maintenance"
)

// PropertyTypes is the fixed set accepted for Property.Type.
var PropertyTypes = []string{
	PropertyTypeApartment,
	PropertyTypeHouse,
	PropertyTypeCondo,
	PropertyTypeTownhouse,
	PropertyTypeCommercial,
	PropertyTypeOther,
}

var PropertyStatuses = []string{
	PropertyStatusUnlisted,
	PropertyStatusListed,
	PropertyStatusOccupied,
	PropertyStatusMaintenance,
}

type Property struct {
	Base
	Name          string          `json:"name" validate:"required,max=200"`
	Address       string          `json:"address" validate:"required,max=300"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	ZipCode       string          `json:"zip_code"`
	Type          string          `json:"type" validate:"required,property_type"`
	Status        string          `json:"status" validate:"omitempty,property_status"`
	Units         int             `json:"units" validate:"gte=0"`
	Bedrooms      int             `json:"bedrooms" validate:"gte=0"`
	Bathrooms     float64         `json:"bathrooms" validate:"gte=0"`
	SquareFootage int             `json:"square_footage" validate:"gte=0"`
	Rent          decimal.Decimal `json:"rent"`
	Deposit       decimal.Decimal `json:"deposit"`
	YearBuilt     int             `json:"year_built,omitempty"`
	Description   string          `json:"description"`
	ManagerID     string          `json:"manager_id,omitempty"`

	// Maintained by the store from tenant status changes.
	Occupancy int      `json:"occupancy"`
	TenantIDs []string `json:"tenant_ids"`

	LateFeeOverride bool             `json:"late_fee_override"`
	LateFeeSettings *LateFeeSettings `json:"late_fee_settings,omitempty"`
}
