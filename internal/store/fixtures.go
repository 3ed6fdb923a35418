package store

import (
	"time"

	"property-crm/internal/models"

	"github.com/shopspring/decimal"
)

// Fixtures returns the demo data used to seed an empty store. The tenant and
// property records are consistent with each other: every Active tenant is
// counted in its property's occupancy.
func Fixtures(now time.Time) *Data {
	base := func(id string) models.Base {
		return models.Base{ID: id, CreatedAt: now, UpdatedAt: now}
	}
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	return &Data{
		Properties: []models.Property{
			{
				Base: base("prop-1001"), Name: "Maple Court", Address: "1200 Maple Ave",
				City: "Springfield", State: "IL", ZipCode: "62704",
				Type: models.PropertyTypeApartment, Status: models.PropertyStatusOccupied,
				Units: 12, Bedrooms: 2, Bathrooms: 1, SquareFootage: 950,
				Rent: decimal.NewFromInt(1450), Deposit: decimal.NewFromInt(1450),
				ManagerID: "mgr-1001", Occupancy: 1, TenantIDs: []string{"tenant-1001"},
			},
			{
				Base: base("prop-1002"), Name: "Cedar House", Address: "48 Cedar Ln",
				City: "Springfield", State: "IL", ZipCode: "62711",
				Type: models.PropertyTypeHouse, Status: models.PropertyStatusListed,
				Units: 1, Bedrooms: 3, Bathrooms: 2, SquareFootage: 1800,
				Rent: decimal.NewFromInt(2100), Deposit: decimal.NewFromInt(3000),
				ManagerID: "mgr-1001", TenantIDs: []string{},
				LateFeeOverride: true,
				LateFeeSettings: &models.LateFeeSettings{GraceDays: intPtr(3)},
			},
		},
		Tenants: []models.Tenant{
			{
				Base: base("tenant-1001"), Name: "Ava Thompson", Email: "ava.thompson@example.com",
				Phone: "555-0101", PropertyID: "prop-1001", Unit: "2B",
				Status:     models.TenantStatusActive,
				LeaseStart: date(2024, time.February, 1), LeaseEnd: date(2025, time.January, 31),
				RentAmount: decimal.NewFromInt(1450), SecurityDeposit: decimal.NewFromInt(1450),
			},
			{
				Base: base("tenant-1002"), Name: "Liam Carter", Email: "liam.carter@example.com",
				Phone: "555-0102", Status: models.TenantStatusPending,
				RentAmount: decimal.NewFromInt(2100),
			},
		},
		Managers: []models.PropertyManager{
			{
				Base: base("mgr-1001"), Name: "Nora Patel", Email: "nora.patel@example.com",
				Phone: "555-0150", Company: "Northside Management",
				PropertyIDs: []string{"prop-1001", "prop-1002"}, Status: "Active",
			},
		},
		Contacts: []models.Contact{
			{
				Base: base("contact-tenant-1001"), Name: "Ava Thompson", Email: "ava.thompson@example.com",
				Phone: "555-0101", Type: models.ContactTypeTenant, RelatedEntityID: "tenant-1001",
			},
			{
				Base: base("contact-tenant-1002"), Name: "Liam Carter", Email: "liam.carter@example.com",
				Phone: "555-0102", Type: models.ContactTypeTenant, RelatedEntityID: "tenant-1002",
			},
			{
				Base: base("contact-mgr-1001"), Name: "Nora Patel", Email: "nora.patel@example.com",
				Phone: "555-0150", Company: "Northside Management",
				Type: models.ContactTypeManager, RelatedEntityID: "mgr-1001",
			},
			{
				Base: base("contact-1001"), Name: "Quick Fix Plumbing", Email: "dispatch@quickfix.example.com",
				Phone: "555-0199", Type: models.ContactTypeVendor,
			},
		},
		WorkOrders: []models.WorkOrder{
			{
				Base: base("wo-1001"), Title: "Leaking kitchen faucet", PropertyID: "prop-1001",
				TenantID: "tenant-1001", Priority: "High", Status: models.WorkOrderStatusOpen,
				AssignedTo: "contact-1001", DueDate: date(2024, time.March, 10),
			},
		},
		Announcements: []models.Announcement{
			{
				Base: base("ann-1001"), Title: "Water shut-off", Priority: "Normal",
				Content:     "Water will be off Tuesday 9am-12pm for maintenance.",
				PropertyIDs: []string{"prop-1001"}, PublishedAt: date(2024, time.March, 1),
			},
		},
		Payments: []models.Payment{
			{
				Base: base("pay-1001"), TenantID: "tenant-1001", PropertyID: "prop-1001",
				Amount: decimal.NewFromInt(1450), DueDate: *date(2024, time.March, 1),
				PaidDate: date(2024, time.March, 1), Status: models.PaymentStatusPaid, Method: "ACH",
			},
			{
				Base: base("pay-1002"), TenantID: "tenant-1001", PropertyID: "prop-1001",
				Amount: decimal.NewFromInt(1450), DueDate: *date(2024, time.April, 1),
				Status: models.PaymentStatusPending,
			},
		},
	}
}

func intPtr(v int) *int {
	return &v
}
