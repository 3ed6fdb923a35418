package service

import (
	"testing"

	"property-crm/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePropertiesDuplicateIgnoresCase(t *testing.T) {
	existing := []models.Property{{Name: "A", Address: "123 X"}}
	rows := []models.Row{
		{"name": "a", "address": "123 x", "type": "House"},
		{"name": "B", "address": "9 Elm", "type": "House"},
	}

	res := ValidateProperties(rows, existing)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.TotalRecords)
	assert.Equal(t, 1, res.SuccessfulRecords)
	assert.Equal(t, 1, res.FailedRecords)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Message, "Duplicate property")
	require.Len(t, res.Data, 1)
	assert.Equal(t, "B", res.Data[0].Name)
}

func TestValidatePropertiesDuplicateWithinFile(t *testing.T) {
	rows := []models.Row{
		{"name": "Oak", "address": "1 Oak St", "type": "Condo"},
		{"name": "OAK", "address": "1 oak st", "type": "Condo"},
	}
	res := ValidateProperties(rows, nil)
	assert.Equal(t, 1, res.SuccessfulRecords)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
}

func TestValidatePropertiesCollectsEveryFieldError(t *testing.T) {
	rows := []models.Row{
		{"name": "", "address": "", "type": "Castle", "units": "-1", "rent": "abc", "bathrooms": "1.5"},
	}
	res := ValidateProperties(rows, nil)

	assert.Equal(t, 1, res.FailedRecords)
	assert.Empty(t, res.Data)

	fields := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		fields[i] = e.Field
		assert.Equal(t, 2, e.Row)
	}
	assert.Equal(t, []string{"name", "address", "units", "rent", "type"}, fields)
}

func TestValidatePropertiesTypedValues(t *testing.T) {
	rows := []models.Row{{
		"Name": " Maple ", "Address": "1 Main", "type": "apartment", "status": "listed",
		"units": "12", "bathrooms": "2.5", "rent": "$1,450.50", "deposit": "",
	}}
	res := ValidateProperties(rows, nil)
	require.True(t, res.Success, res.Errors)

	p := res.Data[0]
	assert.Equal(t, "Maple", p.Name)
	assert.Equal(t, models.PropertyTypeApartment, p.Type)
	assert.Equal(t, models.PropertyStatusListed, p.Status)
	assert.Equal(t, 12, p.Units)
	assert.Equal(t, 2.5, p.Bathrooms)
	assert.True(t, decimal.RequireFromString("1450.50").Equal(p.Rent))
	assert.True(t, p.Deposit.IsZero())
}

func TestValidateContacts(t *testing.T) {
	existing := []models.Contact{{Name: "X", Email: "Taken@Example.com"}}
	rows := []models.Row{
		{"name": "Ok", "email": "ok@example.com", "type": "vendor", "tags": "a; b"},
		{"name": "Dup", "email": "taken@example.com"},
		{"name": "", "email": "not-an-email"},
		{"name": "Bad type", "email": "bt@example.com", "type": "Alien"},
	}
	res := ValidateContacts(rows, existing)

	assert.Equal(t, 4, res.TotalRecords)
	assert.Equal(t, 1, res.SuccessfulRecords)
	assert.Equal(t, 3, res.FailedRecords)
	assert.Len(t, res.Errors, 4)

	require.Len(t, res.Data, 1)
	assert.Equal(t, models.ContactTypeVendor, res.Data[0].Type)
	assert.Equal(t, []string{"a", "b"}, res.Data[0].Tags)

	rowsWithErrors := map[int]int{}
	for _, e := range res.Errors {
		rowsWithErrors[e.Row]++
	}
	assert.Equal(t, map[int]int{3: 1, 4: 2, 5: 1}, rowsWithErrors)
}

func TestValidateTenantsPropertyResolution(t *testing.T) {
	properties := []models.Property{
		{Base: models.Base{ID: "p-1"}, Name: "Maple Court"},
		{Base: models.Base{ID: "p-2"}, Name: "Cedar House"},
	}
	rows := []models.Row{
		{"name": "By id", "email": "id@example.com", "propertyId": "p-2"},
		{"name": "By name", "email": "name@example.com", "propertyName": "  maple COURT "},
		{"name": "Unknown name", "email": "unknown@example.com", "propertyName": "Nowhere"},
		{"name": "Unknown id", "email": "badid@example.com", "propertyId": "p-9"},
		{"name": "Unassigned", "email": "none@example.com", "status": "pending"},
	}
	res := ValidateTenants(rows, nil, properties)

	require.Len(t, res.Data, 3)
	assert.Equal(t, "p-2", res.Data[0].PropertyID)
	assert.Equal(t, "p-1", res.Data[1].PropertyID)
	assert.Equal(t, "", res.Data[2].PropertyID)
	assert.Equal(t, models.TenantStatusPending, res.Data[2].Status)
	assert.Equal(t, models.TenantStatusActive, res.Data[0].Status)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, models.ImportError{Row: 4, Field: "propertyName", Message: "Property not found: Nowhere"}, res.Errors[0])
	assert.Equal(t, "propertyId", res.Errors[1].Field)
}

func TestValidateTenantsLeaseDates(t *testing.T) {
	rows := []models.Row{
		{"name": "Ok", "email": "ok@example.com", "leaseStart": "2024-01-01", "leaseEnd": "2024-12-31"},
		{"name": "Backwards", "email": "b@example.com", "leaseStart": "2024-06-01", "leaseEnd": "2024-01-01"},
		{"name": "Garbage", "email": "g@example.com", "leaseStart": "someday"},
	}
	res := ValidateTenants(rows, nil, nil)

	require.Len(t, res.Data, 1)
	require.NotNil(t, res.Data[0].LeaseStart)
	assert.Equal(t, "2024-01-01", res.Data[0].LeaseStart.Format("2006-01-02"))

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "leaseEnd", res.Errors[0].Field)
	assert.Equal(t, "leaseStart", res.Errors[1].Field)
}

func TestValidateTenantsDuplicateEmail(t *testing.T) {
	existing := []models.Tenant{{Name: "Ava", Email: "ava@example.com"}}
	rows := []models.Row{
		{"name": "Ava again", "email": "AVA@example.com"},
		{"name": "New", "email": "new@example.com"},
		{"name": "New twin", "email": "new@example.com"},
	}
	res := ValidateTenants(rows, existing, nil)
	assert.Equal(t, 1, res.SuccessfulRecords)
	assert.Equal(t, 2, res.FailedRecords)
}

func TestRejectedRowDoesNotClaimKey(t *testing.T) {
	t.Run("property", func(t *testing.T) {
		rows := []models.Row{
			{"name": "A", "address": "1 X", "type": "Spaceship"},
			{"name": "A", "address": "1 X", "type": "House"},
		}
		res := ValidateProperties(rows, nil)

		require.Len(t, res.Data, 1)
		assert.Equal(t, models.PropertyTypeHouse, res.Data[0].Type)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, models.ImportError{Row: 2, Field: "type", Message: res.Errors[0].Message}, res.Errors[0])
	})

	t.Run("tenant with unresolved property", func(t *testing.T) {
		properties := []models.Property{{Base: models.Base{ID: "p-1"}, Name: "Maple Court"}}
		rows := []models.Row{
			{"name": "Jo", "email": "jo@example.com", "propertyName": "Nowhere"},
			{"name": "Jo", "email": "jo@example.com", "propertyName": "Maple Court"},
		}
		res := ValidateTenants(rows, nil, properties)

		require.Len(t, res.Data, 1)
		assert.Equal(t, "p-1", res.Data[0].PropertyID)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "propertyName", res.Errors[0].Field)
	})

	t.Run("combined keeps both keys of an accepted row", func(t *testing.T) {
		rows := []models.Row{
			{"name": "P1", "address": "1 St", "type": "House", "tenantName": "T1", "tenantEmail": "t1@example.com"},
			{"name": "P1", "address": "1 St", "type": "House"},
			{"name": "P2", "address": "2 St", "type": "House", "tenantName": "T1b", "tenantEmail": "T1@example.com"},
		}
		res := ValidateCombined(rows, nil, nil)

		require.Len(t, res.Data, 1)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, "name", res.Errors[0].Field)
		assert.Equal(t, "tenantEmail", res.Errors[1].Field)
	})
}

func TestValidateCombined(t *testing.T) {
	existingTenants := []models.Tenant{{Email: "taken@example.com"}}
	rows := []models.Row{
		{"name": "P1", "address": "1 St", "type": "House", "tenantName": "T1", "tenantEmail": "t1@example.com", "tenantStatus": "Active"},
		{"name": "P2", "address": "2 St", "type": "House"},
		{"name": "P3", "address": "3 St", "type": "House", "tenantName": "T3", "tenantEmail": "taken@example.com"},
		{"name": "P4", "address": "4 St", "type": "House", "tenantName": "T4"},
	}
	res := ValidateCombined(rows, nil, existingTenants)

	require.Len(t, res.Data, 2)
	require.NotNil(t, res.Data[0].Tenant)
	assert.Equal(t, "t1@example.com", res.Data[0].Tenant.Email)
	assert.Nil(t, res.Data[1].Tenant)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, models.ImportError{Row: 4, Field: "tenantEmail", Message: "Duplicate tenant: taken@example.com already exists"}, res.Errors[0])
	assert.Equal(t, models.ImportError{Row: 5, Field: "tenantEmail", Message: "Email is required"}, res.Errors[1])
}

func TestValidationIsIdempotent(t *testing.T) {
	existing := []models.Property{{Name: "A", Address: "123 X"}}
	rows := []models.Row{
		{"name": "a", "address": "123 x", "type": "House"},
		{"name": "B", "address": "1 B", "type": "Other", "units": "3"},
		{"name": "", "address": "", "type": ""},
	}

	first := ValidateProperties(rows, existing)
	second := ValidateProperties(rows, existing)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("validation not idempotent (-first +second):\n%s", diff)
	}
}

func TestValidRowsCountsAgree(t *testing.T) {
	rows := []models.Row{
		{"name": "One", "email": "one@example.com"},
		{"name": "Two", "email": "two@example.com"},
	}
	res := ValidateContacts(rows, nil)

	assert.True(t, res.Success)
	assert.Equal(t, len(res.Data), res.SuccessfulRecords)
	assert.Equal(t, len(res.Errors), res.FailedRecords)
}
