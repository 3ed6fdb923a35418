package service

import (
	"encoding/csv"
	"fmt"
	"strings"

	"property-crm/internal/models"

	"github.com/gocarina/gocsv"
)

type propertyTemplateRow struct {
	Name          string `csv:"name"`
	Address       string `csv:"address"`
	City          string `csv:"city"`
	State         string `csv:"state"`
	ZipCode       string `csv:"zipCode"`
	Type          string `csv:"type"`
	Status        string `csv:"status"`
	Units         string `csv:"units"`
	Bedrooms      string `csv:"bedrooms"`
	Bathrooms     string `csv:"bathrooms"`
	SquareFootage string `csv:"squareFootage"`
	Rent          string `csv:"rent"`
	Deposit       string `csv:"deposit"`
	YearBuilt     string `csv:"yearBuilt"`
	Description   string `csv:"description"`
}

type contactTemplateRow struct {
	Name    string `csv:"name"`
	Email   string `csv:"email"`
	Phone   string `csv:"phone"`
	Company string `csv:"company"`
	Type    string `csv:"type"`
	Notes   string `csv:"notes"`
	Tags    string `csv:"tags"`
}

type tenantTemplateRow struct {
	Name             string `csv:"name"`
	Email            string `csv:"email"`
	Phone            string `csv:"phone"`
	PropertyID       string `csv:"propertyId"`
	PropertyName     string `csv:"propertyName"`
	Unit             string `csv:"unit"`
	Status           string `csv:"status"`
	LeaseStart       string `csv:"leaseStart"`
	LeaseEnd         string `csv:"leaseEnd"`
	RentAmount       string `csv:"rentAmount"`
	SecurityDeposit  string `csv:"securityDeposit"`
	EmergencyContact string `csv:"emergencyContact"`
	Notes            string `csv:"notes"`
}

type combinedTemplateRow struct {
	Name            string `csv:"name"`
	Address         string `csv:"address"`
	City            string `csv:"city"`
	State           string `csv:"state"`
	ZipCode         string `csv:"zipCode"`
	Type            string `csv:"type"`
	Units           string `csv:"units"`
	Bedrooms        string `csv:"bedrooms"`
	Bathrooms       string `csv:"bathrooms"`
	SquareFootage   string `csv:"squareFootage"`
	Rent            string `csv:"rent"`
	Deposit         string `csv:"deposit"`
	TenantName      string `csv:"tenantName"`
	TenantEmail     string `csv:"tenantEmail"`
	TenantPhone     string `csv:"tenantPhone"`
	Unit            string `csv:"unit"`
	TenantStatus    string `csv:"tenantStatus"`
	LeaseStart      string `csv:"leaseStart"`
	LeaseEnd        string `csv:"leaseEnd"`
	RentAmount      string `csv:"rentAmount"`
	SecurityDeposit string `csv:"securityDeposit"`
}

var samplePropertyRow = propertyTemplateRow{
	Name:          "Sunset Apartments",
	Address:       "123 Main St",
	City:          "Springfield",
	State:         "IL",
	ZipCode:       "62701",
	Type:          models.PropertyTypeApartment,
	Status:        models.PropertyStatusListed,
	Units:         "10",
	Bedrooms:      "2",
	Bathrooms:     "1.5",
	SquareFootage: "950",
	Rent:          "1200",
	Deposit:       "1200",
	YearBuilt:     "1998",
	Description:   "Renovated kitchen, close to \"Line 5\" transit",
}

var sampleContactRow = contactTemplateRow{
	Name:    "John Smith",
	Email:   "john.smith@example.com",
	Phone:   "555-0123",
	Company: "Smith Properties LLC",
	Type:    models.ContactTypeOwner,
	Notes:   "Prefers email",
	Tags:    "owner;vip",
}

var sampleTenantRow = tenantTemplateRow{
	Name:             "Jane Doe",
	Email:            "jane.doe@example.com",
	Phone:            "555-0456",
	PropertyName:     "Sunset Apartments",
	Unit:             "4A",
	Status:           models.TenantStatusActive,
	LeaseStart:       "2024-01-01",
	LeaseEnd:         "2024-12-31",
	RentAmount:       "1200",
	SecurityDeposit:  "1200",
	EmergencyContact: "John Doe 555-0789",
	Notes:            "Has a cat",
}

var sampleCombinedRow = combinedTemplateRow{
	Name:            "Maple Duplex",
	Address:         "77 Maple Ave",
	City:            "Springfield",
	State:           "IL",
	ZipCode:         "62704",
	Type:            models.PropertyTypeTownhouse,
	Units:           "2",
	Bedrooms:        "3",
	Bathrooms:       "2",
	SquareFootage:   "1400",
	Rent:            "1650",
	Deposit:         "1650",
	TenantName:      "Jane Doe",
	TenantEmail:     "jane.doe@example.com",
	TenantPhone:     "555-0456",
	Unit:            "A",
	TenantStatus:    models.TenantStatusActive,
	LeaseStart:      "2024-01-01",
	LeaseEnd:        "2024-12-31",
	RentAmount:      "1650",
	SecurityDeposit: "1650",
}

func GeneratePropertyTemplate() string {
	return mustMarshalTemplate([]propertyTemplateRow{samplePropertyRow})
}

func GenerateContactTemplate() string {
	return mustMarshalTemplate([]contactTemplateRow{sampleContactRow})
}

func GenerateTenantTemplate() string {
	return mustMarshalTemplate([]tenantTemplateRow{sampleTenantRow})
}

func GenerateCombinedTemplate() string {
	return mustMarshalTemplate([]combinedTemplateRow{sampleCombinedRow})
}

// GenerateTemplate returns the two-line CSV template (header and one sample
// row) for an import entity.
func GenerateTemplate(entity string) (string, error) {
	switch entity {
	case models.ImportEntityProperty:
		return GeneratePropertyTemplate(), nil
	case models.ImportEntityContact:
		return GenerateContactTemplate(), nil
	case models.ImportEntityTenant:
		return GenerateTenantTemplate(), nil
	case models.ImportEntityCombined:
		return GenerateCombinedTemplate(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
}

// TemplateFileName is the download name for an entity's template, e.g.
// property_import_template.csv.
func TemplateFileName(entity, ext string) string {
	return fmt.Sprintf("%s_import_template.%s", entity, strings.TrimPrefix(ext, "."))
}

type importTemplate struct {
	headers []string
	sample  []string
}

func templateFor(entity string) (importTemplate, error) {
	text, err := GenerateTemplate(entity)
	if err != nil {
		return importTemplate{}, err
	}
	records, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	if err != nil {
		return importTemplate{}, fmt.Errorf("read %s template: %w", entity, err)
	}
	if len(records) != 2 {
		return importTemplate{}, fmt.Errorf("%s template has %d lines", entity, len(records))
	}
	return importTemplate{headers: records[0], sample: records[1]}, nil
}

func mustMarshalTemplate(rows interface{}) string {
	out, err := gocsv.MarshalString(rows)
	if err != nil {
		panic(fmt.Sprintf("marshal import template: %v", err))
	}
	return out
}
