package service

import (
	"strconv"

	"property-crm/internal/models"

	"github.com/gocarina/gocsv"
)

// ExportPropertiesCSV writes properties in the property import layout, so an
// export can be edited and imported again.
func ExportPropertiesCSV(properties []models.Property) (string, error) {
	rows := make([]propertyTemplateRow, 0, len(properties))
	for _, p := range properties {
		rows = append(rows, propertyTemplateRow{
			Name:          p.Name,
			Address:       p.Address,
			City:          p.City,
			State:         p.State,
			ZipCode:       p.ZipCode,
			Type:          p.Type,
			Status:        p.Status,
			Units:         strconv.Itoa(p.Units),
			Bedrooms:      strconv.Itoa(p.Bedrooms),
			Bathrooms:     strconv.FormatFloat(p.Bathrooms, 'f', -1, 64),
			SquareFootage: strconv.Itoa(p.SquareFootage),
			Rent:          p.Rent.String(),
			Deposit:       p.Deposit.String(),
			YearBuilt:     optionalInt(p.YearBuilt),
			Description:   p.Description,
		})
	}
	return gocsv.MarshalString(rows)
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
