package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"property-crm/internal/models"

	"github.com/shopspring/decimal"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// rowValidator reads typed fields out of one row and accumulates every
// failure, so a row reports all of its problems at once.
type rowValidator struct {
	row  models.Row
	line int
	errs []models.ImportError
	keys []pendingKey
}

// pendingKey is a natural key claimed by the current row. It is only added
// to its seen set once the whole row is valid.
type pendingKey struct {
	seen map[string]bool
	key  string
}

// newRowValidator wraps the data row at 0-based index i. Errors report i+2
// to account for the header line.
func newRowValidator(row models.Row, i int) *rowValidator {
	return &rowValidator{row: row, line: i + 2}
}

func (v *rowValidator) fail(field, format string, args ...interface{}) {
	v.errs = append(v.errs, models.ImportError{
		Row:     v.line,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *rowValidator) ok() bool { return len(v.errs) == 0 }

func (v *rowValidator) optional(field string) string {
	return v.row.Get(field)
}

func (v *rowValidator) required(field, label string) string {
	val := v.row.Get(field)
	if val == "" {
		v.fail(field, "%s is required", label)
	}
	return val
}

func (v *rowValidator) email(field string, required bool) string {
	val := v.row.Get(field)
	switch {
	case val == "" && required:
		v.fail(field, "Email is required")
	case val != "" && !emailPattern.MatchString(val):
		v.fail(field, "Invalid email format: %s", val)
	}
	return val
}

func (v *rowValidator) count(field string) int {
	val := cleanNumber(v.row.Get(field))
	if val == "" {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		v.fail(field, "%s must be a non-negative whole number", field)
		return 0
	}
	return n
}

func (v *rowValidator) float(field string) float64 {
	val := cleanNumber(v.row.Get(field))
	if val == "" {
		return 0
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		v.fail(field, "%s must be a non-negative number", field)
		return 0
	}
	return f
}

func (v *rowValidator) money(field string) decimal.Decimal {
	val := cleanNumber(v.row.Get(field))
	if val == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val)
	if err != nil || d.IsNegative() {
		v.fail(field, "%s must be a non-negative number", field)
		return decimal.Zero
	}
	return d
}

func (v *rowValidator) date(field string) *time.Time {
	val := v.row.Get(field)
	if val == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			t = t.UTC()
			return &t
		}
	}
	v.fail(field, "Invalid date for %s: %s (use YYYY-MM-DD)", field, val)
	return nil
}

// oneOf matches the value case-insensitively against allowed and returns the
// canonical spelling. An empty value yields def.
func (v *rowValidator) oneOf(field string, allowed []string, def string) string {
	val := v.row.Get(field)
	if val == "" {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(a, val) {
			return a
		}
	}
	v.fail(field, "Invalid %s: %s. Must be one of: %s", field, val, strings.Join(allowed, ", "))
	return def
}

// unique reports a duplicate when key is already in seen and otherwise
// claims it for the row. Empty keys are ignored.
func (v *rowValidator) unique(seen map[string]bool, key, field, message string) {
	if key == "" {
		return
	}
	if seen[key] {
		v.fail(field, "%s", message)
		return
	}
	v.keys = append(v.keys, pendingKey{seen: seen, key: key})
}

// commit marks the row's keys as taken, so later rows with the same key are
// reported as duplicates of an accepted record.
func (v *rowValidator) commit() {
	for _, k := range v.keys {
		k.seen[k.key] = true
	}
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	return strings.ReplaceAll(s, ",", "")
}

// validateRows applies parse to every row in order. Rows with no errors are
// collected in Data and claim their natural keys; FailedRecords counts rows,
// not individual errors.
func validateRows[T any](rows []models.Row, parse func(v *rowValidator) T) models.ImportResult[T] {
	result := models.ImportResult[T]{
		TotalRecords: len(rows),
		Errors:       []models.ImportError{},
		Data:         []T{},
	}
	for i, row := range rows {
		v := newRowValidator(row, i)
		rec := parse(v)
		if v.ok() {
			v.commit()
			result.Data = append(result.Data, rec)
			result.SuccessfulRecords++
			continue
		}
		result.Errors = append(result.Errors, v.errs...)
		result.FailedRecords++
	}
	result.Success = len(result.Errors) == 0
	return result
}

func propertyKey(name, address string) string {
	name, address = strings.TrimSpace(name), strings.TrimSpace(address)
	if name == "" || address == "" {
		return ""
	}
	return strings.ToLower(name) + "\x00" + strings.ToLower(address)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseProperty(v *rowValidator, seen map[string]bool) models.Property {
	p := models.Property{
		Name:          v.required("name", "Property name"),
		Address:       v.required("address", "Address"),
		City:          v.optional("city"),
		State:         v.optional("state"),
		ZipCode:       v.optional("zipCode"),
		Units:         v.count("units"),
		Bedrooms:      v.count("bedrooms"),
		Bathrooms:     v.float("bathrooms"),
		SquareFootage: v.count("squareFootage"),
		Rent:          v.money("rent"),
		Deposit:       v.money("deposit"),
		YearBuilt:     v.count("yearBuilt"),
		Description:   v.optional("description"),
		TenantIDs:     []string{},
	}
	if v.optional("type") == "" {
		v.fail("type", "Property type is required")
	} else {
		p.Type = v.oneOf("type", models.PropertyTypes, "")
	}
	p.Status = v.oneOf("status", models.PropertyStatuses, models.PropertyStatusUnlisted)

	v.unique(seen, propertyKey(p.Name, p.Address), "name",
		fmt.Sprintf("Duplicate property: %s at %s already exists", p.Name, p.Address))
	return p
}

// ValidateProperties validates property rows against existing properties.
// Duplicates are matched on name and address, ignoring case.
func ValidateProperties(rows []models.Row, existing []models.Property) models.ImportResult[models.Property] {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		if k := propertyKey(p.Name, p.Address); k != "" {
			seen[k] = true
		}
	}
	return validateRows(rows, func(v *rowValidator) models.Property {
		return parseProperty(v, seen)
	})
}

// ValidateContacts validates contact rows; duplicates are matched on email.
func ValidateContacts(rows []models.Row, existing []models.Contact) models.ImportResult[models.Contact] {
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		if k := emailKey(c.Email); k != "" {
			seen[k] = true
		}
	}
	return validateRows(rows, func(v *rowValidator) models.Contact {
		c := models.Contact{
			Name:    v.required("name", "Name"),
			Email:   v.email("email", true),
			Phone:   v.optional("phone"),
			Company: v.optional("company"),
			Type:    v.oneOf("type", models.ContactTypes, models.ContactTypeOther),
			Notes:   v.optional("notes"),
			Tags:    splitTags(v.optional("tags")),
		}
		v.unique(seen, emailKey(c.Email), "email",
			fmt.Sprintf("Duplicate contact: %s already exists", c.Email))
		return c
	})
}

// ValidateTenants validates tenant rows. A tenant's property is taken from
// propertyId when present, otherwise resolved from propertyName against
// properties, ignoring case.
func ValidateTenants(rows []models.Row, existing []models.Tenant, properties []models.Property) models.ImportResult[models.Tenant] {
	seen := tenantEmails(existing)
	byID := make(map[string]bool, len(properties))
	byName := make(map[string]string, len(properties))
	for _, p := range properties {
		byID[p.ID] = true
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if _, dup := byName[name]; !dup {
			byName[name] = p.ID
		}
	}

	return validateRows(rows, func(v *rowValidator) models.Tenant {
		t := parseTenant(v, "", seen)

		if id := v.optional("propertyId"); id != "" {
			if !byID[id] {
				v.fail("propertyId", "Property not found: %s", id)
			}
			t.PropertyID = id
		} else if name := v.optional("propertyName"); name != "" {
			id, ok := byName[strings.ToLower(name)]
			if !ok {
				v.fail("propertyName", "Property not found: %s", name)
			}
			t.PropertyID = id
		}
		return t
	})
}

// parseTenant reads the tenant columns. prefix selects the combined-file
// column names (tenantName, tenantEmail...) when non-empty.
func parseTenant(v *rowValidator, prefix string, seen map[string]bool) models.Tenant {
	col := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + strings.ToUpper(name[:1]) + name[1:]
	}

	t := models.Tenant{
		Name:             v.required(col("name"), "Tenant name"),
		Email:            v.email(col("email"), true),
		Phone:            v.optional(col("phone")),
		Unit:             v.optional("unit"),
		Status:           v.oneOf(col("status"), models.TenantStatuses, models.TenantStatusActive),
		LeaseStart:       v.date("leaseStart"),
		LeaseEnd:         v.date("leaseEnd"),
		RentAmount:       v.money("rentAmount"),
		SecurityDeposit:  v.money("securityDeposit"),
		EmergencyContact: v.optional("emergencyContact"),
		Notes:            v.optional("notes"),
	}
	if t.LeaseStart != nil && t.LeaseEnd != nil && t.LeaseEnd.Before(*t.LeaseStart) {
		v.fail("leaseEnd", "Lease end date must not be before lease start date")
	}
	v.unique(seen, emailKey(t.Email), col("email"),
		fmt.Sprintf("Duplicate tenant: %s already exists", t.Email))
	return t
}

// ValidateCombined validates rows that describe a property and, optionally,
// its first tenant. The tenant columns are tenantName, tenantEmail,
// tenantPhone and tenantStatus; a row with none of them imports the property
// alone.
func ValidateCombined(rows []models.Row, existingProperties []models.Property, existingTenants []models.Tenant) models.ImportResult[models.CombinedRecord] {
	seenProperties := make(map[string]bool, len(existingProperties))
	for _, p := range existingProperties {
		if k := propertyKey(p.Name, p.Address); k != "" {
			seenProperties[k] = true
		}
	}
	seenTenants := tenantEmails(existingTenants)

	return validateRows(rows, func(v *rowValidator) models.CombinedRecord {
		rec := models.CombinedRecord{Property: parseProperty(v, seenProperties)}
		if v.optional("tenantName") == "" && v.optional("tenantEmail") == "" {
			return rec
		}
		t := parseTenant(v, "tenant", seenTenants)
		rec.Tenant = &t
		return rec
	})
}

func tenantEmails(existing []models.Tenant) map[string]bool {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		if k := emailKey(t.Email); k != "" {
			seen[k] = true
		}
	}
	return seen
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' }) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
