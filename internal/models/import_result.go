package models

import (
	"strings"
	"time"
)

const (
	ImportEntityProperty = "property"
	ImportEntityContact  = "contact"
	ImportEntityTenant   = "tenant"
	ImportEntityCombined = "combined"
)

var ImportEntities = []string{
	ImportEntityProperty,
	ImportEntityContact,
	ImportEntityTenant,
	ImportEntityCombined,
}

// Row is one uploaded record before validation, keyed by header.
type Row map[string]string

// Get returns the trimmed value for key, matching headers case-insensitively
// and ignoring surrounding whitespace.
func (r Row) Get(key string) string {
	if v, ok := r[key]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range r {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ImportError is a validation error for one field of one row. Row is 1-based
// and counts the header line, so the first data row is row 2.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ImportResult is the outcome of validating a batch of uploaded rows.
type ImportResult[T any] struct {
	Success           bool          `json:"success"`
	TotalRecords      int           `json:"total_records"`
	SuccessfulRecords int           `json:"successful_records"`
	FailedRecords     int           `json:"failed_records"`
	Errors            []ImportError `json:"errors"`
	Data              []T           `json:"data"`
}

// CombinedRecord is a property row that may also carry its first tenant.
type CombinedRecord struct {
	Property Property `json:"property"`
	Tenant   *Tenant  `json:"tenant,omitempty"`
}

type ImportSession struct {
	ID                int       `db:"id" json:"id"`
	SessionCode       string    `db:"session_code" json:"session_code"`
	UserID            int       `db:"user_id" json:"user_id"`
	Entity            string    `db:"entity" json:"entity"`
	Filename          string    `db:"filename" json:"filename"`
	TotalRecords      int       `db:"total_records" json:"total_records"`
	SuccessfulRecords int       `db:"successful_records" json:"successful_records"`
	FailedRecords     int       `db:"failed_records" json:"failed_records"`
	Status            string    `db:"status" json:"status"`
	ErrorReport       string    `db:"error_report" json:"error_report"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
