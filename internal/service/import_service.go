package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"property-crm/internal/models"
	"property-crm/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrUnknownEntity = errors.New("unknown import entity")

const (
	ImportStatusCompleted = "completed"
	ImportStatusPartial   = "partial"
	ImportStatusFailed    = "failed"
	ImportStatusDryRun    = "dry_run"
)

// ImportSessionRecorder persists an audit record for each import.
type ImportSessionRecorder interface {
	CreateSession(ctx context.Context, session *models.ImportSession) error
}

type ImportRequest struct {
	UserID   int
	Entity   string
	Filename string
	Content  []byte
	DryRun   bool
}

// ImportSummary is the entity-independent view of an ImportResult plus what
// was done with it.
type ImportSummary struct {
	SessionCode       string               `json:"session_code"`
	Entity            string               `json:"entity"`
	Filename          string               `json:"filename"`
	DryRun            bool                 `json:"dry_run"`
	Status            string               `json:"status"`
	Success           bool                 `json:"success"`
	TotalRecords      int                  `json:"total_records"`
	SuccessfulRecords int                  `json:"successful_records"`
	FailedRecords     int                  `json:"failed_records"`
	Errors            []models.ImportError `json:"errors"`
	Imported          int                  `json:"imported"`
	ErrorReport       string               `json:"error_report,omitempty"`
	Data              interface{}          `json:"data"`
}

type ImportService struct {
	store      *store.Store
	excel      *ExcelService
	sessions   ImportSessionRecorder
	exportPath string
	logger     *logrus.Logger
	now        func() time.Time
}

func NewImportService(s *store.Store, sessions ImportSessionRecorder, exportPath string, logger *logrus.Logger) *ImportService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImportService{
		store:      s,
		excel:      NewExcelService(),
		sessions:   sessions,
		exportPath: exportPath,
		logger:     logger,
		now:        time.Now,
	}
}

// Import parses and validates an uploaded file and, unless DryRun is set,
// stores every valid row. Invalid rows never block valid ones.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportSummary, error) {
	if !slices.Contains(models.ImportEntities, req.Entity) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, req.Entity)
	}

	rows, lines, err := ParseFileWithLines(req.Content, filepath.Ext(req.Filename))
	if err != nil {
		return nil, err
	}

	summary, err := s.validateAndCommit(ctx, req, rows)
	if err != nil {
		return nil, err
	}
	summary.Errors = sourceLines(summary.Errors, lines)
	summary.SessionCode = uuid.NewString()
	summary.Entity = req.Entity
	summary.Filename = req.Filename
	summary.DryRun = req.DryRun
	summary.Status = importStatus(summary)

	log := s.logger.WithFields(logrus.Fields{
		"session_code": summary.SessionCode,
		"entity":       req.Entity,
		"total":        summary.TotalRecords,
		"failed":       summary.FailedRecords,
		"dry_run":      req.DryRun,
	})

	if len(summary.Errors) > 0 && s.exportPath != "" {
		name := fmt.Sprintf("import_errors_%s_%s.xlsx", req.Entity, s.now().Format("20060102_150405"))
		if err := os.MkdirAll(s.exportPath, 0o755); err != nil {
			log.WithError(err).Warn("Failed to create export directory")
		} else if err := s.excel.GenerateImportErrorReport(summary, filepath.Join(s.exportPath, name)); err != nil {
			log.WithError(err).Warn("Failed to write import error report")
		} else {
			summary.ErrorReport = name
		}
	}

	s.recordSession(ctx, req, summary)
	log.Info("Import processed")
	return summary, nil
}

func (s *ImportService) validateAndCommit(ctx context.Context, req ImportRequest, rows []models.Row) (*ImportSummary, error) {
	switch req.Entity {
	case models.ImportEntityProperty:
		res := ValidateProperties(rows, store.All(s.store, store.Properties))
		summary := summarize(res)
		if !req.DryRun && len(res.Data) > 0 {
			stored, err := store.InsertMany(ctx, s.store, store.Properties, res.Data)
			if err != nil {
				return nil, fmt.Errorf("import properties: %w", err)
			}
			summary.Imported, summary.Data = len(stored), stored
		}
		return summary, nil

	case models.ImportEntityContact:
		res := ValidateContacts(rows, store.All(s.store, store.Contacts))
		summary := summarize(res)
		if !req.DryRun && len(res.Data) > 0 {
			stored, err := store.InsertMany(ctx, s.store, store.Contacts, res.Data)
			if err != nil {
				return nil, fmt.Errorf("import contacts: %w", err)
			}
			summary.Imported, summary.Data = len(stored), stored
		}
		return summary, nil

	case models.ImportEntityTenant:
		res := ValidateTenants(rows, store.All(s.store, store.Tenants), store.All(s.store, store.Properties))
		summary := summarize(res)
		if !req.DryRun && len(res.Data) > 0 {
			stored, err := store.InsertMany(ctx, s.store, store.Tenants, res.Data)
			if err != nil {
				return nil, fmt.Errorf("import tenants: %w", err)
			}
			summary.Imported, summary.Data = len(stored), stored
		}
		return summary, nil

	default:
		res := ValidateCombined(rows, store.All(s.store, store.Properties), store.All(s.store, store.Tenants))
		summary := summarize(res)
		if !req.DryRun && len(res.Data) > 0 {
			records, err := s.commitCombined(ctx, res.Data)
			if err != nil {
				return nil, err
			}
			summary.Imported, summary.Data = len(records), records
		}
		return summary, nil
	}
}

// commitCombined stores the properties first so each tenant can be attached
// to its newly assigned property id.
func (s *ImportService) commitCombined(ctx context.Context, records []models.CombinedRecord) ([]models.CombinedRecord, error) {
	properties := make([]models.Property, len(records))
	for i, rec := range records {
		properties[i] = rec.Property
	}
	storedProps, err := store.InsertMany(ctx, s.store, store.Properties, properties)
	if err != nil {
		return nil, fmt.Errorf("import properties: %w", err)
	}

	var tenants []models.Tenant
	var owners []int
	for i, rec := range records {
		if rec.Tenant == nil {
			continue
		}
		t := *rec.Tenant
		t.PropertyID = storedProps[i].ID
		tenants = append(tenants, t)
		owners = append(owners, i)
	}

	out := make([]models.CombinedRecord, len(records))
	for i := range records {
		out[i] = models.CombinedRecord{Property: storedProps[i]}
	}
	if len(tenants) == 0 {
		return out, nil
	}

	storedTenants, err := store.InsertMany(ctx, s.store, store.Tenants, tenants)
	if err != nil {
		return nil, fmt.Errorf("import tenants: %w", err)
	}
	for j, t := range storedTenants {
		t := t
		i := owners[j]
		out[i].Tenant = &t
		// Occupancy changed when the tenant was stored
		if p, err := store.Find(s.store, store.Properties, out[i].Property.ID); err == nil {
			out[i].Property = p
		}
	}
	return out, nil
}

// sourceLines renumbers validation errors, which count rows by position, to
// the line each row was read from.
func sourceLines(errs []models.ImportError, lines []int) []models.ImportError {
	for i := range errs {
		if pos := errs[i].Row - 2; pos >= 0 && pos < len(lines) {
			errs[i].Row = lines[pos]
		}
	}
	return errs
}

func summarize[T any](res models.ImportResult[T]) *ImportSummary {
	return &ImportSummary{
		Success:           res.Success,
		TotalRecords:      res.TotalRecords,
		SuccessfulRecords: res.SuccessfulRecords,
		FailedRecords:     res.FailedRecords,
		Errors:            res.Errors,
		Data:              res.Data,
	}
}

func importStatus(s *ImportSummary) string {
	switch {
	case s.DryRun:
		return ImportStatusDryRun
	case s.SuccessfulRecords == 0 && s.TotalRecords > 0:
		return ImportStatusFailed
	case s.FailedRecords > 0:
		return ImportStatusPartial
	default:
		return ImportStatusCompleted
	}
}

func (s *ImportService) recordSession(ctx context.Context, req ImportRequest, summary *ImportSummary) {
	if s.sessions == nil {
		return
	}
	session := &models.ImportSession{
		SessionCode:       summary.SessionCode,
		UserID:            req.UserID,
		Entity:            req.Entity,
		Filename:          req.Filename,
		TotalRecords:      summary.TotalRecords,
		SuccessfulRecords: summary.SuccessfulRecords,
		FailedRecords:     summary.FailedRecords,
		Status:            summary.Status,
		ErrorReport:       summary.ErrorReport,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		s.logger.WithError(err).WithField("session_code", summary.SessionCode).Warn("Failed to record import session")
	}
}
