package repository

import (
	"context"

	"property-crm/internal/models"

	"github.com/jmoiron/sqlx"
)

type ImportSessionRepository struct {
	db *sqlx.DB
}

func NewImportSessionRepository(db *sqlx.DB) *ImportSessionRepository {
	return &ImportSessionRepository{db: db}
}

// CreateSession implements service.ImportSessionRecorder.
func (r *ImportSessionRepository) CreateSession(ctx context.Context, session *models.ImportSession) error {
	query := `INSERT INTO import_sessions (session_code, user_id, entity, filename, total_records,
	          successful_records, failed_records, status, error_report)
	          VALUES (:session_code, :user_id, :entity, :filename, :total_records,
	          :successful_records, :failed_records, :status, :error_report)`
	result, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	session.ID = int(id)
	return nil
}

func (r *ImportSessionRepository) GetSessionByCode(ctx context.Context, code string) (*models.ImportSession, error) {
	var session models.ImportSession
	query := "SELECT * FROM import_sessions WHERE session_code = ? LIMIT 1"
	if err := r.db.GetContext(ctx, &session, query, code); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSessions returns one page of sessions, newest first, and the total count.
func (r *ImportSessionRepository) GetSessions(ctx context.Context, limit, offset int) ([]models.ImportSession, int, error) {
	sessions := []models.ImportSession{}
	var total int

	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM import_sessions"); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM import_sessions ORDER BY created_at DESC LIMIT ? OFFSET ?"
	if err := r.db.SelectContext(ctx, &sessions, query, limit, offset); err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}
