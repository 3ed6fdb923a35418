package database

import (
	"context"
	"fmt"

	"property-crm/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func NewMySQL(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// schema holds the tables behind accounts, webhook subscriptions, billing and
// import history. CRM records live in the snapshot store, not here.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'user',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_subscriptions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		subscriber_id VARCHAR(100) NOT NULL,
		event VARCHAR(100) NOT NULL,
		url VARCHAR(1024) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_webhook_event (event, is_active)
	)`,
	`CREATE TABLE IF NOT EXISTS subscription_plans (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		price DECIMAL(12,2) NOT NULL DEFAULT 0,
		billing_interval VARCHAR(20) NOT NULL DEFAULT 'month',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		plan_id INT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		ends_at TIMESTAMP NULL,
		INDEX idx_subscription_status (status)
	)`,
	`CREATE TABLE IF NOT EXISTS import_sessions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		session_code VARCHAR(64) NOT NULL UNIQUE,
		user_id INT NOT NULL DEFAULT 0,
		entity VARCHAR(20) NOT NULL,
		filename VARCHAR(255) NOT NULL,
		total_records INT NOT NULL DEFAULT 0,
		successful_records INT NOT NULL DEFAULT 0,
		failed_records INT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL,
		error_report VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_import_created (created_at)
	)`,
}

// Migrate creates any missing tables. It is safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
