package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitializeSchema creates the database tables if they don't exist.
func InitializeSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) NOT NULL,
			email VARCHAR(255) NOT NULL,
			role ENUM('admin', 'user') NOT NULL DEFAULT 'user',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id)
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id CHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(64) NOT NULL,
			brand VARCHAR(255) NOT NULL,
			ingredients JSON NOT NULL,
			description TEXT,
			certifications JSON,
			packaging TEXT,
			sustainability TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			INDEX idx_products_category (category)
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id CHAR(36) NOT NULL,
			product_id CHAR(36) NOT NULL,
			question TEXT NOT NULL,
			type ENUM('text', 'select', 'multiselect') NOT NULL DEFAULT 'text',
			options JSON,
			required BOOLEAN NOT NULL DEFAULT FALSE,
			display_order INT NOT NULL DEFAULT 0,
			answer TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uniq_questions_product_order (product_id, display_order),
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id CHAR(36) NOT NULL,
			product_id CHAR(36) NOT NULL,
			user_id CHAR(36) NOT NULL,
			summary VARCHAR(2000) NOT NULL DEFAULT '',
			transparency_score INT NOT NULL DEFAULT 0,
			analysis JSON NOT NULL,
			answers JSON NOT NULL,
			pdf_url VARCHAR(512),
			status ENUM('draft', 'pending', 'completed') NOT NULL DEFAULT 'draft',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			INDEX idx_reports_user (user_id),
			INDEX idx_reports_product (product_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Info("Database schema ensured")
	return nil
}
