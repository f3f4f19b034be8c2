package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
)

// UserService reads identity records. Users are owned by the external
// identity service; this backend only consults role and active status.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new user service instance
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Get returns a user by id, or ErrNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, role, is_active FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Email, &u.Role, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
