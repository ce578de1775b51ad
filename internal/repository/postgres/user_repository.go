package postgres

import (
	"database/sql"

	"github.com/Rifaque/ZeroLink/internal/domain"
)

// UserRepository handles database operations for directory entries.
type UserRepository struct {
	DB *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// UpsertUser inserts a directory entry unless the uid is already known.
// Safe to call on every connection.
func (r *UserRepository) UpsertUser(user *domain.User) error {
	query := `INSERT INTO users (uid, email, display_name, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid) DO NOTHING`
	_, err := r.DB.Exec(query, user.UID, user.Email, user.DisplayName, user.CreatedAt)
	return err
}

// GetUserByUID retrieves a directory entry by its identity key.
func (r *UserRepository) GetUserByUID(uid string) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT uid, email, display_name, created_at FROM users WHERE uid = $1`
	err := r.DB.QueryRow(query, uid).Scan(&user.UID, &user.Email, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No user found is not an application error
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves the full directory.
func (r *UserRepository) ListUsers() ([]*domain.User, error) {
	query := `SELECT uid, email, display_name, created_at FROM users`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(&user.UID, &user.Email, &user.DisplayName, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
