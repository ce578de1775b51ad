package service

import (
	"time"

	"github.com/Rifaque/ZeroLink/internal/auth"
	"github.com/Rifaque/ZeroLink/internal/domain"
)

// UserService provides directory-related services.
type UserService struct {
	userRepo IUserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// EnsureUser creates a directory entry for a verified identity if one does
// not exist yet. The display name falls back to the email when the token
// carries no name claim.
func (s *UserService) EnsureUser(identity *auth.Identity) (*domain.User, error) {
	name := identity.Name
	if name == "" {
		name = identity.Email
	}

	user := &domain.User{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: name,
		CreatedAt:   time.Now(),
	}
	if err := s.userRepo.UpsertUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns the full directory.
func (s *UserService) ListUsers() ([]*domain.User, error) {
	return s.userRepo.ListUsers()
}
