package services

import (
	"fmt"
	"log"
	"strconv"

	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/pkg/rabbitmq"
)

// UserService handles business logic related to users.
type UserService struct {
	repo     repositories.UserRepository
	mqClient *rabbitmq.Client
}

// NewUserService creates a new UserService. mqClient may be nil, in which
// case record events are not published.
func NewUserService(repo repositories.UserRepository, mqClient *rabbitmq.Client) *UserService {
	return &UserService{
		repo:     repo,
		mqClient: mqClient,
	}
}

// UpdateUserParams carries a partial update for a user. A nil field means
// "not supplied" and leaves the stored value untouched.
type UpdateUserParams struct {
	ID        uint
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Location  *string
}

// GetAllUsers retrieves all users with their posts.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	return s.repo.GetAll()
}

// GetUser retrieves a single user. A fully numeric identifier is treated as
// an ID, anything else as an email address.
func (s *UserService) GetUser(identifier string) (*models.User, error) {
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		return s.repo.GetByID(uint(id))
	}
	return s.repo.GetByEmail(identifier)
}

// CreateUser inserts a new user after checking that neither the email nor the
// username is taken. The store's unique indexes are the hard backstop should
// a concurrent create slip past the checks.
func (s *UserService) CreateUser(user *models.User) error {
	emailTaken, err := s.repo.ExistsByEmail(user.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	usernameTaken, err := s.repo.ExistsByUsername(user.Username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if emailTaken || usernameTaken {
		return fmt.Errorf("username %s or email %s: %w", user.Username, user.Email, repositories.ErrConflict)
	}

	if err := s.repo.Create(user); err != nil {
		return err
	}
	s.publishEvent("created", user.ID)
	return nil
}

// UpdateUser applies the supplied fields to an existing user, leaving absent
// fields untouched.
func (s *UserService) UpdateUser(params UpdateUserParams) error {
	user, err := s.repo.GetByID(params.ID)
	if err != nil {
		return err
	}

	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Location != nil {
		user.Location = *params.Location
	}

	if err := s.repo.Update(user); err != nil {
		return err
	}
	s.publishEvent("updated", user.ID)
	return nil
}

// DeleteUser removes a user and, by cascade, all posts they own.
func (s *UserService) DeleteUser(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publishEvent("deleted", id)
	return nil
}

func (s *UserService) publishEvent(action string, id uint) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishRecordEvent("user", action, id); err != nil {
		log.Printf("Warning: failed to publish user %s event for ID %d: %v", action, id, err)
	}
}
