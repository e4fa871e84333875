package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/christian-rost/stammdatenmanagement/internal/database"
)

var (
	// ErrUserExists is returned when the username or email is already taken
	ErrUserExists = errors.New("username or email already exists")

	// ErrInvalidCredentials is returned when username and password do not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when no user has the requested id
	ErrUserNotFound = errors.New("user not found")
)

// UserService manages reviewer accounts
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a reviewer account
func (s *UserService) Register(ctx context.Context, username, email, password string) (*database.User, error) {
	return s.create(ctx, username, email, password, false)
}

// Authenticate returns the user when the password matches
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*database.User, error) {
	var user database.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID returns a user by id
func (s *UserService) GetByID(ctx context.Context, id string) (*database.User, error) {
	var user database.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// EnsureAdmin creates the admin account if it does not exist yet. Empty
// credentials skip the bootstrap.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		log.Printf("UserService: ADMIN_USER/ADMIN_PW not set - skipping admin bootstrap")
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&database.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		log.Printf("UserService: Admin user '%s' already exists", username)
		return nil
	}

	if _, err := s.create(ctx, username, username+"@local", password, true); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Printf("UserService: Admin user '%s' created", username)
	return nil
}

func (s *UserService) create(ctx context.Context, username, email, password string, isAdmin bool) (*database.User, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&database.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &database.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
