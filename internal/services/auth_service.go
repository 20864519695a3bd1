package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/splitmate-api/internal/constants"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUsernameTooShort     = errors.New("username too short")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	store repository.Store
	gate  FeatureGate
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, gate FeatureGate) *AuthService {
	return &AuthService{
		store: store,
		gate:  gate,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Signup creates a new user on the MEMBER plan.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = username
	}

	if len(username) < constants.MinUsernameLength {
		return nil, ErrUsernameTooShort
	}
	if !isEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !s.gate.SignUpEnabled(ctx, email) {
		return nil, apierrors.BadRequest(apierrors.ErrCodeFeatureUnavailable, "Sign up is not available")
	}

	users := s.store.Users()
	if _, err := users.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	plan, err := s.store.Plans().FindByName(models.PlanMember)
	if err != nil {
		return nil, fmt.Errorf("failed to find member plan: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:           name,
		Username:       username,
		Email:          email,
		PasswordHash:   string(hashedPassword),
		PlanID:         plan.ID,
		EventsPending:  models.IDList{},
		EventsArchived: models.IDList{},
	}

	if err := users.Create(user); err != nil {
		slog.Error("Failed to create user", "username", username, "error", err)
		return nil, ErrFailedToCreateUser
	}
	user.Plan = plan

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user. The
// username field also accepts the account email.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	login := strings.TrimSpace(input.Username)

	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.store.Users().FindByEmail(strings.ToLower(login))
	} else {
		user, err = s.store.Users().FindByUsername(login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	return findUser(s.store, id)
}

// FindByUsername retrieves a user by username.
func (s *AuthService) FindByUsername(username string) (*models.User, error) {
	user, err := s.store.Users().FindByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound(apierrors.DocUser)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
