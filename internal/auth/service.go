// Package auth issues access tokens and resolves them back into the
// organization-scoped request context every other service depends on.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned for a bad email/password pair.
	ErrInvalidCredentials = errors.New("either email or password is invalid")
	// ErrEmailTaken is returned when signing up with an existing email.
	ErrEmailTaken = errors.New("email is already registered")
)

// Context identifies the authenticated caller. All journal operations are
// scoped to Context.Organization.
type Context struct {
	User         models.User
	Organization models.Organization
}

// Service handles signup, login and token verification.
type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	secret []byte
	ttl    time.Duration
}

// NewService creates a new auth Service.
func NewService(db *gorm.DB, log *zap.Logger, secret string, ttl time.Duration) *Service {
	return &Service{db: db, log: log, secret: []byte(secret), ttl: ttl}
}

// SignupInput carries the fields of a new account. The first user of an
// organization creates the organization itself.
type SignupInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	OrganizationName string
}

// Signup creates an organization with its first user and seeds the default
// coin and strategy catalogs.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("signup %q: %w", in.Email, ErrEmailTaken)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org := models.Organization{Name: in.OrganizationName}
		if err := tx.Create(&org).Error; err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}

		user = models.User{
			Email:          in.Email,
			PasswordHash:   string(hash),
			FirstName:      in.FirstName,
			LastName:       in.LastName,
			OrganizationID: org.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return database.SeedOrganization(tx, org.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("User signed up",
		zap.Uint("user_id", user.ID),
		zap.Uint("org_id", user.OrganizationID))
	return &user, nil
}

// Login verifies the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := signToken(s.secret, user.ID, time.Now().Add(s.ttl))
	if err != nil {
		return "", nil, err
	}

	s.log.Info("User logged in", zap.Uint("user_id", user.ID))
	return token, &user, nil
}

// Verify resolves a token into the caller's context, loading the user and
// their organization.
func (s *Service) Verify(ctx context.Context, token string) (*Context, error) {
	claims, err := verifyToken(s.secret, token, time.Now())
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	var org models.Organization
	if err := s.db.WithContext(ctx).First(&org, user.OrganizationID).Error; err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	return &Context{User: user, Organization: org}, nil
}
