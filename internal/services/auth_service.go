package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = apperrors.Conflict("User with this email already exists")
	ErrInvalidCredentials = apperrors.Unauthorized("Invalid email or password")
	ErrMissingToken       = apperrors.Unauthorized("Access denied. No token provided.")
	ErrUserGone           = apperrors.Unauthorized("Token is invalid or user no longer exists.")
	ErrAdminRequired      = apperrors.Forbidden("Admin access required.")
)

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Name     string `json:"name" form:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ProfileInput holds the editable profile fields.
type ProfileInput struct {
	Name string `json:"name" form:"name" validate:"required,min=2,max=50"`
}

// Profile is a user together with their stored favorites set.
type Profile struct {
	User      *models.User
	Favorites []string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token   string
	Profile *Profile
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo     repositories.UserRepository
	favoriteRepo repositories.FavoriteRepository
	sessions     *SessionIssuer
	validate     *validator.Validate
	logger       *zap.Logger
	hashCost     int
	listings     ListingInvalidator
}

// ListingInvalidator drops cached catalog pages. Listing pages embed seller
// names, so a rename must invalidate them.
type ListingInvalidator interface {
	InvalidateListings(ctx context.Context)
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, favoriteRepo repositories.FavoriteRepository, sessions *SessionIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
		sessions:     sessions,
		validate:     NewValidator(),
		logger:       logger,
		hashCost:     bcrypt.DefaultCost,
	}
}

// SetHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) SetHashCost(cost int) {
	s.hashCost = cost
}

// SetListingInvalidator registers the catalog cache to clear on renames.
func (s *AuthService) SetListingInvalidator(listings ListingInvalidator) {
	s.listings = listings
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultAvatar returns a generated initials avatar URL for name.
func DefaultAvatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&size=128&background=20203a&color=d4a853&bold=true"
}

// Register creates a user with a hashed password and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.FromValidator(err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("Registration failed", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperrors.Internal("Registration failed", fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
		Avatar:   DefaultAvatar(in.Name),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.Internal("Registration failed", err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return s.signIn(user, []string{})
}

// Login authenticates by email and password and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.FromValidator(err)
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Internal("Login failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	favorites, err := s.favoriteRepo.ProductIDs(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Internal("Login failed", err)
	}
	return s.signIn(user, favorites)
}

func (s *AuthService) signIn(user *models.User, favorites []string) (*AuthResult, error) {
	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal("Could not issue session token", err)
	}
	return &AuthResult{Token: token, Profile: &Profile{User: user, Favorites: favorites}}, nil
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	userID, err := s.sessions.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, apperrors.Internal("Server error during authentication.", err)
	}
	return user, nil
}

// Profile returns the user and their stored favorites set.
func (s *AuthService) Profile(ctx context.Context, user *models.User) (*Profile, error) {
	favorites, err := s.favoriteRepo.ProductIDs(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch profile", err)
	}
	return &Profile{User: user, Favorites: favorites}, nil
}

// UpdateProfile changes the user's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if err := s.userRepo.UpdateName(ctx, userID, in.Name); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, apperrors.Internal("Failed to update profile", err)
	}
	if s.listings != nil {
		s.listings.InvalidateListings(ctx)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to update profile", err)
	}
	return s.Profile(ctx, user)
}
