package application

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/beatmatch/backend/internal/modules/auth/domain"
	"github.com/beatmatch/backend/internal/modules/auth/infrastructure/jwt"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// DTOs for registration and login
type RegisterRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Birthday  string `json:"birthday"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// AuthService provides authentication operations
type AuthService struct {
	repo                 domain.UserRepository
	jwtSecret            string
	jwtExpiry            time.Duration
	googleTokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

// NewAuthService creates a new auth service
func NewAuthService(repo domain.UserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		repo:                 repo,
		jwtSecret:            jwtSecret,
		jwtExpiry:            jwtExpiry,
		googleTokenValidator: idtoken.Validate,
	}
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	// Validation
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" || req.Birthday == "" {
		return nil, errors.New("firstname, lastname, email, password and birthday are required")
	}

	if len(req.Password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}

	if !utils.IsValidEmail(req.Email) {
		return nil, errors.New("invalid email format")
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return nil, errors.New("invalid birthday format")
	}

	// Hash password
	hashedPass, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var phone *string
	if req.Phone != "" {
		phone = &req.Phone
	}

	user := &domain.User{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashedPass),
		Birthday:     birthday,
		Phone:        phone,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a JWT token plus the public record.
// Unknown email and wrong password produce the same error so user existence
// never leaks.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, *domain.User, error) {
	if req.Email == "" || req.Password == "" {
		return "", nil, errors.New("missing email or password")
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if err == domain.ErrUserNotFound {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, string(user.Role), user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// DeleteAccount removes the user and everything owned by it
func (s *AuthService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// GoogleLogin validates a Google ID token and signs the matching user in,
// creating the account on first login.
func (s *AuthService) GoogleLogin(ctx context.Context, googleClientID string, req GoogleLoginRequest) (string, error) {
	validate := s.googleTokenValidator
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(ctx, req.Token, googleClientID)
	if err != nil {
		log.Printf("AuthService.GoogleLogin token validate failed: %v", err)
		return "", errors.New("invalid google token")
	}

	email, _ := payload.Claims["email"].(string)
	givenName, _ := payload.Claims["given_name"].(string)
	familyName, _ := payload.Claims["family_name"].(string)

	if email == "" {
		return "", errors.New("email not provided by google")
	}
	email = strings.ToLower(email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err != domain.ErrUserNotFound {
			return "", err
		}
		user = &domain.User{
			ID:           uuid.New(),
			FirstName:    givenName,
			LastName:     familyName,
			Email:        email,
			PasswordHash: "", // no password for OAuth accounts
			Birthday:     time.Now(),
			Role:         domain.RoleUser,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if createErr := s.repo.Create(ctx, user); createErr != nil {
			return "", createErr
		}
	}

	return jwt.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, string(user.Role), user.Email)
}

func parseBirthday(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
