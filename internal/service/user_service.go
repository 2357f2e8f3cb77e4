package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/mailer"
	"coastal-mart/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// MinPasswordLen is the minimum accepted password length
	MinPasswordLen = 6

	// TokenExpiration is how long an issued access token stays valid
	TokenExpiration = 24 * time.Hour

	// ResetTokenExpiration is how long a password-reset link stays valid
	ResetTokenExpiration = time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrResetTokenExpired  = errors.New("reset token has expired")
)

// Claims represents the JWT claims issued at registration and login
type Claims struct {
	UserID   uuid.UUID   `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput carries a registration request
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	Role         domain.Role
	Name         string
	BusinessName string
	ContactInfo  string
	PaymentInfo  string
}

// ProfileUpdate carries the self-service profile fields. Nil-equivalent
// (empty) fields are left untouched.
type ProfileUpdate struct {
	Name         string
	Email        string
	Phone        string
	Password     string
	ProfilePhoto string
}

// UserService defines the business logic for accounts and authentication
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (token string, user *domain.User, err error)
	Login(ctx context.Context, username, password string) (token string, user *domain.User, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type userService struct {
	userRepo       repository.UserRepository
	resetTokenRepo repository.ResetTokenRepository
	mail           mailer.Mailer
	jwtSecret      string
	clientURL      string
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	resetTokenRepo repository.ResetTokenRepository,
	mail mailer.Mailer,
	jwtSecret string,
	clientURL string,
) UserService {
	return &userService{
		userRepo:       userRepo,
		resetTokenRepo: resetTokenRepo,
		mail:           mail,
		jwtSecret:      jwtSecret,
		clientURL:      clientURL,
	}
}

// Register creates a buyer or seller account and returns a signed token.
// Sellers start in the pending review state; everyone else is approved.
func (s *userService) Register(ctx context.Context, input RegisterInput) (string, *domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return "", nil, validationError("username, email and password are required")
	}
	if len(input.Password) < MinPasswordLen {
		return "", nil, validationError("password must be at least %d characters", MinPasswordLen)
	}
	if input.Role != domain.RoleBuyer && input.Role != domain.RoleSeller {
		return "", nil, validationError("invalid role, must be buyer or seller")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), BcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	status := domain.SellerApproved
	if input.Role == domain.RoleSeller {
		status = domain.SellerPending
	}

	name := input.Name
	if name == "" {
		name = input.Username
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		Status:       status,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Role == domain.RoleSeller {
		user.BusinessName = input.BusinessName
		user.ContactInfo = input.ContactInfo
		user.PaymentInfo = input.PaymentInfo
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// Login authenticates by username and returns a signed token
func (s *userService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return "", nil, validationError("username and password required")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// ValidateToken validates a JWT and returns its claims
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// UpdateProfile lets a user edit their own profile
func (s *userService) UpdateProfile(ctx context.Context, actor domain.Actor, userID uuid.UUID, update ProfileUpdate) (*domain.User, error) {
	if actor.ID != userID {
		return nil, forbiddenError("access denied")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(update.Email))
	}
	if update.Phone != "" {
		user.ContactInfo = update.Phone
	}
	if update.ProfilePhoto != "" {
		user.ProfilePhoto = update.ProfilePhoto
	}
	if update.Password != "" {
		if len(update.Password) < MinPasswordLen {
			return nil, validationError("password must be at least %d characters", MinPasswordLen)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.Password), BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ForgotPassword issues a reset token and mails the reset link. The caller
// never learns whether the email exists; mail failures are swallowed for
// the same reason.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	tokenValue := hex.EncodeToString(raw)

	token := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     tokenValue,
		ExpiresAt: time.Now().Add(ResetTokenExpiration),
		CreatedAt: time.Now(),
	}
	if err := s.resetTokenRepo.Create(ctx, token); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/forgotPassword.html?token=%s", s.clientURL, tokenValue)
	body := fmt.Sprintf("A password reset was requested for your account.\n\nReset link: %s\n\nThe link expires in one hour.", resetLink)
	_ = s.mail.Send(user.Email, "Coastal Mart Password Reset", body)

	return nil
}

// ResetPassword redeems a reset token and stores the new password
func (s *userService) ResetPassword(ctx context.Context, tokenValue, password string) error {
	if tokenValue == "" || password == "" {
		return validationError("token and password are required")
	}
	if len(password) < MinPasswordLen {
		return validationError("password must be at least %d characters", MinPasswordLen)
	}

	token, err := s.resetTokenRepo.FindByToken(ctx, tokenValue)
	if err != nil {
		return err
	}
	if time.Now().After(token.ExpiresAt) {
		return ErrResetTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.resetTokenRepo.MarkUsed(ctx, tokenValue)
}

// generateToken signs a JWT carrying the user's identity and role
func (s *userService) generateToken(user *domain.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
