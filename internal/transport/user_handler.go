package transport

import (
	"net/http"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/middleware"
	"coastal-mart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username     string `json:"username" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Role         string `json:"role" validate:"required,oneof=buyer seller"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	ContactInfo  string `json:"contactInfo"`
	PaymentInfo  string `json:"paymentInfo"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a signed token alongside the account it belongs to
type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// ForgotPasswordRequest asks for a password reset link by email
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest redeems a reset token for a new password
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateProfileRequest carries the self-service profile fields. Absent
// fields are left untouched.
type UpdateProfileRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Password     string `json:"password" validate:"omitempty,min=6"`
	ProfilePhoto string `json:"profilePhoto"`
}

// UserHandler handles HTTP requests for accounts and authentication
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes. rateLimiter guards the
// credential endpoints; authMiddleware guards the profile endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimiter func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimiter)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
			r.Put("/{id}", h.UpdateProfile)
		})
	})
}

// Register handles account creation for buyers and sellers
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	token, user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Role:         domain.Role(req.Role),
		Name:         req.Name,
		BusinessName: req.BusinessName,
		ContactInfo:  req.ContactInfo,
		PaymentInfo:  req.PaymentInfo,
	})
	if err != nil {
		h.logger.Debug("Registration failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login handles authentication by username
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	token, user, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// ForgotPassword issues a reset link. The response never reveals whether
// the email is registered.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.userService.ForgotPassword(r.Context(), req.Email); err != nil {
		h.logger.Error("Forgot password failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

// ResetPassword redeems a reset token
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.logger.Debug("Password reset failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile edits the authenticated user's own profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), actor, userID, service.ProfileUpdate{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		ProfilePhoto: req.ProfilePhoto,
	})
	if err != nil {
		h.logger.Debug("Profile update failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}
