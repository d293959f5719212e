package transport

import (
	"net/http"
	"time"

	"factorylink/internal/config"
	"factorylink/internal/domain"
	"factorylink/internal/middleware"
	"factorylink/internal/repository"
	"factorylink/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Country  string `json:"country" validate:"required"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserProfile represents user profile data returned by auth endpoints. The
// password hash never leaves the domain type.
type UserProfile struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	IsAdmin bool   `json:"isAdmin"`
}

// AuthPayload is the data section of register/login responses.
type AuthPayload struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

func profileOf(user *domain.User) UserProfile {
	return UserProfile{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		Country: user.Country,
		IsAdmin: user.IsAdmin,
	}
}

// UserHandler handles HTTP requests for authentication
type UserHandler struct {
	userService service.UserService
	cfg         *config.Config
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, cfg *config.Config, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		cfg:         cfg,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes. The rate limiter guards the
// credential endpoints and may be nil when Redis is not configured.
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimiter func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			if rateLimiter != nil {
				r.Use(rateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})
		r.Post("/logout", h.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
		})
	})
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone, req.Country)
	if err != nil {
		if err == repository.ErrUserAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.setTokenCookie(w, token, time.Duration(h.cfg.JWT.RegisterTTL)*time.Minute)

	h.logger.Info("User registered successfully", zap.Int64("user_id", user.ID))
	middleware.RespondWithSuccess(w, http.StatusCreated, "user registered successfully", AuthPayload{
		Token: token,
		User:  profileOf(user),
	})
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Same message for unknown email and wrong password
		if err == service.ErrInvalidCredentials {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.setTokenCookie(w, token, time.Duration(h.cfg.JWT.LoginTTL)*24*time.Hour)

	h.logger.Info("User logged in successfully", zap.Int64("user_id", user.ID))
	middleware.RespondWithSuccess(w, http.StatusOK, "login successful", AuthPayload{
		Token: token,
		User:  profileOf(user),
	})
}

// Logout clears the auth cookie. Idempotent: always succeeds.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Server.IsProduction(),
		SameSite: h.cookieSameSite(),
	})

	middleware.RespondWithSuccess(w, http.StatusOK, "logged out successfully", nil)
}

// Me returns the identity the auth middleware resolved
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "user retrieved successfully", identity)
}

func (h *UserHandler) setTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Server.IsProduction(),
		SameSite: h.cookieSameSite(),
	})
}

// cookieSameSite is Lax in development and None (with Secure) in production,
// where the frontend runs on a different origin.
func (h *UserHandler) cookieSameSite() http.SameSite {
	if h.cfg.Server.IsProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
