package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
)

type OTPService interface {
	RequestCode(ctx context.Context, mobile string) (time.Time, error)
	Verify(ctx context.Context, mobile, code string) (*domain.UserInfo, error)
}

// AccountBackend is the user half of the REST backend.
type AccountBackend interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.UserInfo, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.UserInfo, error)
	Profile(ctx context.Context, token string) (*domain.UserInfo, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.UserInfo, error)
}

type AuthHandler struct {
	otp      OTPService
	accounts AccountBackend
	timeout  time.Duration
}

// NewAuthHandler builds the login handlers. accounts may be nil when no
// backend is configured; only mobile login works then.
func NewAuthHandler(otp OTPService, accounts AccountBackend, timeout time.Duration) *AuthHandler {
	return &AuthHandler{otp: otp, accounts: accounts, timeout: timeout}
}

type OTPRequestDTO struct {
	Mobile string `json:"mobile"`
}

type OTPVerifyDTO struct {
	Mobile string `json:"mobile"`
	Code   string `json:"otp"`
}

type OTPRequestResponseDTO struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponseDTO is the user record without its bearer token.
type UserResponseDTO struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

func userResponse(u *domain.UserInfo) UserResponseDTO {
	return UserResponseDTO{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		IsAdmin: u.IsAdmin,
	}
}

// POST /api/auth/otp
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	expiresAt, err := h.otp.RequestCode(r.Context(), req.Mobile)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, OTPRequestResponseDTO{ExpiresAt: expiresAt})
}

// POST /api/auth/otp/verify
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPVerifyDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.otp.Verify(r.Context(), req.Mobile, req.Code)
	if err != nil {
		handleError(w, r, err)
		return
	}
	h.storeUser(w, r, user, http.StatusOK)
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.requireAccounts(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var creds domain.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	if creds.Email == "" || creds.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_argument", "email and password are required")
		return
	}

	user, err := h.accounts.Login(ctx, creds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	h.storeUser(w, r, user, http.StatusOK)
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.requireAccounts(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var reg domain.Registration
	if !decodeJSON(w, r, &reg) {
		return
	}
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_argument", "name, email and password are required")
		return
	}

	user, err := h.accounts.Register(ctx, reg)
	if err != nil {
		handleError(w, r, err)
		return
	}
	h.storeUser(w, r, user, http.StatusCreated)
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if !user.Authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	if h.accounts == nil {
		respondJSON(w, http.StatusOK, userResponse(user))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	profile, err := h.accounts.Profile(ctx, user.Token)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, userResponse(profile))
}

// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if !h.requireAccounts(w) {
		return
	}
	user := currentUser(r.Context())
	if !user.Authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var update domain.ProfileUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	updated, err := h.accounts.UpdateProfile(ctx, user.Token, update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if updated.Token == "" {
		updated.Token = user.Token
	}
	h.storeUser(w, r, updated, http.StatusOK)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := sess.Users.Clear(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) storeUser(w http.ResponseWriter, r *http.Request, user *domain.UserInfo, status int) {
	sess := sessionFromContext(r.Context())
	if err := sess.Users.Save(r.Context(), *user); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, status, userResponse(user))
}

func (h *AuthHandler) requireAccounts(w http.ResponseWriter) bool {
	if h.accounts == nil {
		respondError(w, http.StatusServiceUnavailable, "backend_not_configured", "account login needs a backend; use mobile login")
		return false
	}
	return true
}
