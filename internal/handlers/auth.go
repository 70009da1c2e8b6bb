package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mfukui/lockgate/internal/models"
	"github.com/mfukui/lockgate/internal/services"
	pkghttp "github.com/mfukui/lockgate/pkg/http"
)

// User-facing notices for each rejection class. Wrong login and wrong
// password share one notice so responses do not reveal which part of the
// credential pair was bad.
const (
	noticeBanned          = "You're banned."
	noticeLocked          = "This account is locked."
	noticeWrongCredential = "Wrong username or password"
)

// LoginAttempter validates one login submission
type LoginAttempter interface {
	Attempt(ctx context.Context, login, password, ip string) (*services.LoginResult, error)
}

// LoginRequest represents a login submission
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

// LoginResponse is returned for an accepted login
type LoginResponse struct {
	Accepted  bool               `json:"accepted"`
	UserID    int64              `json:"user_id"`
	LastLogin *LastLoginResponse `json:"last_login,omitempty"`
}

// LastLoginResponse describes the successful login prior to this one
type LastLoginResponse struct {
	At time.Time `json:"at"`
	IP string    `json:"ip"`
}

// AuthHandler handles login submissions
type AuthHandler struct {
	logins   LoginAttempter
	ipConfig *pkghttp.IPConfig
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(logins LoginAttempter, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logins:   logins,
		ipConfig: ipConfig,
		logger:   logger,
	}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.logins.Attempt(r.Context(), req.Login, req.Password, ip)
	if err != nil {
		h.logger.Error("login attempt failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if !result.Accepted {
		writeRejection(w, result.Reason)
		return
	}

	resp := LoginResponse{
		Accepted: true,
		UserID:   result.User.ID,
	}
	if result.PreviousLogin != nil {
		resp.LastLogin = &LastLoginResponse{
			At: result.PreviousLogin.CreatedAt,
			IP: result.PreviousLogin.IP,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode login response", slog.Any("error", err))
	}
}

// decodeLoginRequest accepts both JSON and form-encoded bodies.
func decodeLoginRequest(r *http.Request) (*LoginRequest, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return &LoginRequest{
			Login:    r.PostFormValue("login"),
			Password: r.PostFormValue("password"),
		}, nil
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func writeRejection(w http.ResponseWriter, reason models.Reason) {
	switch reason {
	case models.ReasonBanned:
		pkghttp.WriteForbidden(w, noticeBanned)
	case models.ReasonLocked:
		pkghttp.WriteForbidden(w, noticeLocked)
	default:
		pkghttp.WriteUnauthorized(w, noticeWrongCredential)
	}
}
