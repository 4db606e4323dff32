package authsvc

import (
	"fmt"
	"net/http"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for registration, login, token validation and profile management.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
	mux     *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport backed by authSvc.
// The service also verifies the tokens of the authenticated routes.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		mux:     http.NewServeMux(),
	}
	ht.RegisterRoutes(ht.mux)

	return ht
}

// RegisterRoutes mounts the auth service endpoints:
//   - POST /api/auth/register: register a new user
//   - POST /api/auth/login: log in and get a session token
//   - POST /api/auth/validate: validate a session token
//   - GET /api/user/profile: get the caller's profile
//   - PUT /api/user/profile: update the caller's profile
//   - PUT /api/admin/users/{id}/status: enable or disable a user
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	authorize := http_.Authorize(ht.authSvc, ht.log)

	mux.Handle("POST /api/auth/register", http_.Handle(ht.log, "register user", ht.handleRegister))
	mux.Handle("POST /api/auth/login", http_.Handle(ht.log, "login", ht.handleLogin))
	mux.Handle("POST /api/auth/validate", http_.Handle(ht.log, "validate token", ht.handleValidate))
	mux.Handle("GET /api/user/profile", authorize(http_.Handle(ht.log, "get profile", ht.handleGetProfile)))
	mux.Handle("PUT /api/user/profile", authorize(http_.Handle(ht.log, "update profile", ht.handleUpdateProfile)))
	mux.Handle("PUT /api/admin/users/{id}/status",
		authorize(http_.Handle(ht.log, "set user status", ht.handleSetUserStatus)))
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

func profileFromForm(r *http.Request) domain.UserProfile {
	return domain.UserProfile{
		Email:  r.FormValue("email"),
		Phone:  r.FormValue("phone"),
		Avatar: r.FormValue("avatar"),
	}
}

// Expects form parameters: username, password and optionally email, phone, avatar.
func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) error {
	username, err := http_.RequiredFormValue(r, "username")
	if err != nil {
		return err
	}

	password, err := http_.RequiredFormValue(r, "password")
	if err != nil {
		return err
	}

	user, err := ht.authSvc.RegisterUser(r.Context(), username, password, profileFromForm(r))
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusCreated, user)
}

// Expects form parameters: username, password.
// Returns the session token together with the user.
func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) error {
	username, err := http_.RequiredFormValue(r, "username")
	if err != nil {
		return err
	}

	password, err := http_.RequiredFormValue(r, "password")
	if err != nil {
		return err
	}

	token, user, err := ht.authSvc.Authenticate(r.Context(), username, password)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.AuthTokenResponse{
		Token: token,
		User:  user,
	})
}

// Expects the token in the Authorization header with Bearer scheme.
// Returns the verified token content.
func (ht *HTTPTransport) handleValidate(w http.ResponseWriter, r *http.Request) error {
	tokenString, err := http_.BearerToken(r)
	if err != nil {
		return err
	}

	token, err := ht.authSvc.VerifyToken(r.Context(), tokenString)
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, token)
}

func (ht *HTTPTransport) handleGetProfile(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	user, err := ht.authSvc.GetProfile(r.Context(), userID)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, user)
}

// Expects form parameters: email, phone, avatar. Omitted fields are cleared.
func (ht *HTTPTransport) handleUpdateProfile(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.UserID(r)
	if err != nil {
		return err
	}

	user, err := ht.authSvc.UpdateProfile(r.Context(), userID, profileFromForm(r))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, user)
}

// Expects form parameter: status ("active" or "disabled").
func (ht *HTTPTransport) handleSetUserStatus(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	value, err := http_.RequiredFormValue(r, "status")
	if err != nil {
		return err
	}

	status, err := domain.ParseUserStatus(value)
	if err != nil {
		return err
	}

	if err := ht.authSvc.SetUserStatus(r.Context(), userID, status); err != nil {
		return fmt.Errorf("set user status: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
