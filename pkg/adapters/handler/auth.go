package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/trimlink/pkg/auth"
	"github.com/wadjakorntonsri/trimlink/pkg/config"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	nextCookie          = "oauthnext"
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateCookieLifetime = 20 * time.Minute
)

type AuthHandler struct {
	oauthConfig  *oauth2.Config
	userInfoURL  string
	tokens       *auth.Tokens
	accounts     ports.AccountService
	gate         *Gate
	frontendURL  string
	isProduction bool
	logger       *zap.Logger
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

type sessionResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func NewAuthHandler(cfg *config.Config, tokens *auth.Tokens, accounts ports.AccountService, gate *Gate, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL:  googleUserInfoURL,
		tokens:       tokens,
		accounts:     accounts,
		gate:         gate,
		frontendURL:  cfg.FrontendURL,
		isProduction: cfg.IsProduction(),
		logger:       logger.Named("auth"),
	}
}

// Page is the auth entry point the gate sends unauthenticated browsers to.
func (h *AuthHandler) Page(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), "/dashboard")
	if h.gate.Resolve(r).Authenticated() {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	renderPage(w, http.StatusOK, "auth", authPage{Next: next})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	if next := r.URL.Query().Get("next"); next != "" {
		h.setCookie(w, nextCookie, safeNext(next, ""), time.Now().Add(stateCookieLifetime))
	}
	url := h.oauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie(stateCookie)
	if err != nil {
		h.logger.Warn("callback without oauthstate cookie", zap.Error(err))
		http.Redirect(w, r, "/auth", http.StatusTemporaryRedirect)
		return
	}
	// The sign-in is no longer pending, whatever happens next.
	h.clearCookie(w, stateCookie)

	state, _, ok := parseState(oauthState.Value)
	if !ok || r.FormValue("state") != state {
		h.logger.Warn("invalid oauth state")
		http.Error(w, "invalid oauth google state", http.StatusBadRequest)
		return
	}

	googleUser, err := h.fetchGoogleUser(r.Context(), r.FormValue("code"))
	if err != nil {
		h.logger.Error("google sign-in failed", zap.Error(err))
		http.Error(w, "google sign-in failed", http.StatusBadGateway)
		return
	}
	if !googleUser.VerifiedEmail {
		http.Error(w, "Access denied: email is not verified", http.StatusForbidden)
		return
	}

	user, err := h.accounts.EnsureExternal(r.Context(), googleUser.Email, googleUser.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			h.logger.Info("email not in allowlist", zap.String("email", googleUser.Email))
			http.Error(w, domain.PublicMessage(err), http.StatusForbidden)
			return
		}
		h.logger.Error("ensure user failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if _, err := h.startSession(w, user); err != nil {
		h.logger.Error("failed signing JWT", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	target := h.frontendURL
	if c, err := r.Cookie(nextCookie); err == nil && c.Value != "" {
		target = c.Value
		h.clearCookie(w, nextCookie)
	}
	h.logger.Info("login successful", zap.String("user_id", user.ID))
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.accounts.SignUp(r.Context(), req.Email, req.Name, req.Password)
	h.finishLocal(w, r, req, user, err, http.StatusCreated)
}

func (h *AuthHandler) LocalLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	h.finishLocal(w, r, req, user, err, http.StatusOK)
}

func (h *AuthHandler) finishLocal(w http.ResponseWriter, r *http.Request, req credentialsRequest, user *domain.User, err error, status int) {
	jsonClient := isJSON(r)
	if err != nil {
		if jsonClient {
			writeError(w, h.logger, err)
			return
		}
		renderPage(w, statusFor(domain.KindOf(err)), "auth", authPage{Next: safeNext(req.Next, "/dashboard"), Error: formMessage(err)})
		return
	}

	resp, err := h.startSession(w, user)
	if err != nil {
		h.logger.Error("failed signing JWT", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if jsonClient {
		writeJSON(w, status, resp)
		return
	}
	http.Redirect(w, r, safeNext(req.Next, "/dashboard"), http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, tokenCookie)
	http.Redirect(w, r, "/auth", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, user *domain.User) (*sessionResponse, error) {
	token, expiresAt, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	h.setCookie(w, tokenCookie, token, expiresAt)
	return &sessionResponse{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (h *AuthHandler) fetchGoogleUser(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	response, err := h.oauthConfig.Client(ctx, token).Get(h.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info returned status %d", response.StatusCode)
	}

	var googleUser GoogleUser
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed decoding user info: %w", err)
	}
	return &googleUser, nil
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	now := time.Now()
	h.setCookie(w, stateCookie, stateValue(state, now), now.Add(stateCookieLifetime))
	return state
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if isJSON(r) {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Email = r.PostFormValue("email")
	req.Name = r.PostFormValue("name")
	req.Password = r.PostFormValue("password")
	req.Next = r.PostFormValue("next")
	return req, nil
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

func formMessage(err error) string {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		return fields.Error()
	}
	return domain.PublicMessage(err)
}
