// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"tailorcms/internal/mailer"
	"tailorcms/internal/middleware"
	"tailorcms/internal/render"
	"tailorcms/internal/session"
	"tailorcms/internal/store"
)

const totpIssuer = "TailorCMS"

// Auth groups the authentication handlers: login, TOTP 2FA, logout, and
// password reset.
type Auth struct {
	renderer   *render.Renderer
	sessions   *session.Store
	userStore  *store.UserStore
	resetStore *store.ResetStore
	mail       *mailer.Mailer
	baseURL    string
}

// NewAuth creates the auth handler group. mail may be nil; reset emails
// are then dropped (and logged), the form behaves identically.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore, resetStore *store.ResetStore, mail *mailer.Mailer, baseURL string) *Auth {
	return &Auth{
		renderer:   renderer,
		sessions:   sessions,
		userStore:  userStore,
		resetStore: resetStore,
		mail:       mail,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already logged in with 2FA complete: straight to the dashboard.
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.TwoFADone {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign In",
	})
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := a.userStore.FindByEmail(email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.loginError(w, r, "An unexpected error occurred.")
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		a.loginError(w, r, "Invalid email or password.")
		return
	}

	// Session starts with TwoFADone false; the 2FA step completes it.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
	} else {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
	}
}

func (a *Auth) loginError(w http.ResponseWriter, r *http.Request, msg string) {
	a.renderer.Page(w, r, "login", &render.PageData{
		Title:   "Sign In",
		Flashes: []render.Flash{{Type: "error", Message: msg}},
	})
}

// TwoFASetupPage generates a TOTP secret and displays the QR code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qrBase64, err := qrPNG(key.URL())
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data: map[string]any{
			"QRCode": qrBase64,
			"Secret": key.Secret(),
		},
	})
}

// TwoFAVerifyPage renders the 2FA code entry form for users with 2FA
// already enrolled.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	if sessionOrFail(w, r) == nil {
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-Factor Authentication",
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes authentication.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		flash := []render.Flash{{Type: "error", Message: "Invalid code. Please try again."}}

		if !user.TOTPEnabled {
			// Still enrolling: show the setup page again with the same
			// secret so the authenticator entry stays valid.
			qrBase64, _ := qrPNG(fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
				totpIssuer, user.Email, *user.TOTPSecret, totpIssuer))
			a.renderer.Page(w, r, "2fa_setup", &render.PageData{
				Title:   "Set Up Two-Factor Authentication",
				Flashes: flash,
				Data: map[string]any{
					"QRCode": qrBase64,
					"Secret": *user.TOTPSecret,
				},
			})
			return
		}

		a.renderer.Page(w, r, "2fa_verify", &render.PageData{
			Title:   "Two-Factor Authentication",
			Flashes: flash,
		})
		return
	}

	// First successful verification completes enrollment.
	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// ResetRequestPage renders the forgot-password form.
func (a *Auth) ResetRequestPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "reset_request", &render.PageData{
		Title: "Reset Password",
		Data:  map[string]any{"Sent": false},
	})
}

// ResetRequestSubmit issues a reset token and emails the link. The
// response is identical whether or not the address has an account, and
// mail failures are logged, never surfaced — account existence must not
// leak through this form.
func (a *Auth) ResetRequestSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))

	if user, err := a.userStore.FindByEmail(email); err != nil {
		slog.Error("reset request lookup failed", "error", err)
	} else if user != nil {
		token, err := a.resetStore.Create(user.ID)
		if err != nil {
			slog.Error("create reset token failed", "error", err)
		} else {
			a.mail.SendPasswordReset(user.Email, a.baseURL+"/admin/reset/"+token.Token)
		}
	}

	a.renderer.Page(w, r, "reset_request", &render.PageData{
		Title: "Reset Password",
		Data:  map[string]any{"Sent": true},
	})
}

// ResetPasswordPage renders the new-password form for a valid token.
func (a *Auth) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	tokenValue := chi.URLParam(r, "token")

	token, err := a.resetStore.FindValid(tokenValue)
	if err != nil {
		slog.Error("reset token lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if token == nil {
		// Unknown and expired tokens land here alike.
		http.Redirect(w, r, "/admin/reset", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "reset_password", &render.PageData{
		Title: "Choose a New Password",
		Data:  map[string]any{"Token": token.Token},
	})
}

// ResetPasswordSubmit sets the new password and consumes the token.
func (a *Auth) ResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	tokenValue := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")

	token, err := a.resetStore.FindValid(tokenValue)
	if err != nil {
		slog.Error("reset token lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if token == nil {
		http.Redirect(w, r, "/admin/reset", http.StatusSeeOther)
		return
	}

	if len(password) < 8 || password != confirm {
		a.renderer.Page(w, r, "reset_password", &render.PageData{
			Title:   "Choose a New Password",
			Flashes: []render.Flash{{Type: "error", Message: "Passwords must match and be at least 8 characters."}},
			Data:    map[string]any{"Token": token.Token},
		})
		return
	}

	if err := a.userStore.UpdatePassword(token.UserID, password); err != nil {
		slog.Error("update password failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := a.resetStore.Consume(token.ID); err != nil {
		slog.Error("consume reset token failed", "error", err)
	}

	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// sessionOrFail returns the request's session, redirecting to the login
// page and returning nil when there is none.
func sessionOrFail(w http.ResponseWriter, r *http.Request) *session.Data {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return nil
	}
	return sess
}

// qrPNG encodes an otpauth URL as a base64 PNG for inline display.
func qrPNG(otpURL string) (string, error) {
	png, err := qrcode.Encode(otpURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
