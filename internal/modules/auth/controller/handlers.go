package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"rainwatch-server/internal/modules/auth/repository"
	"rainwatch-server/internal/modules/auth/session"
	"rainwatch-server/internal/modules/auth/views"
	"rainwatch-server/internal/utils"
)

func (c *authControllerImpl) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	c.renderLogin(w, http.StatusOK, views.LoginData{})
}

func (c *authControllerImpl) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderLogin(w, http.StatusBadRequest, views.LoginData{Error: "Invalid form submission"})
		return
	}
	username := r.PostFormValue("username")
	plaintext := r.PostFormValue("password")

	user, err := c.users.GetByUsername(username)
	if err != nil {
		slog.Error("login: user lookup failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	// A missing user and a wrong password produce the same message; a
	// malformed stored hash simply fails verification.
	if user == nil || !c.hasher.Verify(plaintext, user.PasswordHash) {
		c.renderLogin(w, http.StatusBadRequest, views.LoginData{Error: "Invalid username or password"})
		return
	}

	tok, err := c.tokens.Issue(user.Username)
	if err != nil {
		slog.Error("login: token issue failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	session.SetCookie(w, tok, c.tokens.TTL(), c.secureCookies)
	utils.Redirect(w, r, "/")
}

func (c *authControllerImpl) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	c.renderSignup(w, http.StatusOK, views.SignupData{})
}

func (c *authControllerImpl) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderSignup(w, http.StatusBadRequest, views.SignupData{Error: "Invalid form submission"})
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	plaintext := r.PostFormValue("password")
	if username == "" || plaintext == "" {
		c.renderSignup(w, http.StatusBadRequest, views.SignupData{Error: "Username and password are required"})
		return
	}

	hash, err := c.hasher.Hash(plaintext)
	if err != nil {
		slog.Error("signup: password hash failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to sign up")
		return
	}

	if _, err := c.users.Create(username, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			c.renderSignup(w, http.StatusBadRequest, views.SignupData{Error: "Username already registered"})
			return
		}
		slog.Error("signup: user create failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to sign up")
		return
	}

	utils.Redirect(w, r, "/login")
}

func (c *authControllerImpl) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, c.secureCookies)
	utils.Redirect(w, r, "/")
}

func (c *authControllerImpl) renderLogin(w http.ResponseWriter, status int, data views.LoginData) {
	var buf bytes.Buffer
	if err := views.RenderLogin(&buf, data); err != nil {
		slog.Error("login template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (c *authControllerImpl) renderSignup(w http.ResponseWriter, status int, data views.SignupData) {
	var buf bytes.Buffer
	if err := views.RenderSignup(&buf, data); err != nil {
		slog.Error("signup template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
