package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hernanharco/authcenter-backend/internal/application"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	h.completeLogin(w, r, req)
}

// loginForm serves OAuth2 password-form clients such as the API docs page.
func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeValidationError(r.Context(), w, "login_form", err)
		return
	}
	rememberMe, _ := strconv.ParseBool(r.PostForm.Get("remember_me"))
	h.completeLogin(w, r, application.LoginRequest{
		Username:   r.PostForm.Get("username"),
		Password:   r.PostForm.Get("password"),
		RememberMe: rememberMe,
	})
}

func (h *Handler) completeLogin(w http.ResponseWriter, r *http.Request, req application.LoginRequest) {
	req.IPAddress = readIP(r)
	req.UserAgent = r.UserAgent()

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "login", err)
		return
	}
	h.writeSession(w, res)
}

func (h *Handler) googleLogin(w http.ResponseWriter, r *http.Request) {
	var req application.GoogleLoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "google_login", err)
		return
	}
	req.IPAddress = readIP(r)
	req.UserAgent = r.UserAgent()

	res, err := h.service.LoginWithGoogle(r.Context(), req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "google_login", err)
		return
	}
	h.writeSession(w, res)
}

// logout only removes the cookie. A token held elsewhere stays valid until
// it expires.
func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	h.cfg.Cookie.clear(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) writeSession(w http.ResponseWriter, res application.SessionResponse) {
	h.cfg.Cookie.set(w, res.AccessToken, time.Duration(res.ExpiresIn)*time.Second, res.ExpiresAt)
	writeJSON(w, http.StatusOK, res)
}
