package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/application"
	"github.com/hernanharco/authcenter-backend/internal/domain"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := accountFromContext(r.Context())

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		h.writeMappedError(r.Context(), w, "list_users", err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeMappedError(r.Context(), w, "list_users", err)
		return
	}

	users, err := h.service.ListAccounts(r.Context(), actor, application.ListAccountsRequest{
		Skip:   skip,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
	})
	if err != nil {
		h.writeMappedError(r.Context(), w, "list_users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := accountFromContext(r.Context())

	var req application.CreateAccountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_user", err)
		return
	}
	created, err := h.service.CreateAccount(r.Context(), actor, req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "create_user", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor, _ := accountFromContext(r.Context())
	h.writeAccount(w, r, "get_me", actor, actor.ID)
}

func (h *Handler) myLoginHistory(w http.ResponseWriter, r *http.Request) {
	actor, _ := accountFromContext(r.Context())

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeMappedError(r.Context(), w, "login_history", err)
		return
	}
	history, err := h.service.LoginHistory(r.Context(), actor, actor.ID, limit)
	if err != nil {
		h.writeMappedError(r.Context(), w, "login_history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := accountFromContext(r.Context())
	id, err := accountIDParam(r)
	if err != nil {
		h.writeMappedError(r.Context(), w, "get_user", err)
		return
	}
	h.writeAccount(w, r, "get_user", actor, id)
}

func (h *Handler) writeAccount(w http.ResponseWriter, r *http.Request, operation string, actor domain.Account, id uuid.UUID) {
	account, err := h.service.GetAccount(r.Context(), actor, id)
	if err != nil {
		h.writeMappedError(r.Context(), w, operation, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := accountFromContext(r.Context())
	id, err := accountIDParam(r)
	if err != nil {
		h.writeMappedError(r.Context(), w, "update_user", err)
		return
	}

	var patch application.UpdateAccountRequest
	if err := decodeBody(w, r, &patch); err != nil {
		writeValidationError(r.Context(), w, "update_user", err)
		return
	}
	updated, err := h.service.UpdateAccount(r.Context(), actor, id, patch)
	if err != nil {
		h.writeMappedError(r.Context(), w, "update_user", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := accountFromContext(r.Context())
	id, err := accountIDParam(r)
	if err != nil {
		h.writeMappedError(r.Context(), w, "delete_user", err)
		return
	}
	if err := h.service.DeactivateAccount(r.Context(), actor, id); err != nil {
		h.writeMappedError(r.Context(), w, "delete_user", err)
		return
	}
	writeMessage(w, http.StatusOK, "User deactivated successfully")
}

func (h *Handler) setUserPassword(w http.ResponseWriter, r *http.Request) {
	actor, _ := accountFromContext(r.Context())
	id, err := accountIDParam(r)
	if err != nil {
		h.writeMappedError(r.Context(), w, "set_user_password", err)
		return
	}

	var req application.SetPasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_user_password", err)
		return
	}
	if err := h.service.SetPassword(r.Context(), actor, id, req); err != nil {
		h.writeMappedError(r.Context(), w, "set_user_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated successfully")
}
