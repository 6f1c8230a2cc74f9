package http

import (
	"encoding/json"
	"net/http"

	"github.com/tallybook/tallybook/internal/service"
	"github.com/tallybook/tallybook/pkg/httpx"
)

// UsersHandler serves the admin-only account management endpoints.
type UsersHandler struct {
	Users      *service.UserService
	Principals *service.PrincipalService
}

type createUserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// HandleCreate serves POST /api/users. The response carries the generated
// password exactly once; it is never retrievable again.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := resolvePrincipal(w, r, h.Principals)
	if !ok {
		return
	}
	if err := h.Principals.RequireAdmin(principal); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	u, password, err := h.Users.CreateUser(r.Context(), req.FullName, req.Email, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, createdUserResponse{
		userResponse: newUserResponse(u),
		Password:     password,
	})
}

// HandleList serves GET /api/users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := resolvePrincipal(w, r, h.Principals)
	if !ok {
		return
	}
	if err := h.Principals.RequireAdmin(principal); err != nil {
		writeServiceError(w, r, err)
		return
	}

	list, err := h.Users.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, newUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
