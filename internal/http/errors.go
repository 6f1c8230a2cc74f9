package http

import (
	"errors"
	"net/http"

	"github.com/tallybook/tallybook/internal/service"
	"github.com/tallybook/tallybook/pkg/httpx"
	"github.com/tallybook/tallybook/pkg/slogx"
)

// writeServiceError maps service sentinels onto HTTP statuses with a uniform
// JSON body. Anything unmatched is a 500 and gets logged; the client only
// ever sees "server_error" for those.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", "One or more fields are missing or malformed")
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", "An account with this email already exists")
	case errors.Is(err, service.ErrDuplicateCategory):
		writeError(w, http.StatusConflict, "duplicate_category", "A category with this name already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Email or password is incorrect")
	case errors.Is(err, service.ErrInvalidRefresh):
		writeError(w, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token is invalid, revoked, or expired")
	case errors.Is(err, service.ErrPrincipalNotFound):
		writeError(w, http.StatusUnauthorized, "unknown_principal", "Token subject no longer matches an account")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "You do not have access to this resource")
	case errors.Is(err, service.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "category_not_found", "Category does not exist")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Something went wrong")
	}
}

func writeError(w http.ResponseWriter, code int, errCode, desc string) {
	httpx.WriteJSON(w, code, ErrorResponse{
		Error:            errCode,
		ErrorDescription: desc,
	})
}
