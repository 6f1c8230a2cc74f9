package http

import (
	"net/http"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/tallybook/tallybook/internal/service"
	"github.com/tallybook/tallybook/pkg/httpx"
)

// resolvePrincipal loads the account behind the verified token subject.
// Writes the error response itself; callers bail out when ok is false.
func resolvePrincipal(
	w http.ResponseWriter,
	r *http.Request,
	principals *service.PrincipalService,
) (domain.User, bool) {
	u, err := principals.Resolve(r.Context(), httpx.SubjectFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return domain.User{}, false
	}
	return u, true
}
