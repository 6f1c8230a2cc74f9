package httpx

import "context"

type ctxKey string

const (
	// CtxKeySubject carries the verified access-token subject (the caller's
	// email). Handlers resolve it to a principal explicitly; nothing below
	// the HTTP layer reads it from request context.
	CtxKeySubject ctxKey = "subject"
	CtxKeyClaims  ctxKey = "claims" // full jwtx.Claims, when needed
)

// SubjectFromContext returns the verified token subject, or "" when the
// request never passed the authn middleware.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}
