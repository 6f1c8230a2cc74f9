package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tallybook/tallybook/internal/service"
	"github.com/tallybook/tallybook/internal/store"
	"github.com/tallybook/tallybook/pkg/httpx"
	"github.com/tallybook/tallybook/pkg/jwtx"
	"github.com/tallybook/tallybook/pkg/slogx"

	"github.com/rs/cors"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	SessionService   *service.SessionService
	PrincipalService *service.PrincipalService
	CategoryService  *service.CategoryService
	ExpenseService   *service.ExpenseService
	UserService      *service.UserService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain. The browser frontend is served from a
	// different origin, so CORS sits on everything.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		cors.AllowAll().Handler,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerCategories()
	r.registerExpenses()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps a handler with token verification and a per-user rate limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Sessions:   r.SessionService,
		Principals: r.PrincipalService,
	}

	// Credential endpoints take the strict per-IP limit: they are the
	// brute-force surface.
	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Refresh/logout carry opaque tokens, not passwords; moderate is enough.
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/me", r.secured(h.HandleMe, httpx.LenientLimit))
}

func (r *Router) registerCategories() {
	h := &CategoriesHandler{Categories: r.CategoryService}

	r.Mux.Handle("POST /api/categories", r.secured(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/categories", r.secured(h.HandleList, httpx.LenientLimit))
}

func (r *Router) registerExpenses() {
	h := &ExpensesHandler{
		Expenses:   r.ExpenseService,
		Principals: r.PrincipalService,
	}

	r.Mux.Handle("POST /api/expenses", r.secured(h.HandleCreate, httpx.LenientLimit))
	r.Mux.Handle("GET /api/expenses", r.secured(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /api/expenses/total", r.secured(h.HandleTotal, httpx.LenientLimit))
	r.Mux.Handle("GET /api/expenses/by-category", r.secured(h.HandleByCategory, httpx.LenientLimit))
	r.Mux.Handle("GET /api/expenses/monthly", r.secured(h.HandleMonthly, httpx.LenientLimit))
	r.Mux.Handle("GET /api/expenses/annual", r.secured(h.HandleAnnual, httpx.LenientLimit))
	r.Mux.Handle("GET /api/expenses/annual/export", r.secured(h.HandleAnnualExport, httpx.ModerateLimit))

	// Admin read variants: same handlers, target account named in the path.
	r.Mux.Handle("GET /api/expenses/admin/{userId}", r.secured(h.HandleList, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/expenses/admin/{userId}/total", r.secured(h.HandleTotal, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/expenses/admin/{userId}/by-category", r.secured(h.HandleByCategory, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/expenses/admin/{userId}/monthly", r.secured(h.HandleMonthly, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/expenses/admin/{userId}/annual", r.secured(h.HandleAnnual, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/expenses/admin/{userId}/annual/export", r.secured(h.HandleAnnualExport, httpx.ModerateLimit))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		Users:      r.UserService,
		Principals: r.PrincipalService,
	}

	r.Mux.Handle("POST /api/users", r.secured(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/users", r.secured(h.HandleList, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
