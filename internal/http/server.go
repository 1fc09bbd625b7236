package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/metrics"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/middleware/security"
	"saldo/internal/middleware/trace"
	"saldo/internal/services"
)

// Deps are the collaborators of the API server.
type Deps struct {
	Transactions *services.TransactionService
	References   *services.ReferenceService
	Budgets      *services.BudgetService
	Dashboards   *services.DashboardService
	Exports      *services.ExportService
	Recurring    *services.RecurringProcessor
	Metrics      *metrics.Metrics
	Logger       *log.Logger

	Auth               AuthConfig
	RateLimitPerMinute int
	// Ready backs /readyz; nil means always ready.
	Ready func(context.Context) error
	// Now defaults to time.Now; "today" is its UTC date.
	Now func() time.Time
}

type Server struct {
	http.Server
	deps     Deps
	logger   *log.StructuredLogger
	auth     *Authenticator
	limiter  *ratelimit.Limiter
	clientIP *security.ClientIPResolver
	now      func() time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		deps:     deps,
		logger:   log.NewStructuredLogger(deps.Logger),
		auth:     NewAuthenticator(deps.Auth),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		clientIP: security.NewClientIPResolver(),
		now:      now,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	tracer := trace.NewMiddleware(deps.Logger, s.clientIP.ClientIP, deps.Metrics.ObserveHTTP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              addr,
		Handler:           headers.Middleware(tracer.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.deps.Metrics.Handler())

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.protect(h))
	}

	api("GET /api/transactions", s.handleListTransactions)
	api("POST /api/transactions", s.handleCreateTransaction)
	api("GET /api/transactions/{id}", s.handleGetTransaction)
	api("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api("GET /api/categories", s.handleListCategories)
	api("POST /api/categories", s.handleCreateCategory)
	api("DELETE /api/categories/{id}", s.handleDeleteCategory)

	api("GET /api/accounts", s.handleListAccounts)
	api("POST /api/accounts", s.handleCreateAccount)
	api("GET /api/accounts/{id}", s.handleGetAccount)
	api("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	api("POST /api/accounts/{id}/recompute", s.handleRecomputeAccount)

	api("GET /api/goals", s.handleListGoals)
	api("POST /api/goals", s.handleCreateGoal)
	api("GET /api/goals/{id}", s.handleGetGoal)
	api("DELETE /api/goals/{id}", s.handleDeleteGoal)
	api("POST /api/goals/{id}/reconcile", s.handleReconcileGoal)

	api("GET /api/budgets", s.handleListBudgets)
	api("POST /api/budgets", s.handleCreateBudget)
	api("DELETE /api/budgets/{id}", s.handleDeleteBudget)
	api("GET /api/budgets/{id}/evaluation", s.handleEvaluateBudget)
	api("GET /api/budgets/month", s.handleBudgetMonth)
	api("GET /api/budgets/analysis", s.handleBudgetAnalysis)

	api("GET /api/recurring", s.handleListRecurring)
	api("POST /api/recurring", s.handleCreateRecurring)
	api("GET /api/recurring/{id}", s.handleGetRecurring)
	api("DELETE /api/recurring/{id}", s.handleDeleteRecurring)
	api("PUT /api/recurring/{id}/active", s.handleSetRecurringActive)
	api("POST /api/recurring/process", s.handleProcessRecurring)

	api("GET /api/dashboard", s.handleDashboard)
	api("GET /api/overview", s.handleMonthOverview)

	api("GET /api/export.csv", s.handleExportCSV)
	api("POST /api/export/sheets", s.handleExportSheets)
}

// protect authenticates the caller, then rate limits its writes per owner.
func (s *Server) protect(h http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.rateLimitKey, ratelimit.WritesOnly, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldComponent, log.ComponentRateLimit,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, s.clientIP.ClientIP(r))
		TooManyRequestsError().Write(w)
	})(h)
	return s.auth.Middleware(limited)
}

func (s *Server) rateLimitKey(r *http.Request) string {
	if owner, ok := OwnerFromContext(r.Context()); ok {
		return "owner:" + owner
	}
	return "ip:" + s.clientIP.ClientIP(r)
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			slog.WarnContext(ctx, "Readiness check failed", "error", err)
			ServiceUnavailableError("not ready").Write(w)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// owner returns the authenticated owner; every /api route runs behind protect.
func owner(r *http.Request) string {
	o, _ := OwnerFromContext(r.Context())
	return o
}

// fail writes the response for err. Server errors are logged with the
// operation; client errors only at debug.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	resp := DomainError(err)
	ctx := r.Context()
	if resp.statusCode >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Request failed", err, op,
			log.NewFields().WithOwner(owner(r)))
	} else {
		log.FromContext(ctx).DebugContext(ctx, "Request rejected",
			log.FieldOperation, op,
			log.FieldError, err.Error())
	}
	resp.Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}
