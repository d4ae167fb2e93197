package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quierolab/quiero/internal/coach/service"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/httpx"
	"github.com/quierolab/quiero/pkg/jwtx"
	"github.com/quierolab/quiero/pkg/slogx"

	_ "github.com/quierolab/quiero/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/quierolab/quiero/internal/coach/domain"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	frontendBase string
	startTime    time.Time
	logger       *slog.Logger

	store                store.Store
	AuthService          *service.AuthService
	RoutingService       *service.RoutingService
	CoacheeService       *service.CoacheeService
	InvitationService    *service.InvitationService
	PasswordResetService *service.PasswordResetService
	GoalService          *service.GoalService
	ActionService        *service.ActionService
	SettingsService      *service.SettingsService
	UserService          *service.UserService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion, frontendBase string,
	st store.Store,
	logger *slog.Logger,
	corsOrigins ...string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		frontendBase: frontendBase,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(corsOrigins...),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerCoachees()
	r.registerInvitations()
	r.registerPasswordResets()
	r.registerGoals()
	r.registerSettings()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Quiero Coaching Service API
//	@version		0.1.0
//	@description	Coaching practice management: invitation-based coachee onboarding, role-aware
//	@description	session routing, personal goals ("quieros") and their enabling/blocking actions.
//	@description
//	@description				Access tokens are EdDSA-signed JWTs; verify them against the JWKS endpoint.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (password guessing)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Landing resolution is authenticated but role-agnostic.
	r.Mux.Handle("GET /v1/landing",
		httpx.Chain(&LandingHandler{RoutingService: r.RoutingService},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Legacy emailed links hit /login, sometimes with a sub-path, with the
	// token in the query. Both shapes redirect the same way.
	legacyLogin := httpx.Chain(LoginRedirectHandler(r.frontendBase),
		httpx.RateLimitByIP(httpx.PublicLimit),
	)
	r.Mux.Handle("GET /login", legacyLogin)
	r.Mux.Handle("GET /login/{rest...}", legacyLogin)
}

func (r *Router) registerCoachees() {
	h := &CoacheesHandler{CoacheeService: r.CoacheeService}

	coachOnly := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(domain.RoleCoach, domain.RoleAdmin),
	}

	r.Mux.Handle("POST /v1/coachees",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			append(coachOnly, httpx.RateLimitByUser(httpx.ModerateLimit))...,
		),
	)
	r.Mux.Handle("GET /v1/coachees",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			append(coachOnly, httpx.RateLimitByUser(httpx.LenientLimit))...,
		),
	)
	r.Mux.Handle("GET /v1/coachees/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			append(coachOnly, httpx.RateLimitByUser(httpx.LenientLimit))...,
		),
	)
}

func (r *Router) registerInvitations() {
	sendHandler := &InvitationSendHandler{
		InvitationService: r.InvitationService,
		CoacheeService:    r.CoacheeService,
	}

	// POST /invitations/send - moderate rate limit by user (coach operation)
	r.Mux.Handle("POST /v1/invitations/send",
		httpx.Chain(sendHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleCoach, domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /invitations/redeem - strict rate limit by IP (public endpoint,
	// token guessing)
	r.Mux.Handle("POST /v1/invitations/redeem",
		httpx.Chain(&InvitationRedeemHandler{InvitationService: r.InvitationService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPasswordResets() {
	r.Mux.Handle("POST /v1/password-resets",
		httpx.Chain(&PasswordResetRequestHandler{PasswordResetService: r.PasswordResetService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/password-resets/redeem",
		httpx.Chain(&PasswordResetRedeemHandler{PasswordResetService: r.PasswordResetService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerGoals() {
	goals := &GoalsHandler{GoalService: r.GoalService}
	actions := &ActionsHandler{ActionService: r.ActionService}

	authn := httpx.AuthnMiddleware(r.verifier)

	r.Mux.Handle("POST /v1/quieros",
		httpx.Chain(http.HandlerFunc(goals.HandleCreate), authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/quieros",
		httpx.Chain(http.HandlerFunc(goals.HandleList), authn, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("GET /v1/quieros/{id}",
		httpx.Chain(http.HandlerFunc(goals.HandleGet), authn, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("PUT /v1/quieros/{id}",
		httpx.Chain(http.HandlerFunc(goals.HandleUpdate), authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("PUT /v1/quieros/{id}/status",
		httpx.Chain(http.HandlerFunc(goals.HandleSetStatus), authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/quieros/{id}",
		httpx.Chain(http.HandlerFunc(goals.HandleDelete), authn, httpx.RateLimitByUser(httpx.ModerateLimit)))

	r.Mux.Handle("POST /v1/quieros/{id}/actions",
		httpx.Chain(http.HandlerFunc(actions.HandleCreate), authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/quieros/{id}/actions",
		httpx.Chain(http.HandlerFunc(actions.HandleList), authn, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("PUT /v1/actions/{id}",
		httpx.Chain(http.HandlerFunc(actions.HandleUpdate), authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/actions/{id}",
		httpx.Chain(http.HandlerFunc(actions.HandleDelete), authn, httpx.RateLimitByUser(httpx.ModerateLimit)))
}

func (r *Router) registerSettings() {
	h := &SettingsHandler{SettingsService: r.SettingsService}

	adminOnly := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(domain.RoleAdmin),
	}

	r.Mux.Handle("GET /v1/settings",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			append(adminOnly, httpx.RateLimitByUser(httpx.LenientLimit))...,
		),
	)
	r.Mux.Handle("GET /v1/settings/{key}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			append(adminOnly, httpx.RateLimitByUser(httpx.LenientLimit))...,
		),
	)
	r.Mux.Handle("PUT /v1/settings/{key}",
		httpx.Chain(http.HandlerFunc(h.HandlePut),
			append(adminOnly, httpx.RateLimitByUser(httpx.ModerateLimit))...,
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	adminOnly := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(domain.RoleAdmin),
	}

	r.Mux.Handle("GET /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			append(adminOnly, httpx.RateLimitByUser(httpx.LenientLimit))...,
		),
	)
	r.Mux.Handle("POST /v1/users/{id}/roles",
		httpx.Chain(http.HandlerFunc(h.HandleGrantRole),
			append(adminOnly, httpx.RateLimitByUser(httpx.ModerateLimit))...,
		),
	)
	r.Mux.Handle("DELETE /v1/users/{id}/roles",
		httpx.Chain(http.HandlerFunc(h.HandleRevokeRole),
			append(adminOnly, httpx.RateLimitByUser(httpx.ModerateLimit))...,
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
