// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/betalift/betalift/internal/app/features/accounts"
	feedbackfeature "github.com/betalift/betalift/internal/app/features/feedback"
	healthfeature "github.com/betalift/betalift/internal/app/features/health"
	membersfeature "github.com/betalift/betalift/internal/app/features/members"
	notificationsfeature "github.com/betalift/betalift/internal/app/features/notifications"
	projectsfeature "github.com/betalift/betalift/internal/app/features/projects"
	notificationstore "github.com/betalift/betalift/internal/app/store/notifications"
	"github.com/betalift/betalift/internal/app/system/auth"
	feedbackflow "github.com/betalift/betalift/internal/app/workflow/feedback"
	"github.com/betalift/betalift/internal/app/workflow/membership"
	"github.com/betalift/betalift/internal/app/workflow/notify"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. BetaLift builds the workflow engines
// (membership, feedback) over the shared notification dispatcher, then
// mounts the JSON feature routers on top of them.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Session cookies; secure in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Notification dispatcher. No delivery hook is configured yet; stored
	// notifications are served through the inbox endpoints.
	dispatcher := notify.New(notificationstore.New(db), nil, logger)

	membershipEngine := membership.New(db, dispatcher, logger)
	feedbackEngine := feedbackflow.New(db, dispatcher, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the session user into context if signed
	// in, making identity available to all handlers via authz helpers.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Accounts: signup/login are public, profile requires a session.
	accountsHandler := accountsfeature.NewHandler(db, sessionMgr, logger)
	r.Mount("/", accountsfeature.Routes(accountsHandler))

	projectsHandler := projectsfeature.NewHandler(db, logger)
	membersHandler := membersfeature.NewHandler(db, membershipEngine, logger)
	feedbackHandler := feedbackfeature.NewHandler(db, feedbackEngine, logger)
	notificationsHandler := notificationsfeature.NewHandler(db, logger)

	// Everything below requires a signed-in session.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		r.Mount("/projects", projectsfeature.Routes(projectsHandler,
			membersfeature.MemberRoutes(membersHandler),
			membersfeature.JoinRequestRoutes(membersHandler),
			feedbackfeature.ProjectRoutes(feedbackHandler)))
		r.Mount("/join-requests", membersfeature.ReviewRoutes(membersHandler))
		r.Mount("/feedback", feedbackfeature.ItemRoutes(feedbackHandler))
		r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))
	})

	return r, nil
}
