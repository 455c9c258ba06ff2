// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level and format, request limits). AppConfig is everything
// specific to BetaLift: the MongoDB connection, session cookies, and the
// base URL used when composing notification links.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: betalift-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL for links embedded in notifications
	BaseURL string // e.g., "https://betalift.app" or "http://localhost:3000"
}
