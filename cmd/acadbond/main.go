package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	acadbond "github.com/acadbond/acadbond"
	"github.com/acadbond/acadbond/middleware/sessionware"
)

// envConfig reads the auth configuration from the environment. TOKEN_SECRET
// has no default on purpose.
type envConfig struct {
	signingKey string
	issuer     string
	audience   []string
	cookieName string
	contextKey string
	ttlHours   int
	dsn        string
	addr       string
}

func loadConfig() envConfig {
	cfg := envConfig{
		signingKey: os.Getenv("TOKEN_SECRET"),
		issuer:     envOr("AUTH_ISSUER", "acadbond"),
		cookieName: envOr("AUTH_COOKIE_NAME", sessionware.DefaultCookieName),
		contextKey: envOr("AUTH_CONTEXT_KEY", sessionware.DefaultContextKey),
		ttlHours:   24,
		dsn:        envOr("DATABASE_DSN", "file:acadbond.db?cache=shared"),
		addr:       envOr("HTTP_ADDR", ":8580"),
	}

	if aud := os.Getenv("AUTH_AUDIENCE"); aud != "" {
		cfg.audience = strings.Split(aud, ",")
	}

	if ttl := os.Getenv("AUTH_TOKEN_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			cfg.ttlHours = hours
		}
	}

	return cfg
}

func envOr(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func (c envConfig) GetSigningKey() string    { return c.signingKey }
func (c envConfig) GetSigningMethod() string { return "HS256" }
func (c envConfig) GetCookieName() string    { return c.cookieName }
func (c envConfig) GetContextKey() string    { return c.contextKey }
func (c envConfig) GetTokenExpiration() int  { return c.ttlHours }
func (c envConfig) GetIssuer() string        { return c.issuer }
func (c envConfig) GetAudience() []string    { return c.audience }

var _ acadbond.Config = envConfig{}

// userTrackerAdapter narrows the Users repository to the slice the identity
// provider needs.
type userTrackerAdapter struct {
	users acadbond.Users
}

func (a userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*acadbond.User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

func (a userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *acadbond.User) error {
	return a.users.TrackAttemptedLogin(ctx, user)
}

func (a userTrackerAdapter) TrackSuccessfulLogin(ctx context.Context, user *acadbond.User) error {
	return a.users.TrackSuccessfulLogin(ctx, user)
}

func main() {
	cfg := loadConfig()
	if cfg.GetSigningKey() == "" {
		log.Fatal("TOKEN_SECRET is required")
	}

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.dsn)
	if err != nil {
		log.Fatal(err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := acadbond.RunMigrations(ctx, db); err != nil {
		log.Fatal(err)
	}

	if err := acadbond.RunFixtures(ctx, db); err != nil {
		log.Fatal(err)
	}

	repo := acadbond.NewRepositoryManager(db)
	repo.MustValidate()

	provider := acadbond.NewUserProvider(userTrackerAdapter{users: repo.Users()})
	authenticator := acadbond.NewAuthenticator(provider, cfg)

	httpAuth, err := acadbond.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		log.Fatal(err)
	}

	validator := acadbond.NewSessionValidator(authenticator.TokenService())

	sessionRequired := sessionware.New(sessionware.Config{
		CookieName:     cfg.GetCookieName(),
		ContextKey:     cfg.GetContextKey(),
		TokenValidator: validator,
	})

	studentOnly := sessionware.New(sessionware.Config{
		CookieName:     cfg.GetCookieName(),
		ContextKey:     cfg.GetContextKey(),
		TokenValidator: validator,
		RequiredRole:   acadbond.RoleStudent,
		RoleChecker:    acadbond.DashboardRoleChecker,
	})

	app := fiber.New(fiber.Config{
		AppName: "acadbond",
	})

	controller := acadbond.NewAPIController(httpAuth, repo)
	controller.RegisterRoutes(app.Group("/api"), sessionRequired, studentOnly)

	go func() {
		if err := app.Listen(cfg.addr); err != nil {
			log.Fatal(err)
		}
	}()

	waitExitSignal()

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
