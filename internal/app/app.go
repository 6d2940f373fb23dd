package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "vectora/docs"
	"vectora/internal/config"
	"vectora/internal/handlers"
	"vectora/internal/middleware"
	"vectora/internal/migrate"
	"vectora/internal/pdf"
	"vectora/internal/repositories"
	"vectora/internal/routes"
	"vectora/internal/security"
	"vectora/internal/services"
	"vectora/internal/telegram"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// App owns the process-wide dependencies shared by the API and the bot.
type App struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB

	userRepo repositories.UserRepository
	taskRepo repositories.TaskRepository

	gateway  *services.AuthGateway
	users    services.UserService
	tasks    services.TaskService
	stats    services.StatsService
	registry *prometheus.Registry
	metrics  *middleware.Metrics
}

// NewLogger builds the production logger, or the development one when debug is on.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// New opens the database and builds every service. Close releases it.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := migrate.Up(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	a, err := build(cfg, log, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg *config.Config, log *zap.Logger, db *sql.DB) (*App, error) {
	hasher, err := security.NewPasswordHasher(security.DefaultArgon2Params)
	if err != nil {
		return nil, err
	}
	tokens, err := security.NewTokenService(security.TokenConfig{
		Secret:     []byte(cfg.Auth.SecretKey),
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		return nil, err
	}
	verifier, err := telegram.NewVerifier(cfg.Telegram.BotToken, telegram.WithMaxAge(cfg.Telegram.InitDataMaxAge))
	if err != nil {
		return nil, err
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	statsRepo := repositories.NewStatsRepository(db)

	// === Services ===
	gateway := services.NewAuthGateway(userRepo, tokens, verifier, hasher, services.AuthGatewayConfig{
		AutoProvision: cfg.Telegram.AutoProvision,
		DevBypass:     cfg.Debug,
		DevUserID:     cfg.Auth.DevUserID,
	}, log.Named("auth"))
	if gateway.DevBypassActive() {
		log.Warn("development auth bypass is active", zap.Int64("dev_user_id", cfg.Auth.DevUserID))
	}

	var emailService services.EmailService
	if cfg.Email.Enabled() {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.AppName,
		)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &App{
		cfg:      cfg,
		log:      log,
		db:       db,
		userRepo: userRepo,
		taskRepo: taskRepo,
		gateway:  gateway,
		users:    services.NewUserService(userRepo, hasher, tokens, gateway, emailService, log.Named("users")),
		tasks:    services.NewTaskService(taskRepo),
		stats:    services.NewStatsService(statsRepo, time.Now),
		registry: registry,
		metrics:  middleware.NewMetrics(registry),
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Router assembles the gin engine. bot may be nil when updates arrive by polling.
func (a *App) Router(bot handlers.UpdateHandler) *gin.Engine {
	if !a.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.Recovery(a.log),
		middleware.RequestLogger(a.log.Named("http")),
		a.metrics.Instrument(),
		middleware.SecureHeaders(),
		middleware.CORS(a.cfg.Server.CORSOrigins),
		middleware.MaxBodyBytes(maxBodyBytes),
	)

	var integrations *handlers.IntegrationsHandler
	if bot != nil {
		integrations = handlers.NewIntegrationsHandler(bot, a.cfg.Telegram.WebhookSecret, a.log.Named("webhook"))
	}

	return routes.SetupRoutes(r, routes.Deps{
		Auth:         handlers.NewAuthHandler(a.users, a.log),
		Tasks:        handlers.NewTaskHandler(a.tasks, pdf.NewTaskListGenerator(a.cfg.PDFFontPath), a.log),
		Stats:        handlers.NewStatsHandler(a.stats, a.log),
		Users:        handlers.NewUserHandler(a.users, a.log),
		Integrations: integrations,
		Resolver:     a.gateway,
		Metrics:      a.metrics,
		RateLimiter:  middleware.NewRateLimiter(a.cfg.Server.RateLimitPerMinute),
		Log:          a.log,
	})
}

func (a *App) newBot() (*telegram.Bot, *tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(a.cfg.Telegram.BotToken)
	if err != nil {
		return nil, nil, fmt.Errorf("telegram: %w", err)
	}
	api.Debug = false
	a.log.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return telegram.NewBot(api, a.userRepo, a.tasks, a.cfg.Telegram.WebAppURL, a.log.Named("bot")), api, nil
}

// RunAPI serves HTTP until ctx is cancelled, then drains in-flight requests.
// With a webhook URL configured the API also receives bot updates.
func (a *App) RunAPI(ctx context.Context) error {
	var updates handlers.UpdateHandler
	if a.cfg.Telegram.WebhookURL != "" {
		bot, api, err := a.newBot()
		if err != nil {
			return err
		}
		if err := telegram.SetWebhook(api, a.cfg.Telegram.WebhookURL, a.cfg.Telegram.WebhookSecret); err != nil {
			return err
		}
		if err := bot.Commands(); err != nil {
			a.log.Warn("set bot commands", zap.Error(err))
		}
		updates = bot
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Router(updates),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// RunBot runs the reminder scheduler and, unless a webhook is configured, long polling.
func (a *App) RunBot(ctx context.Context) error {
	bot, api, err := a.newBot()
	if err != nil {
		return err
	}
	if err := bot.Commands(); err != nil {
		a.log.Warn("set bot commands", zap.Error(err))
	}

	scheduler := services.NewReminderScheduler(a.taskRepo, bot, a.cfg.Telegram.ReminderEvery, a.log.Named("reminders"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		scheduler.Run(ctx)
	}()

	if a.cfg.Telegram.WebhookURL == "" {
		if err := telegram.DeleteWebhook(api); err != nil {
			a.log.Warn("delete webhook", zap.Error(err))
		}
		a.log.Info("polling for updates")
		bot.Poll(ctx, api)
	}

	<-done
	return nil
}
