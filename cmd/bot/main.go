package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	goldbotroot "github.com/set-night/goldbot"
	"github.com/set-night/goldbot/internal/config"
	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/fsm"
	"github.com/set-night/goldbot/internal/handler"
	"github.com/set-night/goldbot/internal/middleware"
	"github.com/set-night/goldbot/internal/service"
	"github.com/set-night/goldbot/internal/storage/postgres"
	"github.com/set-night/goldbot/internal/telegram"
	"github.com/set-night/goldbot/internal/web"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; relying on existing environment")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(goldbotroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := postgres.New(pool)

	// The owner identity is always present in the admin set.
	if err := store.UpsertAdmin(ctx, cfg.OwnerID, domain.RoleOwner); err != nil {
		slog.Error("failed to seed owner admin", "error", err)
		os.Exit(1)
	}

	// Initialize services
	userService := service.NewUserService(store)

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.UserLoader(userService, store, cfg),
		),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	gate := telegram.NewMembershipChecker(b)
	sender := telegram.NewSender(b)
	eventLog := telegram.NewEventLogger(b, cfg)

	sponsorService := service.NewSponsorService(store, gate)
	taskService := service.NewTaskService(store, gate)
	withdrawalService := service.NewWithdrawalService(store, cfg.MinWithdraw)
	broadcastService := service.NewBroadcastService(store, sender)

	// Initialize handler
	h := handler.New(handler.Deps{
		Bot:         b,
		Cfg:         cfg,
		Users:       userService,
		Sponsors:    sponsorService,
		Tasks:       taskService,
		Withdrawals: withdrawalService,
		Broadcasts:  broadcastService,
		States:      fsm.NewRegistry(),
		Sender:      sender,
		EventLog:    eventLog,
	})

	// Register all handlers
	h.Register()

	// Free text feeds the conversation state machine.
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
			return
		}
		h.HandleText(ctx, b, update)
	})

	// Liveness and metrics endpoint
	srv := web.New(cfg.Port)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting bot", "username", me.Username, "id", me.ID)
		b.Start(ctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("starting http server", "port", cfg.Port)
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bot stopped gracefully")
}
