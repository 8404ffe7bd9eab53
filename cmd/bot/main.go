package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/attendance-bot/internal/config"
	"github.com/example/attendance-bot/internal/conversation"
	httptransport "github.com/example/attendance-bot/internal/http"
	"github.com/example/attendance-bot/internal/notify"
	"github.com/example/attendance-bot/internal/persistence"
	"github.com/example/attendance-bot/internal/persistence/postgres"
	"github.com/example/attendance-bot/internal/persistence/sqlite"
	"github.com/example/attendance-bot/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	repos, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := repos.close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	idGenerator := uuid.NewString
	now := time.Now

	store := conversation.NewStore()
	gateway := newGatewayAdapter(repos.attendance, repos.leaves, idGenerator, now)
	engine := conversation.NewEngine(store, gateway, logger)

	notifier := notify.NewLineClient(cfg.ChannelAccessToken)

	webhookHandler := httptransport.NewWebhookHandler(engine, notifier, logger)
	userHandler := httptransport.NewUserHandler(repos.users, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Webhook: webhookHandler,
		Users:   userHandler,
		WebhookMiddleware: []func(http.Handler) http.Handler{
			httptransport.VerifySignature(cfg.ChannelSecret, logger),
		},
		AdminMiddleware: []func(http.Handler) http.Handler{
			httptransport.RequireAdminToken(cfg.AdminTokenHash, logger),
		},
	})

	jobs, err := scheduler.New(scheduler.Config{
		SweepSchedule:    cfg.SweepSchedule,
		ReminderSchedule: cfg.ReminderSchedule,
	}, store, repos.users, notifier, logger)
	if err != nil {
		logger.Error("failed to configure scheduler", "error", err)
		os.Exit(1)
	}
	jobs.Start()
	defer jobs.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httptransport.RequestLogger(logger)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("attendance bot listening", "addr", server.Addr, "driver", cfg.DatabaseDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type repositories struct {
	attendance persistence.AttendanceRepository
	leaves     persistence.LeaveRepository
	users      persistence.UserRegistry
	close      func() error
}

func openStorage(ctx context.Context, cfg config.Config) (repositories, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			attendance: repo,
			leaves:     repo,
			users:      repo,
			close:      repo.Close,
		}, nil
	default:
		pool, err := sqlite.Open(ctx, cfg.SQLiteDSN)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			attendance: sqlite.NewAttendanceRepository(pool),
			leaves:     sqlite.NewLeaveRepository(pool),
			users:      sqlite.NewUserRegistry(pool),
			close:      pool.Close,
		}, nil
	}
}

// gatewayAdapter maps completed conversation records onto persistence models.
type gatewayAdapter struct {
	attendance  persistence.AttendanceRepository
	leaves      persistence.LeaveRepository
	idGenerator func() string
	now         func() time.Time
}

func newGatewayAdapter(attendance persistence.AttendanceRepository, leaves persistence.LeaveRepository, idGenerator func() string, now func() time.Time) *gatewayAdapter {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &gatewayAdapter{attendance: attendance, leaves: leaves, idGenerator: idGenerator, now: now}
}

func (a *gatewayAdapter) SaveAttendance(ctx context.Context, userID string, record conversation.Record) error {
	return a.attendance.CreateAttendance(ctx, persistence.AttendanceRecord{
		ID:          a.idGenerator(),
		Name:        record.Name,
		WorkDay:     record.WorkDay,
		WorkStart:   record.WorkStart,
		WorkEnd:     record.WorkEnd,
		BreakStart:  record.BreakStart,
		BreakEnd:    record.BreakEnd,
		WorkSummary: record.WorkSummary,
		Device:      record.Device,
		LineID:      userID,
		CreatedAt:   a.now().UTC(),
	})
}

func (a *gatewayAdapter) SaveLeave(ctx context.Context, userID string, record conversation.Record) error {
	return a.leaves.CreateLeave(ctx, persistence.LeaveRecord{
		ID:        a.idGenerator(),
		LeaveDate: record.LeaveDate,
		LeaveType: record.LeaveType,
		LineID:    userID,
		CreatedAt: a.now().UTC(),
	})
}
