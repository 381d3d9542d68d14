package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/broadcast"
	"github.com/sharetube/watchparty/internal/controller"
	"github.com/sharetube/watchparty/internal/registry"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/connection/inmemory"
	roomRedis "github.com/sharetube/watchparty/internal/repository/room/redis"
	"github.com/sharetube/watchparty/internal/service"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/redisclient"
)

const (
	maxMessageSize  = 4096
	shutdownTimeout = 30 * time.Second
)

type AppConfig struct {
	Secret        string        `json:"-"`
	Host          string        `json:"host"`
	Port          int           `json:"port"`
	LogLevel      string        `json:"log_level"`
	RedisHost     string        `json:"redis_host"`
	RedisPort     int           `json:"redis_port"`
	RedisPassword string        `json:"-"`
	SendBuffer    int           `json:"send_buffer"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	PongWait      time.Duration `json:"pong_wait"`
	CodeAttempts  int           `json:"code_attempts"`
}

func (cfg *AppConfig) Validate() error {
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&cfg.Host, validation.Required, is.Host),
		validation.Field(&cfg.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&cfg.LogLevel, validation.Required, validation.By(isLogLevel)),
		validation.Field(&cfg.RedisHost, validation.Required, is.Host),
		validation.Field(&cfg.RedisPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&cfg.SendBuffer, validation.Required, validation.Min(1)),
		validation.Field(&cfg.WriteTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&cfg.PongWait, validation.Required, validation.Min(time.Second)),
		validation.Field(&cfg.CodeAttempts, validation.Required, validation.Min(1)),
	)
}

func isLogLevel(value any) error {
	s, _ := value.(string)

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return errors.New("must be one of DEBUG, INFO, WARN, ERROR")
	}

	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// newHandler wires the whole application on top of rc.
func newHandler(cfg *AppConfig, rc *redis.Client, logger *slog.Logger) http.Handler {
	roomRepo := roomRedis.NewRepo(rc, logger)
	roomRegistry := registry.New(roomRepo, &registry.Config{
		CodeAttempts: cfg.CodeAttempts,
	}, logger)
	connRepo := inmemory.NewRepo(logger)
	publisher := broadcast.New(connRepo, logger)
	roomService := service.New(roomRegistry, roomRepo, connRepo, publisher, &service.Config{
		Secret: cfg.Secret,
	}, logger)

	controller := controller.New(roomService, publisher, &connection.Config{
		SendBuffer:     cfg.SendBuffer,
		WriteTimeout:   cfg.WriteTimeout,
		MaxMessageSize: maxMessageSize,
		PongWait:       cfg.PongWait,
	}, logger)

	return controller.GetMux()
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: newHandler(cfg, rc, logger),
	}

	// graceful shutdown
	serverCtx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	shutdownErr := make(chan error, 1)
	go func() {
		<-serverCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(serverCtx), shutdownTimeout)
		defer cancel()

		logger.InfoContext(shutdownCtx, "shutting down server")
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
