package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/cli"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/config"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/notify"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/render"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-minimax/transport/rest"
)

const (
	ModeServer = "server"
	ModeCLI    = "cli"
)

var (
	ErrAddrNotFound = errors.New("redis address string is empty")
	ErrUnknownMode  = errors.New("unknown mode")
)

type eventSource interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan entity.StateChange, error)
}

// RunApp - runs the application in the given mode.
func RunApp(logger *slog.Logger, conf *config.Config, mode string) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch mode {
	case ModeServer:
		return runServer(ctx, log, logger, conf)
	case ModeCLI:
		return runCLI(ctx, logger, conf)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func runServer(ctx context.Context, log, logger *slog.Logger, conf *config.Config) error {
	var (
		sessionRepo repository.SessionRepository
		listener    notify.Listener
		events      eventSource
	)

	switch conf.Storage {
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		publisher := redis.NewPublisher(logger, redisStorage)

		sessionRepo = repository.NewSessionRepository(redisStorage, conf.Redis.SessionTTL)
		listener = publisher
		events = publisher
	default:
		broadcaster := notify.NewBroadcaster(logger)

		sessionRepo = repository.NewMemorySessionRepository()
		listener = broadcaster
		events = broadcaster
	}

	log.Info("Using storage", "storage", conf.Storage)

	sessionService := service.NewSessionService(
		logger,
		conf.Game.GetHumanMark(),
		sessionRepo,
		service.NewBotService(),
		notify.Multi{notify.NewLogger(logger), listener},
	)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return rest.New(logger, conf.HTTPPort, sessionService, events).Start(ctx)
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info("Application context canceled, shutting down")
		return nil
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

func runCLI(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	sessionService := service.NewSessionService(
		logger,
		conf.Game.GetHumanMark(),
		repository.NewMemorySessionRepository(),
		service.NewBotService(),
		notify.NewLogger(logger),
	)

	renderer := render.New(termenv.NewOutput(os.Stdout))

	return cli.NewPlayer(logger, sessionService, renderer).Run(ctx, os.Stdin, os.Stdout)
}
