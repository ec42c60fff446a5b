package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ridebook/go-ride-client/auth"
	"github.com/ridebook/go-ride-client/backend"
	"github.com/ridebook/go-ride-client/bridge"
	"github.com/ridebook/go-ride-client/fireauth"
	"github.com/ridebook/go-ride-client/internal/config"
	"github.com/ridebook/go-ride-client/notify"
	"github.com/ridebook/go-ride-client/sessions"
	"github.com/ridebook/go-ride-client/storage/badgerkv"
	"github.com/ridebook/go-ride-client/storage/memkv"
	"github.com/ridebook/go-ride-client/users"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ridecli",
	Short: "Headless client for the ride-booking backend",
	Long: `ridecli drives the ride-booking client session core from the command line:
phone-OTP login, session inspection, and the local notification log.`,
	SilenceUsage: true,
}

func init() {
	// Environment files are optional; absence is not an error.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "ridecli.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// app bundles the wired client core for one CLI invocation.
type app struct {
	cfg         *config.Config
	logger      zerolog.Logger
	durable     *badgerkv.Tier
	store       *sessions.Store
	client      *backend.Client
	bus         *bridge.Bus
	cache       *notify.Cache
	ingestor    *notify.Ingestor
	pushService *notify.Service
	coordinator *auth.Coordinator
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	var durable *badgerkv.Tier
	if cfg.Storage.Path != "" {
		durable, err = badgerkv.Open(cfg.Storage.Path, logger)
	} else {
		durable, err = badgerkv.OpenInMemory(logger)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open durable storage tier")
	}

	store := sessions.NewStore(memkv.New(), durable)
	client := backend.NewClient(cfg.Backend.BaseURL, store, logger)
	bus := bridge.New(logger)
	cache := notify.NewCache(durable, bus, logger)
	ingestor := notify.NewIngestor(cache, bus, logger)

	// No push-messaging provider exists in a headless process; the service
	// is wired for stored-token forwarding only.
	pushService := notify.NewService(nil, store, client, ingestor, cfg.Push.VAPIDKey, logger)

	verifier := fireauth.NewVerifier(
		cfg.Verifier.APIKey,
		fireauth.StaticChallenge(cfg.Verifier.ChallengeToken),
		logger,
	)

	coordinator, err := auth.NewCoordinator(
		auth.Deps{
			Verifier:   verifier,
			Sessions:   store,
			Exchanger:  client,
			Reconciler: users.NewReconciler(client, logger),
			Push:       pushService,
		},
		auth.Credential{Key: cfg.Credential.Key, Password: cfg.Credential.Password},
		logger,
		auth.WithContainerID(cfg.Verifier.ContainerID),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		durable:     durable,
		store:       store,
		client:      client,
		bus:         bus,
		cache:       cache,
		ingestor:    ingestor,
		pushService: pushService,
		coordinator: coordinator,
	}, nil
}

func (a *app) close() {
	a.pushService.Close()
	if err := a.bus.Close(); err != nil {
		a.logger.Debug().Err(err).Msg("bus close failed")
	}
	if err := a.durable.Close(); err != nil {
		a.logger.Debug().Err(err).Msg("storage close failed")
	}
}
