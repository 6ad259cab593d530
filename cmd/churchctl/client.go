package main

import (
	"os"

	"github.com/jrsteele09/churchai-session/apiclient"
	"github.com/jrsteele09/churchai-session/credentials"
	"github.com/jrsteele09/churchai-session/internal/config"
	"github.com/jrsteele09/churchai-session/internal/logging"
	"github.com/jrsteele09/churchai-session/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// sessionExpiredNotice is printed when the stored session can no longer be refreshed
const sessionExpiredNotice = "Your session has expired. Run \"churchctl login\" to sign in again."

// environment is everything a command needs to talk to the API as the stored user
type environment struct {
	config     *config.ClientConfig
	store      credentials.Store
	storePath  string
	client     *apiclient.Client
	manager    *session.Manager
	closeStore func() error
}

func (e *environment) Close() {
	e.manager.Close()
	if e.closeStore != nil {
		if err := e.closeStore(); err != nil {
			log.Warn().Err(err).Str("path", e.storePath).Msg("closing credential store")
		}
	}
}

func getConfig(c *cli.Context) (*config.ClientConfig, error) {
	cfg, err := config.LoadClientConfig(c.String(flagConfig))
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving configuration")
	}
	return cfg, nil
}

// openStore opens the credential backend named by the profile. The returned path is empty for
// the memory backend.
func openStore(cfg *config.ClientConfig) (credentials.Store, string, func() error, error) {
	if cfg.Store == config.StoreMemory {
		return credentials.NewMemoryStore(), "", nil, nil
	}

	path, err := cfg.ResolveCredentialPath()
	if err != nil {
		return nil, "", nil, errors.Wrap(err, "error resolving credential path")
	}

	switch cfg.Store {
	case config.StoreSQLite:
		store, err := credentials.NewSQLiteStore(path)
		if err != nil {
			return nil, "", nil, errors.Wrapf(err, "error opening credential database %s", path)
		}
		return store, path, store.Close, nil
	default:
		store, err := credentials.NewFileStore(path)
		if err != nil {
			return nil, "", nil, errors.Wrapf(err, "error opening credential file %s", path)
		}
		return store, store.Path(), nil, nil
	}
}

func getEnvironment(c *cli.Context) (*environment, error) {
	cfg, err := getConfig(c)
	if err != nil {
		return nil, err
	}
	logging.Setup("", cfg.LogLevel, os.Stderr)

	store, path, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	navigator := apiclient.NewLocationNavigator("/")
	navigator.OnNavigate = func(location string) {
		if location == apiclient.LoginLocation {
			warnColor.Fprintln(os.Stderr, sessionExpiredNotice)
		}
	}

	client, err := apiclient.New(
		cfg.APIURL,
		store,
		apiclient.WithTimeout(cfg.TimeoutDuration()),
		apiclient.WithNavigator(navigator),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error getting churchai client")
	}

	manager, err := session.New(client)
	if err != nil {
		return nil, errors.Wrap(err, "error starting session")
	}

	return &environment{
		config:     cfg,
		store:      store,
		storePath:  path,
		client:     client,
		manager:    manager,
		closeStore: closeStore,
	}, nil
}
