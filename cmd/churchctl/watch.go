package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/churchai-session/credentials"
	"github.com/jrsteele09/churchai-session/session"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func watch(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("watch requires no arguments")
	}

	env, err := getEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if env.storePath == "" {
		return errors.Errorf("the %s credential store is private to this process and cannot be watched", env.config.Store)
	}

	unsubscribe := env.manager.Subscribe(printState)
	defer unsubscribe()
	env.manager.Resync()

	watcher, err := credentials.NewWatcher(env.storePath, c.Duration(flagDebounce), env.manager.Resync)
	if err != nil {
		return errors.Wrap(err, "error watching credentials")
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", env.storePath)
	watcher.Run(ctx)
	return nil
}

func printState(state session.State) {
	if state.IsLoading {
		return
	}
	stamp := time.Now().Format(time.Kitchen)
	if !state.IsAuthenticated() {
		warnColor.Printf("%s signed out\n", stamp)
		return
	}
	successColor.Printf("%s signed in as %s (%s)\n", stamp, state.User.Email, state.User.Role)
}
