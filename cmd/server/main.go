package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/churchai-session/auth"
	churchrepofakes "github.com/jrsteele09/churchai-session/churches/repofakes"
	"github.com/jrsteele09/churchai-session/internal/config"
	"github.com/jrsteele09/churchai-session/internal/logging"
	"github.com/jrsteele09/churchai-session/server"
	fakeuserrepo "github.com/jrsteele09/churchai-session/users/repofake"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel(), os.Stderr)
	displayAppname(c.GetAppName())

	if c.GetJWTSecret() == config.DevJWTSecret && c.GetEnv() != "DEV" {
		return errors.New("SECRET_KEY must be set outside DEV")
	}

	// In-memory repositories; records are lost on restart
	repos := auth.Repos{
		Users:    fakeuserrepo.NewFakeUserRepo(),
		Churches: churchrepofakes.NewFakeChurchRepo(),
	}
	handler, err := server.New(c, repos)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("base_url", c.GetBaseURL()).Str("env", c.GetEnv()).Msg("starting churchai auth api")
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
