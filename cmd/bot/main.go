package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/tg-session-bot/authclient"
	"github.com/jrsteele09/tg-session-bot/authclient/mtproto"
	"github.com/jrsteele09/tg-session-bot/bot"
	"github.com/jrsteele09/tg-session-bot/internal/config"
	"github.com/jrsteele09/tg-session-bot/internal/health"
	"github.com/jrsteele09/tg-session-bot/loginflow"
	"github.com/jrsteele09/tg-session-bot/loginflow/sessionstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running bot: %s\n", err)
	}
	log.Printf("Bot stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	displayAppName(cfg.AppName)
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	device, ok := mtproto.DevicePreset(cfg.DevicePreset)
	if !ok {
		logger.Warn().Str("preset", cfg.DevicePreset).Msg("unknown device preset, using default")
		device = mtproto.DefaultDevice()
	}

	store := sessionstore.New()
	orchestrator, err := loginflow.New(store, loginflow.Clients{
		authclient.BackendPyrogram: mtproto.NewPyrogramClient(mtproto.WithDevice(device)),
		authclient.BackendTelethon: mtproto.NewTelethonClient(mtproto.WithDevice(device)),
	},
		loginflow.WithLogger(logger),
		loginflow.WithMaxAttempts(cfg.MaxAttempts),
	)
	if err != nil {
		return fmt.Errorf("loginflow.New: %w", err)
	}

	sessionBot, err := bot.New(cfg.BotToken, orchestrator,
		bot.WithLogger(logger),
		bot.WithMiniAppURL(cfg.MiniAppURL),
	)
	if err != nil {
		return fmt.Errorf("bot.New: %w", err)
	}

	healthServer := health.NewServer(cfg.ListenAddr())
	go listenAndServe(healthServer)
	go store.RunSweeper(ctx, cfg.SweepInterval, cfg.IdleTimeout, orchestrator.ReleaseSession)

	err = sessionBot.Run(ctx)
	if shutdownErr := shutdown(healthServer); shutdownErr != nil {
		logger.Warn().Err(shutdownErr).Msg("health server shutdown")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot.Run: %w", err)
	}
	return nil
}

func listenAndServe(server *http.Server) {
	log.Printf("Health server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("health server: %s\n", err)
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.Env == "DEV" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

func displayAppName(appName string) {
	myFigure := figure.NewFigure(appName, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
