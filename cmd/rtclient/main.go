// Package main is a small interactive client for the admin realtime gateway.
// It connects, subscribes to the given rooms, and prints lifecycle events and
// inbound messages until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adminsuite/realtime-client/internal/config"
	"github.com/adminsuite/realtime-client/pkg/realtime"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to config file")
	serverURL  = flag.String("url", "", "Gateway URL (overrides config)")
	authToken  = flag.String("token", "", "Auth token (overrides config)")
	roomList   = flag.String("rooms", "", "Comma-separated rooms to join on connect")
	logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flag overrides
	if *serverURL != "" {
		cfg.URL = *serverURL
	}
	if *authToken != "" {
		cfg.AuthToken = *authToken
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var logHandler slog.Handler
	if cfg.LogFormat == "text" {
		logHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		logHandler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("Realtime client starting",
		"config", *configPath,
		"url", cfg.URL,
		"log_level", cfg.LogLevel,
	)

	// Ensure the diagnostics directory exists
	if cfg.DiagnosticsPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DiagnosticsPath), 0700); err != nil {
			logger.Error("Failed to create diagnostics directory", "error", err)
			os.Exit(1)
		}
	}

	client, err := realtime.NewClient(cfg, realtime.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to create client", "error", err)
		os.Exit(1)
	}

	client.On(realtime.EventConnected, func(ev realtime.Event) {
		logger.Info("Connected to gateway")
	})
	client.On(realtime.EventReconnecting, func(ev realtime.Event) {
		logger.Info("Reconnecting", "attempt", ev.Attempt, "delay", ev.Delay)
	})
	client.On(realtime.EventReconnected, func(ev realtime.Event) {
		logger.Info("Reconnected to gateway")
	})
	client.On(realtime.EventReconnectFailed, func(ev realtime.Event) {
		logger.Error("Gave up reconnecting", "attempts", ev.Attempt)
	})
	client.On(realtime.EventDisconnected, func(ev realtime.Event) {
		if ev.Err != nil {
			logger.Warn("Connection lost", "error", ev.Err)
		}
	})
	client.On(realtime.EventServerError, func(ev realtime.Event) {
		logger.Warn("Server error", "error", ev.Err)
	})
	client.On(realtime.EventRoomMessage, func(ev realtime.Event) {
		fmt.Printf("[%s] %s\n", ev.Room, string(ev.Data))
	})

	ctx := context.Background()
	if *roomList != "" {
		client.Once(realtime.EventConnected, func(realtime.Event) {
			for _, room := range strings.Split(*roomList, ",") {
				room = strings.TrimSpace(room)
				if room == "" {
					continue
				}
				if err := client.JoinRoom(ctx, room); err != nil {
					logger.Warn("Failed to join room", "room", room, "error", err)
				}
			}
		})
	}

	if !cfg.AutoConnect {
		if err := client.Connect(ctx); err != nil {
			// The reconnect cycle keeps running in the background.
			logger.Warn("Initial connection failed", "error", err)
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", "signal", sig.String())

	snap := client.Metrics()
	logger.Info("Session stats",
		"messages_sent", snap.MessagesSent,
		"messages_received", snap.MessagesReceived,
		"uptime", snap.Uptime,
	)

	if err := client.Close(); err != nil {
		logger.Error("Failed to close client", "error", err)
		os.Exit(1)
	}
}
