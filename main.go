package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	app "github.com/rocketscienceinc/tictactoe-minimax/internal"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/config"
)

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := pflag.StringP("config", "c", "config.yml", "path to the config file, empty to read only the environment")
	mode := pflag.StringP("mode", "m", app.ModeServer, "run mode: server or cli")
	pflag.Parse()

	conf := config.MustLoad(*configPath)

	// stdout belongs to the board in cli mode
	logOut := io.Writer(os.Stdout)
	if *mode == app.ModeCLI {
		logOut = os.Stderr
	}

	logger := initLogger(conf, logOut)

	if err := app.RunApp(logger, conf, *mode); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize logger.
func initLogger(conf *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
