// cmd/minios/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"
	"golang.org/x/term"

	"github.com/rusenback/minios/internal/config"
	"github.com/rusenback/minios/internal/shell"
)

func main() {
	cfg := config.Load()

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Printf("❌ Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	// Ctrl+C at the prompt should not kill the session
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for range interrupts {
			if interactive {
				fmt.Println("\nUse 'exit' to quit.")
			}
		}
	}()

	sess, err := shell.NewSession(ctx, cfg,
		shell.WithIO(os.Stdin, os.Stdout),
		shell.WithLogger(logger),
		shell.WithInteractive(interactive),
	)
	if err != nil {
		fmt.Printf("❌ Failed to boot MiniOS: %v\n", err)
		os.Exit(1)
	}

	runErr := sess.Run(ctx)
	if err := sess.Close(); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
	if runErr != nil && ctx.Err() == nil {
		fmt.Printf("Error running shell: %v\n", runErr)
		os.Exit(1)
	}
}

// newLogger writes lifecycle logs to the configured file, or stderr when unset
func newLogger(cfg *config.Config) (*log.Logger, func(), error) {
	logger := log.New("minios")
	logger.SetLevel(cfg.LogLevel)
	logger.SetHeader(`${time_rfc3339} ${level} ${prefix}`)

	if cfg.LogFile == "" {
		logger.SetOutput(os.Stderr)
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }, nil
}
