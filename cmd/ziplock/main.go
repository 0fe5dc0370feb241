package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/karimrkhoury/ziplock/internal/client/cli"
	"github.com/karimrkhoury/ziplock/internal/client/config"
	"github.com/karimrkhoury/ziplock/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ziplock: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx, commandArgs()); err != nil {
		fmt.Fprintf(os.Stderr, "ziplock: %v\n", err)
		os.Exit(1)
	}
}

// commandArgs strips the global config flags so the subcommand sees only
// its own arguments. The inverse of flagx.FilterArgs.
func commandArgs() []string {
	global := map[string]bool{"-s": true, "-d": true, "-c": true, "-config": true}

	args := os.Args[1:]
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if name, _, found := strings.Cut(arg, "="); found && global[name] {
			continue
		}
		if global[arg] {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		rest = append(rest, arg)
	}
	return rest
}
