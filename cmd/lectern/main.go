package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/lectern/archive/config"
	"github.com/Kush-Singh-26/lectern/archive/render"
	"github.com/Kush-Singh-26/lectern/archive/service"
	"github.com/Kush-Singh-26/lectern/internal/server"
	"github.com/Kush-Singh-26/lectern/internal/watch"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "serve":
		if err := runServe(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "check":
		if err := runCheck(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "lectern.yaml", "Path to the config file")
	watchMode := fs.Bool("watch", false, "Rebuild the index on filesystem changes")
	_ = fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, afero.NewOsFs(), render.New(cfg), nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watchMode {
		w, err := watch.New(cfg.ArticlesDir, logger, func() {
			if _, err := svc.RebuildIndex(); err != nil {
				logger.Error("auto rebuild failed", "error", err)
			}
		})
		if err != nil {
			return err
		}
		go w.Run(ctx)
	}

	return server.New(cfg, svc, logger).Run(ctx)
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "lectern.yaml", "Path to the config file")
	_ = fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, afero.NewOsFs(), render.New(cfg), nil, logger)
	if err != nil {
		return err
	}

	report, err := svc.RebuildIndex()
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d articles\n", report.Indexed)
	for _, skip := range report.Skipped {
		fmt.Printf("  skipped %s: %s (%s)\n", skip.Ref, skip.Reason, skip.Detail)
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: lectern <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve          Start the article server")
	fmt.Println("  check          Validate the articles directory and print a report")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nFlags for serve:")
	fmt.Println("  -config path   Config file (default lectern.yaml)")
	fmt.Println("  -watch         Rebuild the index when articles change")
}
