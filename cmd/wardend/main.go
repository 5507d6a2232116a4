package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sameehj/warden/pkg/config"
	"github.com/sameehj/warden/pkg/logging"
	"github.com/sameehj/warden/pkg/mcp"
	"github.com/sameehj/warden/pkg/sandbox"
	"github.com/sameehj/warden/pkg/tool"
	"github.com/sameehj/warden/pkg/version"
	"github.com/sameehj/warden/pkg/watcher"
	"github.com/spf13/pflag"
)

var (
	cfgFile     string
	showVersion bool
)

func main() {
	pflag.StringVar(&cfgFile, "config", "", "config file (YAML)")
	pflag.BoolVar(&showVersion, "version", false, "print version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Println(version.String())
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	sb, err := sandbox.New(cfg.Root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	registry := tool.NewRegistry(sb, cfg.AllowDelete)
	server := mcp.NewServer(registry)
	server.SetLogger(logger)

	transport := mcp.NewHTTPTransport(server, cfg.AuthToken)
	transport.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WatchRoot {
		w := watcher.New(sb.Root())
		w.SetLogger(logger)
		go func() {
			if err := w.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("watcher_stopped", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown_signal")
		cancel()
	}()

	logger.Info("wardend_started",
		"addr", cfg.ListenAddr,
		"root", sb.Root(),
		"allow_delete", cfg.AllowDelete,
		"version", version.String(),
	)
	if err := transport.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
