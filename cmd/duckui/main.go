package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ibero-data/duck-ui-sub001/internal/engine"
	"github.com/ibero-data/duck-ui-sub001/pkg/config"
	"github.com/ibero-data/duck-ui-sub001/pkg/logger"

	// Backend connectors register themselves with the adapter registry.
	_ "github.com/ibero-data/duck-ui-sub001/internal/database/clickhouse"
	_ "github.com/ibero-data/duck-ui-sub001/internal/database/duckdb"
	_ "github.com/ibero-data/duck-ui-sub001/internal/database/persistent"
)

var (
	Version   = "dev"     // Default version for development
	GitCommit = "unknown" // Git commit hash
	BuildTime = "unknown" // Build timestamp
)

var (
	configFile  = flag.String("config", "", "Configuration file path")
	listenAddr  = flag.String("listen", "", "Listen address override, e.g. :8090")
	versionFlag = flag.Bool("version", false, "Show version information and exit")
)

func printVersionInfo() {
	fmt.Printf("Duck UI core v%s (build %s)\n", Version, GitCommit)
	fmt.Printf("Built: %s\n", BuildTime)
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func main() {
	flag.Parse()

	if *versionFlag {
		printVersionInfo()
		os.Exit(0)
	}

	fileCfg, err := config.LoadFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		fileCfg.Server.Listen = *listenAddr
	}

	log := logger.New("core", Version)
	if fileCfg.Logging.Level != "" {
		log.SetLevel(logger.ParseLevel(fileCfg.Logging.Level))
	}
	if fileCfg.Logging.DisableConsole {
		log.DisableConsoleOutput()
	}
	if fileCfg.Logging.File != "" {
		go streamToFile(log, fileCfg.Logging.File)
	}

	cfg := config.New()
	cfg.Update(fileCfg.Flatten())

	eng := engine.NewEngine(cfg)
	eng.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := eng.Stop(shutdownCtx); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}
	log.Info("Shutdown complete")
}

// streamToFile appends subscribed log entries to the configured log file.
func streamToFile(log *logger.Logger, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warnf("Failed to create log directory for %s: %v", path, err)
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Warnf("Failed to open log file %s: %v", path, err)
		return
	}
	defer f.Close()

	for entry := range log.Subscribe() {
		line := fmt.Sprintf("%s [%s] %s\n",
			entry.Time.Format("2006-01-02 15:04:05.000"), entry.Level, entry.Message)
		if _, err := f.WriteString(line); err != nil {
			return
		}
	}
}
