package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"wsprobe/internal/config"
	"wsprobe/internal/models"
	"wsprobe/internal/monitor"
	"wsprobe/internal/probe"
	"wsprobe/internal/server"
	"wsprobe/internal/storage"
)

func main() {
	var (
		serve      = flag.Bool("serve", false, "run the monitoring service instead of a one-shot probe")
		configPath = flag.String("config", "config.yaml", "path to configuration file (YAML), service mode only")
		addr       = flag.String("addr", ":8080", "address for the web server, service mode only")
	)
	flag.Parse()

	if !*serve {
		// One-shot mode: a single exchange against the default endpoint.
		// Failures are reported on stdout and the process exits zero.
		probe.Report(context.Background(), models.Target{}, os.Stdout)
		return
	}

	runService(*configPath, *addr)
}

func runService(configPath, addr string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Loaded %d target(s) from %s", len(cfg.Targets), configPath)

	historyPath := filepath.Join(cfg.DataDirectory, "probe_history.json")
	store, err := storage.NewProbeStorage(historyPath)
	if err != nil {
		log.Fatalf("initialise storage: %v", err)
	}

	mon := monitor.New(time.Duration(cfg.IntervalSeconds)*time.Second, cfg.Targets, store)
	mon.Start()
	defer mon.Stop()

	srv := server.New(addr, mon, store, cfg.Targets)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("wsprobe listening on %s (interval %d seconds)", addr, cfg.IntervalSeconds)
	if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
