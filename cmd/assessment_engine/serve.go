package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jonathan/assessment-engine/internal/config"
	"github.com/jonathan/assessment-engine/internal/definitions"
	"github.com/jonathan/assessment-engine/internal/metrics"
	"github.com/jonathan/assessment-engine/internal/pipeline"
	"github.com/jonathan/assessment-engine/internal/server"
	"github.com/jonathan/assessment-engine/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for scoring submissions.

Send SIGHUP to reload the definitions directory without restarting. A reload that fails
validation keeps the previous definitions in service.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	rl, err := ratelimit.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load rate limit config: %w", err)
	}

	m := metrics.Default()
	m.SetDefinitions(registry.Len())

	srv, err := server.New(server.Config{
		Port:         cfg.Port,
		Engine:       pipeline.NewEngine(registry, m),
		Gatherer:     prometheus.DefaultGatherer,
		RateLimit:    rl,
		BatchWorkers: cfg.BatchWorkers,
		MaxBatchSize: cfg.MaxBatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})
	reloaded := make(chan struct{})
	go func() {
		defer close(reloaded)
		watchReload(hup, done, registry, m, cfg.DefinitionsDir)
	}()
	defer func() {
		signal.Stop(hup)
		close(done)
		<-reloaded
	}()

	return srv.Start()
}

// watchReload reloads the definitions on every signal received from hup
// until done is closed.
func watchReload(hup <-chan os.Signal, done <-chan struct{}, registry *definitions.Registry, m *metrics.Metrics, dir string) {
	for {
		select {
		case <-done:
			return
		case <-hup:
			if err := reloadDefinitions(registry, dir); err != nil {
				log.Printf("[serve] reload failed, keeping %d definition(s): %v", registry.Len(), err)
				continue
			}
			m.SetDefinitions(registry.Len())
		}
	}
}

func reloadDefinitions(registry *definitions.Registry, dir string) error {
	defs, err := definitions.Load(dir)
	if err != nil {
		return err
	}
	return registry.Replace(defs)
}
