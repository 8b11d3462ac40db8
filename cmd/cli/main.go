package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/limaJavier/ihtp/pkg/config"
	"github.com/limaJavier/ihtp/pkg/logger"
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/limaJavier/ihtp/pkg/search"
	"github.com/limaJavier/ihtp/pkg/solver"
	"go.uber.org/zap"
)

func main() {
	// Define arguments
	configPtr := flag.String("config", "", "Path to a yaml, json or toml configuration file; IHTP_ environment variables override it")
	outFilePtr := flag.String("out", "", "Path to the file where the best solution will be written; overrides output.path")
	strategyPtr := flag.String("strategy", "", fmt.Sprintf("Search strategy, one of %v; overrides search.strategy", search.Strategies))
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [flags] <instance.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Validate arguments
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *outFilePtr != "" {
		cfg.Output.Path = *outFilePtr
	}
	if *strategyPtr != "" {
		cfg.Search.Strategy = strings.ToLower(*strategyPtr)
	}
	if !slices.Contains(search.Strategies, cfg.Search.Strategy) {
		log.Fatalf("%v is not a valid strategy", cfg.Search.Strategy)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	// Extract input
	problem, err := model.InputFromJson(filePath)
	if err != nil {
		log.Fatalf("cannot load problem instance: %v", err)
	}

	fmt.Printf("Start time: %v\n", time.Now().Format(time.TimeOnly))
	result, err := run(cfg, problem, logr)
	fmt.Printf("End time: %v\n", time.Now().Format(time.TimeOnly))
	if err != nil {
		logr.Fatal("search failed", zap.Error(err))
	}

	if err := result.Solution.ExportToJson(cfg.Output.Path, result.RunId); err != nil {
		logr.Fatal("cannot write solution", zap.Error(err))
	}
	logr.Info("best solution written",
		zap.String("run_id", result.RunId),
		zap.String("path", cfg.Output.Path),
		zap.Int("hard", result.Fitness.Hard),
		zap.Int("soft", result.Fitness.Soft),
	)
}

// run searches until the configured budget, the time limit or an interrupt signal ends it
func run(cfg *config.Config, problem model.Problem, logr *zap.Logger) (search.Result, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Search.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.TimeLimit)
		defer cancel()
	}

	metrics := solver.NewMetrics()
	if cfg.Metrics.Address != "" {
		server := serveMetrics(cfg.Metrics.Address, metrics, logr)
		defer server.Close()
	}

	runner, err := search.New(cfg.Search.Strategy, problem, cfg.Search.Parameters(), logr, metrics)
	if err != nil {
		return search.Result{}, err
	}
	return runner.Run(ctx)
}

func serveMetrics(address string, metrics *solver.Metrics, logr *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logr.Info("metrics server starting", zap.String("addr", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("metrics server failed", zap.Error(err))
		}
	}()
	return server
}
