package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/limaJavier/ihtp/pkg/config"
	"github.com/limaJavier/ihtp/pkg/logger"
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/limaJavier/ihtp/pkg/search"
	"github.com/limaJavier/ihtp/pkg/solver"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	instancesDirectory = "../../test/instances/"
	resultsFile        = "benchmark_results.csv"
)

type InstanceMetadata struct {
	Name     string
	Days     int
	Patients int
	Nurses   int
	Rooms    int
	Problem  model.Problem
}

type BenchmarkResult struct {
	Strategy    string
	Instance    InstanceMetadata
	Duration    int64
	Hard        int
	Soft        int
	Evaluations int
	RunId       string
}

func main() {
	directoryPtr := flag.String("dir", instancesDirectory, "Directory holding the *.json instances to benchmark")
	configPtr := flag.String("config", "", "Path to a configuration file shared by every run")
	strategiesPtr := flag.String("strategies", strings.Join(search.Strategies, ","), "Comma separated strategies to benchmark")
	outFilePtr := flag.String("out", resultsFile, "Path to the CSV file with the results")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	strategies := lo.Map(strings.Split(*strategiesPtr, ","), func(strategy string, _ int) string {
		return strings.ToLower(strings.TrimSpace(strategy))
	})
	if invalid, found := lo.Find(strategies, func(strategy string) bool { return !slices.Contains(search.Strategies, strategy) }); found {
		log.Fatalf("%v is not a valid strategy", invalid)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	instances, err := getInstances(*directoryPtr)
	if err != nil {
		log.Fatalf("cannot load instances: %v", err)
	}

	metrics := solver.NewMetrics()
	results := make([]BenchmarkResult, 0, len(instances)*len(strategies))
	for _, instance := range instances {
		for _, strategy := range strategies {
			fmt.Printf("Benchmarking instance \"%v\" with strategy \"%v\"\n", instance.Name, strategy)

			result, err := measure(cfg.Search, strategy, instance, logr, metrics)
			if err != nil {
				log.Fatalf("an error occurred while benchmarking instance \"%v\" with strategy \"%v\": %v", instance.Name, strategy, err)
			}
			results = append(results, result)
		}
	}

	if err := toCsv(*outFilePtr, results); err != nil {
		log.Fatalf("cannot write results: %v", err)
	}
}

func getInstances(directory string) ([]InstanceMetadata, error) {
	files, err := filepath.Glob(filepath.Join(directory, "*.json"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)

	instances := make([]InstanceMetadata, 0, len(files))
	for _, filename := range files {
		problem, err := model.InputFromJson(filename)
		if err != nil {
			return nil, fmt.Errorf("cannot parse instance \"%v\": %w", filename, err)
		}

		instances = append(instances, InstanceMetadata{
			Name:     filepath.Base(filename),
			Days:     problem.Days,
			Patients: len(problem.Patients),
			Nurses:   len(problem.Nurses),
			Rooms:    len(problem.Rooms),
			Problem:  problem,
		})
	}

	return instances, nil
}

func measure(cfg config.SearchConfig, strategy string, instance InstanceMetadata, logr *zap.Logger, metrics *solver.Metrics) (BenchmarkResult, error) {
	ctx := context.Background()
	if cfg.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TimeLimit)
		defer cancel()
	}

	runner, err := search.New(strategy, instance.Problem, cfg.Parameters(), logr, metrics)
	if err != nil {
		return BenchmarkResult{}, err
	}

	start := time.Now()
	result, err := runner.Run(ctx)
	if err != nil {
		return BenchmarkResult{}, err
	}

	return BenchmarkResult{
		Strategy:    strategy,
		Instance:    instance,
		Duration:    time.Since(start).Milliseconds(),
		Hard:        result.Fitness.Hard,
		Soft:        result.Fitness.Soft,
		Evaluations: result.Evaluations,
		RunId:       result.RunId,
	}, nil
}

var header = []string{"Instance", "Strategy", "Days", "Patients", "Nurses", "Rooms", "Hard", "Soft", "Duration(ms)", "Evaluations", "RunId"}

func toRecord(result BenchmarkResult) []string {
	return []string{
		result.Instance.Name,
		result.Strategy,
		fmt.Sprintf("%d", result.Instance.Days),
		fmt.Sprintf("%d", result.Instance.Patients),
		fmt.Sprintf("%d", result.Instance.Nurses),
		fmt.Sprintf("%d", result.Instance.Rooms),
		fmt.Sprintf("%d", result.Hard),
		fmt.Sprintf("%d", result.Soft),
		fmt.Sprintf("%d", result.Duration),
		fmt.Sprintf("%d", result.Evaluations),
		result.RunId,
	}
}

func toCsv(path string, results []BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write(toRecord(result)); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
