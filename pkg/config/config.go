package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/limaJavier/ihtp/pkg/search"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const envPrefix = "IHTP"

type Config struct {
	Env     string `validate:"oneof=development production"`
	Log     LogConfig
	Search  SearchConfig
	Output  OutputConfig
	Metrics MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string `validate:"oneof=json console"`
}

// SearchConfig holds the search strategy and its budget. A zero TimeLimit disables the wall-clock budget
type SearchConfig struct {
	Strategy       string  `validate:"oneof=genetic random"`
	PopulationSize int     `validate:"gte=2"`
	MaxGenerations int     `validate:"gte=1"`
	CrossoverRate  float64 `validate:"gte=0,lte=1"`
	MutationRate   float64 `validate:"gte=0,lte=1"`
	EliteCount     int     `validate:"gte=0,ltfield=PopulationSize"`
	TournamentSize int     `validate:"gte=1"`
	Workers        int     `validate:"gte=1"`
	LocalSearch    bool
	TimeLimit      time.Duration `validate:"gte=0"`
	Seed           uint64
}

type OutputConfig struct {
	Path string `validate:"required"`
}

// MetricsConfig enables the Prometheus endpoint when Address is not empty
type MetricsConfig struct {
	Address string
}

var validate = validator.New()

// Load reads an optional config file (yaml, json or toml, by extension) and lets IHTP_ prefixed environment variables
// override it. A missing path means defaults plus environment only
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("env")

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	timeLimit, err := time.ParseDuration(v.GetString("search.time_limit"))
	if err != nil {
		return nil, fmt.Errorf("invalid search.time_limit: %w", err)
	}

	cfg.Search = SearchConfig{
		Strategy:       v.GetString("search.strategy"),
		PopulationSize: v.GetInt("search.population"),
		MaxGenerations: v.GetInt("search.generations"),
		CrossoverRate:  v.GetFloat64("search.crossover"),
		MutationRate:   v.GetFloat64("search.mutation"),
		EliteCount:     v.GetInt("search.elite"),
		TournamentSize: v.GetInt("search.tournament"),
		Workers:        v.GetInt("search.workers"),
		LocalSearch:    v.GetBool("search.local_search"),
		TimeLimit:      timeLimit,
		Seed:           v.GetUint64("search.seed"),
	}

	cfg.Output = OutputConfig{
		Path: v.GetString("output.path"),
	}

	cfg.Metrics = MetricsConfig{
		Address: v.GetString("metrics.address"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parameters translates the search section into the parameters a search strategy runs with
func (c SearchConfig) Parameters() search.Parameters {
	return search.Parameters{
		PopulationSize: c.PopulationSize,
		MaxGenerations: c.MaxGenerations,
		CrossoverRate:  c.CrossoverRate,
		MutationRate:   c.MutationRate,
		EliteCount:     c.EliteCount,
		TournamentSize: c.TournamentSize,
		Workers:        c.Workers,
		LocalSearch:    c.LocalSearch,
		Seed:           c.Seed,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("search.strategy", search.StrategyGenetic)
	v.SetDefault("search.population", 40)
	v.SetDefault("search.generations", 100)
	v.SetDefault("search.crossover", 0.8)
	v.SetDefault("search.mutation", 0.1)
	v.SetDefault("search.elite", 2)
	v.SetDefault("search.tournament", 3)
	v.SetDefault("search.workers", 4)
	v.SetDefault("search.local_search", true)
	v.SetDefault("search.time_limit", "10m")
	v.SetDefault("search.seed", 0)

	v.SetDefault("output.path", "bestSolution.json")
	v.SetDefault("metrics.address", "")
}
