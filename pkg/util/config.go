package util

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/spf13/viper"
)

func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// env + defaults only
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

type PriorityPolicy string

const (
	EDGE_DIFFERENCE              PriorityPolicy = "edge_difference"
	EDGE_DIFFERENCE_SEARCH_SPACE PriorityPolicy = "edge_difference_search_space"
)

type ContractionConfig struct {
	HopLimit        int
	MaxSettledNodes int
	PriorityPolicy  PriorityPolicy
	NumWorkers      int
	LogInterval     int
}

func setContractionDefaults() {
	viper.SetDefault("CH_WITNESS_HOP_LIMIT", pkg.DEFAULT_WITNESS_HOP_LIMIT)
	viper.SetDefault("CH_WITNESS_MAX_SETTLED", pkg.DEFAULT_WITNESS_MAX_SETTLED)
	viper.SetDefault("CH_PRIORITY_POLICY", string(EDGE_DIFFERENCE))
	viper.SetDefault("CH_NUM_WORKERS", runtime.NumCPU())
	viper.SetDefault("CH_LOG_INTERVAL", pkg.DEFAULT_CONTRACTION_LOG_INTERVAL)
}

// LoadContractionConfig reads contraction settings from viper, falling back to defaults.
func LoadContractionConfig() (ContractionConfig, error) {
	setContractionDefaults()

	cfg := ContractionConfig{
		HopLimit:        viper.GetInt("CH_WITNESS_HOP_LIMIT"),
		MaxSettledNodes: viper.GetInt("CH_WITNESS_MAX_SETTLED"),
		PriorityPolicy:  PriorityPolicy(viper.GetString("CH_PRIORITY_POLICY")),
		NumWorkers:      viper.GetInt("CH_NUM_WORKERS"),
		LogInterval:     viper.GetInt("CH_LOG_INTERVAL"),
	}

	if cfg.HopLimit <= 0 || cfg.MaxSettledNodes <= 0 {
		return cfg, WrapErrorf(nil, ErrBadParamInput, "witness hop limit and max settled nodes must be positive, got %d and %d",
			cfg.HopLimit, cfg.MaxSettledNodes)
	}
	switch cfg.PriorityPolicy {
	case EDGE_DIFFERENCE, EDGE_DIFFERENCE_SEARCH_SPACE:
	default:
		return cfg, WrapErrorf(nil, ErrBadParamInput, "unknown priority policy %q", cfg.PriorityPolicy)
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.LogInterval <= 0 {
		cfg.LogInterval = pkg.DEFAULT_CONTRACTION_LOG_INTERVAL
	}
	return cfg, nil
}

func DefaultContractionConfig() ContractionConfig {
	return ContractionConfig{
		HopLimit:        pkg.DEFAULT_WITNESS_HOP_LIMIT,
		MaxSettledNodes: pkg.DEFAULT_WITNESS_MAX_SETTLED,
		PriorityPolicy:  EDGE_DIFFERENCE,
		NumWorkers:      runtime.NumCPU(),
		LogInterval:     pkg.DEFAULT_CONTRACTION_LOG_INTERVAL,
	}
}
