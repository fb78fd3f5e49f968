package main

import (
	"context"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/engine"
	"github.com/lintang-b-s/navigatorx-ch/pkg/http"
	"github.com/lintang-b-s/navigatorx-ch/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-ch/pkg/logger"
	"github.com/lintang-b-s/navigatorx-ch/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func setEngineDefaults() {
	viper.SetDefault("GRAPH_FILE", "./data/ch.graph")
	viper.SetDefault("UNPACK_CACHE_SIZE", pkg.DEFAULT_UNPACK_CACHE_SIZE)
	viper.SetDefault("SNAP_RADIUS_KM", 0.5)
	viper.SetDefault("MATRIX_MAX_ENTRIES", 10000)
	viper.SetDefault("ENGINE_NUM_WORKERS", runtime.NumCPU())
}

func main() {
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck // ignore

	if err := util.ReadConfig(); err != nil {
		logger.Fatal("read config", zap.Error(err))
	}
	setEngineDefaults()

	routingEngine, err := engine.NewEngine(viper.GetString("GRAPH_FILE"), viper.GetInt("UNPACK_CACHE_SIZE"),
		viper.GetInt("ENGINE_NUM_WORKERS"), logger)
	if err != nil {
		logger.Fatal("start engine", zap.Error(err))
	}

	rtree := spatialindex.NewRtree()
	rtree.Build(routingEngine.GetRoutingEngine().GetGraph(), logger)

	routingService := usecases.NewRoutingService(logger, routingEngine.GetRoutingEngine(), rtree,
		viper.GetFloat64("SNAP_RADIUS_KM"), viper.GetInt("MATRIX_MAX_ENTRIES"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := http.NewServer(logger)
	api.Use(ctx, http.LoadConfig(), routingService)

	if err := api.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
	logger.Info("Navigatorx CH Routing Engine Server Stopped")
}
