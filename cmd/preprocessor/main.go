package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/navigatorx-ch/pkg/costfunction"
	"github.com/lintang-b-s/navigatorx-ch/pkg/logger"
	"github.com/lintang-b-s/navigatorx-ch/pkg/osmparser"
	preprocessor "github.com/lintang-b-s/navigatorx-ch/pkg/preprocessor"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"go.uber.org/zap"
)

var (
	osmFile     = flag.String("osm_file", "./data/jogja.osm.pbf", "openstreetmap pbf file")
	outFile     = flag.String("out", "./data/ch.graph", "output contracted graph file")
	useMaxSpeed = flag.Bool("use_maxspeed", true, "use the maxspeed tag of osm ways for edge weights")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck // ignore

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := util.ReadConfig(); err != nil {
		logger.Fatal("read config", zap.Error(err))
	}
	cfg, err := util.LoadContractionConfig()
	if err != nil {
		logger.Fatal("load contraction config", zap.Error(err))
	}

	osmParser := osmparser.NewOSMParser(logger, costfunction.NewTimeCostFunction(), *useMaxSpeed)
	graph, err := osmParser.Parse(ctx, *osmFile)
	if err != nil {
		logger.Fatal("parse osm file", zap.String("file", *osmFile), zap.Error(err))
	}

	prep := preprocessor.NewPreprocessor(graph, cfg, logger)
	stats, err := prep.PreProcessing(ctx, *outFile)
	if err != nil {
		logger.Fatal("preprocessing", zap.Error(err))
	}

	logger.Sugar().Infof("Preprocessing completed successfully in %s. %d vertices contracted, %d shortcuts added, written to %s",
		stats.Duration, stats.Contracted, stats.ShortcutsAdded, *outFile)
}
