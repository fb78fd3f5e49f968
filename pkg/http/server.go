package http

import (
	"context"

	http_router "github.com/lintang-b-s/navigatorx-ch/pkg/http/router"
	"github.com/lintang-b-s/navigatorx-ch/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/navigatorx-ch/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

func setDefaults() {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("WEBSOCKET_PORT", 6666)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("USE_RATE_LIMIT", false)
	viper.SetDefault("RATE_LIMIT_RPS", 100)
	viper.SetDefault("RATE_LIMIT_BURST", 200)
}

// LoadConfig reads the server settings from viper.
func LoadConfig() http_server.Config {
	setDefaults()
	return http_server.Config{
		Port:           viper.GetInt("API_PORT"),
		WebsocketPort:  viper.GetInt("WEBSOCKET_PORT"),
		Timeout:        viper.GetDuration("API_TIMEOUT"),
		UseRateLimit:   viper.GetBool("USE_RATE_LIMIT"),
		RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),
	}
}

// Use starts the api and websocket servers in the background. they stop when ctx is done, Wait returns the
// first error.
func (s *Server) Use(
	ctx context.Context,
	config http_server.Config,
	routingService controllers.RoutingService,
) *Server {
	server := http_router.NewAPI(s.Log)

	s.g = &errgroup.Group{}
	s.g.Go(func() error {
		return server.Run(ctx, config, routingService)
	})

	return s
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}
