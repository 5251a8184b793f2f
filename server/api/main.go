// Command api is a development stand-in for the Paradex onboarding endpoint
// and the authenticated fullnode. It checks onboarding and request
// signatures exactly as the production services do.
package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/provider"
)

type Config struct {
	Addr           string
	DBPath         string
	ConfigAPIBase  string
	UpstreamRPCURL string
	MaxSkew        time.Duration
	LogLevel       string
	Chain          config.ChainContext
}

type Server struct {
	cfg      Config
	db       *Store
	upstream provider.Transport
	metrics  *metrics
	registry *prometheus.Registry
	now      func() time.Time
}

func main() {
	cfg, err := loadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	setupLogging(cfg.LogLevel)

	store, err := loadStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("store open")
	}
	srv := newServer(cfg, store)

	log.Info().
		Str("addr", cfg.Addr).
		Str("chain_id", cfg.Chain.ChainID).
		Bool("upstream", cfg.UpstreamRPCURL != "").
		Msg("paradex dev api listening")
	if err := http.ListenAndServe(cfg.Addr, srv.routes()); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}

func newServer(cfg Config, store *Store) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:      cfg,
		db:       store,
		metrics:  newMetrics(reg),
		registry: reg,
		now:      time.Now,
	}
	if cfg.UpstreamRPCURL != "" {
		s.upstream = provider.NewHTTPTransport(30 * time.Second)
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/onboarding", s.handleOnboarding)
	mux.HandleFunc("/accounts/", s.handleAccount)
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return withJSON(mux)
}

// loadConfig reads plain environment variables. The chain parameters come
// from CONFIG_API_BASE when set, and from the individual variables otherwise.
func loadConfig(ctx context.Context) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("ADDR", ":8686")
	v.SetDefault("DB_PATH", "./paradex-dev.json")
	v.SetDefault("MAX_SKEW", "5m")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := Config{
		Addr:           v.GetString("ADDR"),
		DBPath:         v.GetString("DB_PATH"),
		ConfigAPIBase:  v.GetString("CONFIG_API_BASE"),
		UpstreamRPCURL: v.GetString("UPSTREAM_RPC_URL"),
		MaxSkew:        v.GetDuration("MAX_SKEW"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		Chain: config.ChainContext{
			L1ChainID:             v.GetString("L1_CHAIN_ID"),
			ChainID:               v.GetString("STARKNET_CHAIN_ID"),
			AccountClassHash:      v.GetString("PARACLEAR_ACCOUNT_HASH"),
			AccountProxyClassHash: v.GetString("PARACLEAR_ACCOUNT_PROXY_HASH"),
		},
	}
	if cfg.ConfigAPIBase != "" {
		sys, err := config.Fetch(ctx, cfg.ConfigAPIBase)
		if err != nil {
			return Config{}, err
		}
		cfg.Chain = sys.ChainContext()
		if cfg.UpstreamRPCURL == "" {
			cfg.UpstreamRPCURL = sys.FullnodeRPCURL
		}
	}
	if cfg.MaxSkew <= 0 {
		return Config{}, errors.New("MAX_SKEW must be positive")
	}
	if err := cfg.Chain.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
