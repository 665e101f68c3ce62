// Command gatehouse-demo runs a relying-party server wired with every
// client protocol the library supports. Configuration comes from
// GATEHOUSE_* environment variables and an optional YAML file; clients are
// enabled by setting their provider variables, e.g. GATEHOUSE_OIDC_ISSUER_URL.
package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gatehouse-auth/gatehouse/pkg/cas"
	"github.com/gatehouse-auth/gatehouse/pkg/clients"
	"github.com/gatehouse-auth/gatehouse/pkg/config"
	"github.com/gatehouse-auth/gatehouse/pkg/logout"
	"github.com/gatehouse-auth/gatehouse/pkg/observability"
	"github.com/gatehouse-auth/gatehouse/pkg/replay"
	"github.com/gatehouse-auth/gatehouse/pkg/state"
	"github.com/gatehouse-auth/gatehouse/pkg/store"
	"github.com/gatehouse-auth/gatehouse/pkg/strategy"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

func main() {
	startupLog := logrus.New()

	cfg, err := config.LoadConfig()
	if err != nil {
		startupLog.WithError(err).Fatal("failed to load configuration")
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	app, err := buildApp(context.Background(), cfg, logger)
	if err != nil {
		startupLog.WithError(err).Fatal("failed to build application")
	}

	if err := app.run(); err != nil {
		startupLog.WithError(err).Fatal("server exited with error")
	}
}

// app holds the wired components of the demo server.
type app struct {
	cfg      *config.Config
	logger   *observability.Logger
	metrics  *observability.Metrics
	registry *prometheus.Registry
	health   *observability.HealthChecker

	sessions  *webctx.MemorySessionStore
	clients   *clients.Registry
	strat     strategy.Strategy
	processor *logout.Processor
	extractor *logout.SAMLExtractor
	tickets   *cas.ProxyGrantingStorage

	otel        *observability.OTelProviders
	otelMetrics *observability.OTelMetrics
	shutdown    []observability.ShutdownFunc
}

func buildApp(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		health:   observability.NewHealthChecker(),
		sessions: webctx.NewMemorySessionStore(),
		clients:  clients.NewRegistry(),
	}

	if cfg.Observability.MetricsEnabled {
		a.metrics = observability.NewMetrics(a.registry)
		a.sessions.OnCreate = func() {
			a.metrics.SessionsCreatedTotal.Inc()
			a.metrics.SessionsActive.Inc()
		}
		a.sessions.OnDestroy = func() {
			a.metrics.SessionsActive.Dec()
		}
	}

	otel, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return nil, err
	}
	a.otel = otel
	if otel != nil {
		a.shutdown = append(a.shutdown, func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otel, logger)
		})
		a.otelMetrics, err = observability.NewOTelMetrics()
		if err != nil {
			return nil, err
		}
	}

	index, err := a.newStore("index")
	if err != nil {
		return nil, err
	}
	tickets, err := a.newStore("tickets")
	if err != nil {
		return nil, err
	}

	if cfg.Store.ReaperSchedule != "" {
		reaper := store.NewReaper(index, cfg.Store.ReaperSchedule, logger)
		if err := reaper.Start(); err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, func(context.Context) error {
			reaper.Stop()
			return nil
		})
	}

	guard, err := a.newGuard()
	if err != nil {
		return nil, err
	}
	checker := replay.NewChecker(guard, logger, a.metrics)

	validator := state.NewValidator(cfg.Security.StateTTL, logger, a.metrics)
	generator := state.NewRandomGenerator(cfg.Security.StateTokenLength)
	relay := state.NewRelayResolver(cfg.Server.BaseURL + "/")

	a.processor = logout.NewProcessor(index, a.sessions, logger, a.metrics)
	a.extractor = logout.NewSAMLExtractor(nil)
	a.tickets = cas.NewProxyGrantingStorage(tickets, cfg.Security.TicketWaitTimeout, logger, a.metrics)

	switch cfg.Security.Strategy {
	case "never":
		a.strat = strategy.NeverSession{}
	default:
		a.strat = strategy.AlwaysSession{}
	}

	if err := a.registerClients(ctx, generator, validator, relay, checker); err != nil {
		return nil, err
	}

	logger.WithField("clients", strings.Join(a.clients.Names(), ",")).Info("application wired")
	return a, nil
}

// newStore builds one backing store per concern. Redis deployments share a
// server but keep concerns apart through the key prefix.
func (a *app) newStore(prefix string) (store.Store, error) {
	if a.cfg.Store.Backend != "redis" {
		ms := store.NewMemoryStore(a.cfg.Store.MaxEntries, a.cfg.Store.TTL)
		return store.NewInstrumentedStore(ms, "memory_"+prefix, a.metrics), nil
	}

	rs, err := store.NewRedisStore(store.RedisConfig{
		URL:        a.cfg.Store.RedisURL,
		Password:   a.cfg.Store.RedisPassword,
		DB:         a.cfg.Store.RedisDB,
		MaxRetries: a.cfg.Store.RedisMaxRetries,
		PoolSize:   a.cfg.Store.RedisPoolSize,
		Prefix:     a.cfg.Store.RedisPrefix + ":" + prefix,
		TTL:        a.cfg.Store.TTL,
	})
	if err != nil {
		return nil, err
	}
	a.health.AddDependency("redis_"+prefix, rs, true)
	a.shutdown = append(a.shutdown, func(context.Context) error { return rs.Close() })
	return store.NewInstrumentedStore(rs, "redis_"+prefix, a.metrics), nil
}

func (a *app) newGuard() (replay.Guard, error) {
	if a.cfg.Store.Backend != "redis" {
		return replay.NewMemoryGuard(nil), nil
	}

	opts, err := redis.ParseURL(a.cfg.Store.RedisURL)
	if err != nil {
		return nil, err
	}
	if a.cfg.Store.RedisPassword != "" {
		opts.Password = a.cfg.Store.RedisPassword
	}
	client := redis.NewClient(opts)
	guard := replay.NewRedisGuard(client, "")
	a.health.AddDependency("redis_replay", guard, true)
	a.shutdown = append(a.shutdown, func(context.Context) error { return client.Close() })
	return guard, nil
}

// registerClients enables one client per protocol based on which provider
// variables are set.
func (a *app) registerClients(ctx context.Context, generator state.Generator, validator *state.Validator, relay *state.RelayResolver, checker *replay.Checker) error {
	if issuer := os.Getenv("GATEHOUSE_OIDC_ISSUER_URL"); issuer != "" {
		client, err := clients.NewOIDCClient(ctx, clients.OIDCConfig{
			Name:         envOr("GATEHOUSE_OIDC_NAME", "oidc"),
			IssuerURL:    issuer,
			ClientID:     os.Getenv("GATEHOUSE_OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("GATEHOUSE_OIDC_CLIENT_SECRET"),
			RedirectURL:  a.cfg.Server.BaseURL + "/callback/" + envOr("GATEHOUSE_OIDC_NAME", "oidc"),
			Scopes:       strings.Split(envOr("GATEHOUSE_OIDC_SCOPES", "openid,profile,email"), ","),
			RolesClaim:   os.Getenv("GATEHOUSE_OIDC_ROLES_CLAIM"),
		}, generator, validator, checker, a.processor)
		if err != nil {
			return err
		}
		if err := a.clients.Register(client); err != nil {
			return err
		}
	}

	if authURL := os.Getenv("GATEHOUSE_OAUTH2_AUTH_URL"); authURL != "" {
		name := envOr("GATEHOUSE_OAUTH2_NAME", "oauth2")
		client, err := clients.NewOAuth2Client(clients.OAuth2Config{
			Name:         name,
			ClientID:     os.Getenv("GATEHOUSE_OAUTH2_CLIENT_ID"),
			ClientSecret: os.Getenv("GATEHOUSE_OAUTH2_CLIENT_SECRET"),
			AuthURL:      authURL,
			TokenURL:     os.Getenv("GATEHOUSE_OAUTH2_TOKEN_URL"),
			UserInfoURL:  os.Getenv("GATEHOUSE_OAUTH2_USERINFO_URL"),
			RedirectURL:  a.cfg.Server.BaseURL + "/callback/" + name,
			Scopes:       strings.Split(envOr("GATEHOUSE_OAUTH2_SCOPES", "read:user"), ","),
			IDField:      envOr("GATEHOUSE_OAUTH2_ID_FIELD", "id"),
		}, generator, validator)
		if err != nil {
			return err
		}
		if err := a.clients.Register(client); err != nil {
			return err
		}
	}

	if ssoURL := os.Getenv("GATEHOUSE_SAML_IDP_SSO_URL"); ssoURL != "" {
		name := envOr("GATEHOUSE_SAML_NAME", "saml")
		client, err := clients.NewSAMLClient(clients.SAMLConfig{
			Name:        name,
			IdPSSOURL:   ssoURL,
			IdPIssuer:   os.Getenv("GATEHOUSE_SAML_IDP_ISSUER"),
			Certificate: os.Getenv("GATEHOUSE_SAML_IDP_CERT"),
			SPIssuer:    a.cfg.Server.BaseURL + "/metadata/" + name,
			ACSURL:      a.cfg.Server.BaseURL + "/callback/saml/" + name,
			AudienceURI: a.cfg.Server.BaseURL + "/metadata/" + name,
		}, relay, checker, a.processor)
		if err != nil {
			return err
		}
		if err := a.clients.Register(client); err != nil {
			return err
		}
	}

	return nil
}

func (a *app) run() error {
	router := a.routes()

	server := &http.Server{
		Addr:         a.cfg.Server.Host + ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, a.health)
	if a.cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, a.registry)
	}
	healthServer := &http.Server{
		Addr:    a.cfg.Server.Host + ":" + a.cfg.Server.HealthPort,
		Handler: healthMux,
	}

	manager := observability.NewShutdownManager(a.logger, server, a.cfg.Server.ShutdownTimeout)
	manager.RegisterShutdownFunc(healthServer.Shutdown)
	for _, fn := range a.shutdown {
		manager.RegisterShutdownFunc(fn)
	}

	var g errgroup.Group
	g.Go(func() error {
		a.logger.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		a.logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(manager.WaitForShutdown)

	return g.Wait()
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
