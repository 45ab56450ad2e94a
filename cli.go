package main

import (
	"io"

	"inventoritoko/internal/api"
	"inventoritoko/internal/config"
	"inventoritoko/internal/format"
	"inventoritoko/internal/history"
	"inventoritoko/internal/repositories"
	"inventoritoko/internal/services"
	"inventoritoko/pkg/logger"

	"github.com/asaskevich/EventBus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// cli holds what one command invocation needs. The session is built lazily
// so the stub command never opens the token store.
type cli struct {
	v       *viper.Viper
	out     io.Writer
	cfgFile string

	cfg    *config.Config
	logger *zap.Logger

	tokens    *repositories.BoltTokenRepository
	client    *api.Client
	bus       EventBus.Bus
	auth      *services.AuthService
	cart      *services.CartService
	catalog   *services.CatalogService
	history   *services.HistoryService
	presenter *history.Presenter
}

func newCLI(v *viper.Viper, out io.Writer) *cli {
	return &cli{v: v, out: out}
}

// load reads configuration and builds the logger.
func (c *cli) load() error {
	if c.cfg != nil {
		return nil
	}
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	}
	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	c.cfg, c.logger = cfg, log
	return nil
}

// session opens the token store and wires the client and services.
func (c *cli) session() error {
	if c.client != nil {
		return nil
	}
	if err := c.load(); err != nil {
		return err
	}
	tokens, err := repositories.NewBoltTokenRepository(c.cfg.TokenDBPath)
	if err != nil {
		return err
	}
	client, err := api.NewClient(api.Config{
		BaseURL: c.cfg.APIBaseURL,
		Tokens:  tokens,
		Timeout: c.cfg.APITimeout,
		Logger:  c.logger.Named("api"),
	})
	if err != nil {
		tokens.Close()
		return err
	}

	c.tokens, c.client = tokens, client
	c.bus = services.NewBus()
	c.auth = services.NewAuthService(client, tokens, c.bus, c.logger.Named("auth"))
	c.cart = services.NewCartService(client, c.bus, c.logger.Named("cart"))
	c.catalog = services.NewCatalogService(client, c.logger.Named("catalog"))
	c.history = services.NewHistoryService(client, c.logger.Named("history"))
	c.presenter = history.NewPresenter(client.BaseURL(),
		format.NewDateFormatter(c.cfg.DisplayTimezone), c.logger.Named("history"))

	logEvent := func(topic string) func(services.Event) {
		return func(e services.Event) {
			c.logger.Debug("action finished", zap.String("topic", topic),
				zap.String("action", e.Action), zap.Bool("success", e.Success))
		}
	}
	for _, topic := range []string{services.TopicCartResult, services.TopicAuthResult} {
		if err := c.bus.Subscribe(topic, logEvent(topic)); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the token store and flushes the logger.
func (c *cli) Close() {
	if c.tokens != nil {
		if err := c.tokens.Close(); err != nil {
			c.logger.Warn("closing token store", zap.Error(err))
		}
		c.tokens = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
