// Package stub assembles the local API server the CLI talks to in demos and
// end-to-end tests.
package stub

import (
	"fmt"
	"net"
	"time"

	"inventoritoko/internal/backend"
	"inventoritoko/internal/config"
	"inventoritoko/internal/handlers"
	"inventoritoko/internal/middleware"
	"inventoritoko/internal/models"
	"inventoritoko/internal/repositories"
	"inventoritoko/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures New.
type Options struct {
	Config config.StubConfig
	Logger *zap.Logger
	// Seed loads DefaultProducts into an empty catalog.
	Seed bool
	// ConsumeCheckouts logs every checkout event read back from the broker.
	ConsumeCheckouts bool
	// PurgeSchedule overrides backend.DefaultPurgeSchedule.
	PurgeSchedule string
}

// Server is a ready to serve stub backend.
type Server struct {
	App      *fiber.App
	DB       *gorm.DB
	Accounts *backend.AccountService
	Store    *backend.StoreService

	broker *rabbitmq.Client
	cron   *cron.Cron
	logger *zap.Logger
}

// New opens the database, wires services and routes, and starts the reset
// token purge. Call Close when done.
func New(opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config

	db, err := repositories.OpenDatabase(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}

	s := &Server{DB: db, logger: log}

	var events rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		s.broker, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log.Named("rabbitmq"))
		if err != nil {
			closeDB(db)
			return nil, err
		}
		events = s.broker
		if opts.ConsumeCheckouts {
			if err := s.broker.ConsumeCheckouts(s.logCheckout); err != nil {
				s.Close()
				return nil, err
			}
		}
	}

	var mailer backend.Mailer
	if m := backend.NewSMTPMailer(cfg.SMTP); m != nil {
		mailer = m
	}

	s.Accounts = backend.NewAccountService(
		repositories.NewGORMUserRepository(db),
		repositories.NewGORMPasswordResetRepository(db),
		mailer, cfg.JWTSecret, log.Named("accounts"))
	s.Store = backend.NewStoreService(
		repositories.NewGORMProductRepository(db),
		repositories.NewGORMCartRepository(db),
		repositories.NewGORMTransactionRepository(db),
		events, log.Named("store"))

	if opts.Seed {
		if err := s.Store.Seed(backend.DefaultProducts()); err != nil {
			s.Close()
			return nil, err
		}
	}

	schedule := opts.PurgeSchedule
	if schedule == "" {
		schedule = backend.DefaultPurgeSchedule
	}
	s.cron, err = backend.StartResetPurge(s.Accounts, schedule, log.Named("janitor"))
	if err != nil {
		s.Close()
		return nil, err
	}

	s.App = newApp(s.Accounts, s.Store, log)
	return s, nil
}

func newApp(accounts *backend.AccountService, store *backend.StoreService, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(models.ErrorResponse{Message: err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: zap.NewStdLog(log.Named("http")).Writer(),
	}))

	auth := middleware.AuthRequired(accounts, log.Named("auth"))
	handlers.NewAuthHandler(accounts, log.Named("auth")).RegisterRoutes(app)
	handlers.NewInventoryHandler(store, log.Named("inventory")).RegisterRoutes(app, auth)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	return app
}

func (s *Server) logCheckout(event rabbitmq.CheckoutEvent) error {
	s.logger.Info("checkout event received",
		zap.Uint("transaction_id", event.TransactionID),
		zap.Uint("user_id", event.UserID),
		zap.String("total_price", event.TotalPrice),
		zap.Bool("direct", event.Direct),
		zap.Int("lines", len(event.Items)))
	return nil
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("stub backend listening", zap.String("addr", addr))
	return s.App.Listen(addr)
}

// Listener serves on an existing listener until Shutdown.
func (s *Server) Listener(ln net.Listener) error {
	return s.App.Listener(ln)
}

// Shutdown stops accepting requests.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// Close releases the broker, the scheduler and the database.
func (s *Server) Close() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	var firstErr error
	if s.broker != nil {
		if err := s.broker.Close(); err != nil {
			firstErr = err
		}
	}
	if err := closeDB(s.DB); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
