package backend_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"inventoritoko/internal/backend"
	"inventoritoko/internal/models"
	"inventoritoko/internal/repositories"
	"inventoritoko/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendResetToken(to, token string) error {
	args := m.Called(to, token)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCheckout(event rabbitmq.CheckoutEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

var errBroker = errors.New("broker down")

type env struct {
	db       *gorm.DB
	resets   *repositories.GORMPasswordResetRepository
	accounts *backend.AccountService
	store    *backend.StoreService
}

// setupEnv opens a private in-memory database with the demo catalog.
func setupEnv(t *testing.T, mailer backend.Mailer, events rabbitmq.Publisher) *env {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	e := &env{
		db:     db,
		resets: repositories.NewGORMPasswordResetRepository(db),
	}
	e.accounts = backend.NewAccountService(repositories.NewGORMUserRepository(db), e.resets, mailer, "test_jwt_secret", nil)
	e.store = backend.NewStoreService(
		repositories.NewGORMProductRepository(db),
		repositories.NewGORMCartRepository(db),
		repositories.NewGORMTransactionRepository(db),
		events, nil)
	require.NoError(t, e.store.Seed(backend.DefaultProducts()))
	return e
}

func (e *env) register(t *testing.T, email string) uint {
	t.Helper()
	user, err := e.accounts.Register(models.RegisterRequest{Username: "budi", Email: email, Password: "rahasia123"})
	require.NoError(t, err)
	return user.ID
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expired() time.Time { return time.Now().UTC().Add(-time.Hour) }
