package repositories

import (
	"errors"
	"fmt"

	"inventoritoko/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Errors shared by the GORM repositories.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
)

// OpenDatabase connects to sqlite or postgres.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if dialector.Name() == "sqlite" {
		// sqlite allows one writer; a single connection also keeps an
		// in-memory database alive for the life of the pool.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every stub table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.UserRecord{},
		&models.ProductRecord{},
		&models.CartRecord{},
		&models.TransactionRecord{},
		&models.TransactionItemRecord{},
		&models.PasswordResetRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
