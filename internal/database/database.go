package database

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/curator/internal/config"
	"github.com/mrlokans/curator/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func dialector(driver config.DatabaseDriver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverSQLite, "":
		return sqlite.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewDatabase connects to the recommendations datastore. When autoMigrate is set
// the recommendations table is created if it does not exist yet. An existing
// table is never altered.
func NewDatabase(driver config.DatabaseDriver, dsn string, autoMigrate bool) (*Database, error) {
	dial, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if autoMigrate {
		if err := createTableIfMissing(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.Printf("Database initialized successfully (%s)", driverName(driver))

	return &Database{DB: db}, nil
}

func createTableIfMissing(db *gorm.DB) error {
	migrator := db.Migrator()
	if migrator.HasTable(&entities.Recommendation{}) {
		return nil
	}
	log.Printf("Creating table %s", entities.Recommendation{}.TableName())
	return migrator.CreateTable(&entities.Recommendation{})
}

func driverName(driver config.DatabaseDriver) string {
	if driver == "" {
		return string(config.DriverSQLite)
	}
	return string(driver)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the underlying connection is still usable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
