package infra

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewDatabase establishes a GORM connection backed by pgx and applies pending
// SQL migrations. Schema is owned by the goose migrations in migrations/, never
// by AutoMigrate: the unique indexes the lifecycle relies on
// (uq_ofertas_cotizacion_proveedor, uq_pedidos_cotizacion) must exist exactly as written.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Unique violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations applies every embedded goose migration that is not yet recorded
// in goose_db_version. Re-running on an up-to-date schema is a no-op.
func RunMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(context.Background(), sqlDB, "migrations")
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) { log.Fatal().Msgf(format, v...) }
func (gooseLogger) Printf(format string, v ...interface{}) { log.Info().Msgf(format, v...) }
