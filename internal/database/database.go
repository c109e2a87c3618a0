package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cinefeed/cinefeed/internal/config"
	"github.com/cinefeed/cinefeed/internal/logger"
)

var DB *gorm.DB

// Initialize sets up the global database connection and migrates the
// catalog schema.
func Initialize(cfg *config.Config) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	DB = db
	logger.Info("Database initialized with %s", cfg.Database.Type)
	return nil
}

// Open connects to the configured database without running migrations.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Database.Type {
	case "postgres":
		db, err = openPostgres(cfg)
	case "sqlite":
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLife)

	return db, nil
}

// Migrate creates the catalog tables. Staging tables used by the seeding
// pipeline are owned and migrated by the seeder itself.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Genre{},
		&Director{},
		&Movie{},
		&MovieRating{},
	)
}

func openPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Database.Host, cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Database, cfg.Database.Port)

	return gorm.Open(postgres.Open(dsn), gormConfig(cfg))
}

func openSQLite(cfg *config.Config) (*gorm.DB, error) {
	dbPath := cfg.Database.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Database.DataDir, "cinefeed.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return gorm.Open(sqlite.Open(dbPath), gormConfig(cfg))
}

func gormConfig(cfg *config.Config) *gorm.Config {
	logMode := gormlogger.Warn
	if cfg.Database.LogQueries {
		logMode = gormlogger.Info
	}
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	}
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
