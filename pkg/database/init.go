package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cliniva/cliniva_backend/config"
)

// InitializeDatabase creates the application database if it doesn't exist.
// It connects to the default 'postgres' database to create it.
// This should be called once during startup, before migrations.
func InitializeDatabase(cfg *config.Config) error {
	if cfg.Database.DBName == "" {
		return fmt.Errorf("no database name provided")
	}

	adminCfg := Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   "postgres",
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := gorm.Open(postgres.Open(adminCfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer Close(db)

	var exists bool
	err = db.Raw(`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)`, cfg.Database.DBName).
		Scan(&exists).Error
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	if err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Database.DBName)).Error; err != nil {
		return fmt.Errorf("failed to create database %q: %w", cfg.Database.DBName, err)
	}

	return nil
}
