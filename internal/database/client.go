// Package database provides the optional Postgres-backed cache of
// upstream air quality responses.
package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cmelendez/airdash/internal/log"
)

// Client holds the connection to the Postgres cache database
type Client struct {
	connectionString string
	DB               *gorm.DB // Exported so it can be accessed from other packages
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Connect connects to the Postgres database
func (c *Client) Connect() error {
	var err error

	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetSugaredLogger().Desugar()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	config := &gorm.Config{
		Logger: dbLogger,
	}

	log.Info("connecting to Postgres cache...")
	c.DB, err = gorm.Open(postgres.Open(c.connectionString), config)
	if err != nil {
		log.Warn("warning: unable to create a Postgres connection:", err)
		return err
	}
	log.Info("Postgres connection successful")

	return nil
}

// CreateTables runs the cache table migrations
func (c *Client) CreateTables() error {
	if err := c.DB.AutoMigrate(AirQualityCacheRecord{}); err != nil {
		return fmt.Errorf("error creating or migrating air quality cache table: %v", err)
	}
	if err := c.DB.AutoMigrate(ForecastCacheRecord{}); err != nil {
		return fmt.Errorf("error creating or migrating forecast cache table: %v", err)
	}
	return nil
}
