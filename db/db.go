// Package db provides the MySQL database handle for billingkit's
// persistence (the checkout store), built on GORM with a zap-backed query
// logger and pooled connections.
package db

import (
	"context"

	"gorm.io/gorm"
)

// Database is the interface for the database
type Database interface {
	DB() (*gorm.DB, error)
	Ping(ctx context.Context) error
	Close() error
}
