package db

import (
	"context"
	"strings"

	"github.com/flowlet/billingkit/logger"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

type mysqlDatabase struct {
	logger logger.Logger
	db     *gorm.DB
}

// NewMySQL opens a pooled MySQL connection and verifies it with a ping
func NewMySQL(log logger.Logger, cfg *Config) (Database, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.MergeDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var gormLogLevel glogger.LogLevel
	switch strings.ToLower(cfg.LogLevel) {
	case "silent":
		gormLogLevel = glogger.Silent
	case "error":
		gormLogLevel = glogger.Error
	case "warn":
		gormLogLevel = glogger.Warn
	case "info":
		gormLogLevel = glogger.Info
	default:
		gormLogLevel = glogger.Warn
	}

	d := &mysqlDatabase{logger: log}

	queryLogger := &gormLogger{
		logger:        d.logger,
		level:         gormLogLevel,
		slowThreshold: cfg.SlowThreshold,
	}

	var err error
	d.db, err = gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:                                   queryLogger,
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, ErrConnection(err)
	}
	sqldb, err := d.db.DB()
	if err != nil {
		return nil, ErrConnection(err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqldb.Ping(); err != nil {
		return nil, ErrConnection(err)
	}

	d.logger.Info("database connection established",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return d, nil
}

func (d *mysqlDatabase) DB() (*gorm.DB, error) {
	if d.db == nil {
		return nil, ErrNotConnected
	}
	return d.db, nil
}

func (d *mysqlDatabase) Ping(ctx context.Context) error {
	sqldb, err := d.db.DB()
	if err != nil {
		return ErrConnection(err)
	}
	return sqldb.PingContext(ctx)
}

func (d *mysqlDatabase) Close() error {
	sqldb, err := d.db.DB()
	if err != nil {
		return ErrConnection(err)
	}
	return sqldb.Close()
}
