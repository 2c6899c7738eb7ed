package db

import (
	"fmt"
	"time"

	"relief-portal-go/internal/config"
	"relief-portal-go/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

// poolFor fills unset pool limits. Idle connections never exceed open ones.
func poolFor(cfg config.DBConfig) pool {
	p := pool{maxOpen: cfg.MaxOpenConns, maxIdle: cfg.MaxIdleConns, maxLifetime: cfg.ConnMaxLifetime}
	if p.maxOpen <= 0 {
		p.maxOpen = 10
	}
	if p.maxIdle <= 0 {
		p.maxIdle = p.maxOpen / 2
	}
	if p.maxIdle > p.maxOpen {
		p.maxIdle = p.maxOpen
	}
	if p.maxLifetime <= 0 {
		p.maxLifetime = 30 * time.Minute
	}
	return p
}

// gormWriter routes gorm's slow query and error lines into the app logger.
type gormWriter struct {
	log logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn("db: " + fmt.Sprintf(format, args...))
}

func newGormLogger(log logger.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{log: log}, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// NewPostgres opens the direct relief store connection used when the portal
// runs against its own database instead of the REST gateway.
func NewPostgres(cfg config.DBConfig, log logger.Logger) (*gorm.DB, error) {
	if cfg.DSN != "" {
		log.Info("db: connecting using DSN")
	} else {
		log.Info("db: connecting to postgres", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Name, "sslmode", cfg.SSLMode)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: newGormLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}

	limits := poolFor(cfg)
	sqlDB.SetMaxOpenConns(limits.maxOpen)
	sqlDB.SetMaxIdleConns(limits.maxIdle)
	sqlDB.SetConnMaxLifetime(limits.maxLifetime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	log.Info("db: connected", "max_open_conns", limits.maxOpen, "max_idle_conns", limits.maxIdle)
	return gormDB, nil
}
