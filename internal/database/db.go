package database

import (
	"context"
	"log/slog"
	"net"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options are the connection parameters for the MySQL store.
type Options struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	Debug    bool
}

// DSN renders the driver connection string. Times are parsed into time.Time
// and kept in UTC.
func (o Options) DSN() string {
	cfg := mysqldrv.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, o.Port)
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL through gorm and verifies the connection.
func Open(opts Options, log *slog.Logger) (*gorm.DB, error) {
	return OpenDialector(mysql.Open(opts.DSN()), opts.Debug, log)
}

// OpenDialector opens any gorm dialector with the settings shared by the
// server and the tests: translated driver errors, UTC timestamps and the
// connection pool limits.
func OpenDialector(d gorm.Dialector, debug bool, log *slog.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: logger.New(slog.NewLogLogger(log.Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
