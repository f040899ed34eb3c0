// Package db はカタログ用データベース（SQLite / PostgreSQL）への接続を提供します。
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	catalogadapters "cardlens/internal/feature/catalog/adapters"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSQLitePath     = "cardlens.db"
	defaultConnectTimeout = 60 * time.Second
)

// retryInterval は接続失敗時の再試行間隔です。
var retryInterval = 3 * time.Second

// ErrUnknownDriver はサポートしていないドライバー名が指定された場合に返されます。
var ErrUnknownDriver = errors.New("unknown database driver")

// Config はデータベース接続設定です。
// DSNが空の場合、PostgreSQLでは個別の項目から組み立てます。
type Config struct {
	Driver         string
	DSN            string
	User           string
	Password       string
	Name           string
	Host           string
	Port           string
	InstanceName   string // Cloud SQL のインスタンス接続名（設定時はUnixソケット経由）
	Migrate        bool
	ConnectTimeout time.Duration
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN は設定から接続文字列を生成します。
func BuildDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if cfg.Driver != DriverPostgres {
		return defaultSQLitePath
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// OpenerFor はドライバー名に対応するOpenerを返します。
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case "", DriverSQLite:
		return openSQLite, nil
	case DriverPostgres:
		return openPostgres, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
}

func openSQLite(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), gormConfig())
}

// openPostgres はpgxで接続を確認してからgormに渡します。
func openPostgres(dsn string) (*gorm.DB, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	sqlDB := stdlib.OpenDB(*connCfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
}

// ConnectWithRetry はtimeoutに達するまでretryInterval間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定に従ってデータベースへ接続し、必要ならマイグレーションを実行します。
func Open(cfg Config) (*gorm.DB, error) {
	opener, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, opener)
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		if err := db.AutoMigrate(&catalogadapters.CardModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	slog.Info("database connected", "driver", cfg.Driver, "migrate", cfg.Migrate)
	return db, nil
}
