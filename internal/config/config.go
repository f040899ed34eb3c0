// Package config はviperを使用して設定ファイル・環境変数からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix は環境変数の接頭辞です（例: CARDLENS_SERVER_PORT）。
const EnvPrefix = "CARDLENS"

// Config はアプリケーション全体の設定です。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Matcher   MatcherConfig   `mapstructure:"matcher"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Image     ImageConfig     `mapstructure:"image"`
	Appraisal AppraisalConfig `mapstructure:"appraisal"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig はカタログCSVとデータベースの設定です。
type CatalogConfig struct {
	CSVPath        string        `mapstructure:"csv_path"`
	Driver         string        `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN            string        `mapstructure:"dsn"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	InstanceName   string        `mapstructure:"instance_name"`
	Migrate        bool          `mapstructure:"migrate"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// CorpusConfig は参照画像コーパスの設定です。
type CorpusConfig struct {
	Dir      string        `mapstructure:"dir"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// MatcherConfig は特徴量マッチングの設定です。
type MatcherConfig struct {
	MaxFeatures    int     `mapstructure:"max_features"`
	Ratio          float64 `mapstructure:"ratio"`
	MinGoodMatches int     `mapstructure:"min_good_matches"`
	Workers        int     `mapstructure:"workers"`
}

// OCRConfig は文字認識の設定です。
type OCRConfig struct {
	Provider    string        `mapstructure:"provider"` // "vision" or "gemini"
	MinWidth    int           `mapstructure:"min_width"`
	GeminiModel string        `mapstructure:"gemini_model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   int           `mapstructure:"rate_limit"` // 1分あたりの呼び出し上限（0は無制限）
}

// RedisConfig はRedisの設定です。Addrが空の場合キャッシュは無効です。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig は管理系エンドポイントのJWT設定です。
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// ImageConfig はアップロード画像の制限です。
type ImageConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
	// MaxPixels はヘッダが宣言する幅×高さの上限です。デコード前に検査します。
	MaxPixels int `mapstructure:"max_pixels"`
}

// AppraisalConfig は鑑定処理の設定です。
type AppraisalConfig struct {
	MemoSize int `mapstructure:"memo_size"`
}

// LogConfig はslogの出力設定です。
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Load は設定を読み込みます。pathが空の場合はカレントディレクトリなどから config.yaml を探し、
// 見つからなければ環境変数とデフォルト値のみを使用します。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cardlens/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("catalog.csv_path", "data/cards_database.csv")
	v.SetDefault("catalog.driver", "sqlite")
	v.SetDefault("catalog.dsn", "cardlens.db")
	v.SetDefault("catalog.host", "")
	v.SetDefault("catalog.port", "5432")
	v.SetDefault("catalog.user", "")
	v.SetDefault("catalog.password", "")
	v.SetDefault("catalog.name", "")
	v.SetDefault("catalog.instance_name", "")
	v.SetDefault("catalog.migrate", true)
	v.SetDefault("catalog.connect_timeout", "60s")

	v.SetDefault("corpus.dir", "data/reference_images")
	v.SetDefault("corpus.cache_ttl", "24h")

	v.SetDefault("matcher.max_features", 1000)
	v.SetDefault("matcher.ratio", 0.75)
	v.SetDefault("matcher.min_good_matches", 10)
	v.SetDefault("matcher.workers", 4)

	v.SetDefault("ocr.provider", "vision")
	v.SetDefault("ocr.min_width", 300)
	v.SetDefault("ocr.gemini_model", "gemini-2.5-flash")
	v.SetDefault("ocr.timeout", "30s")
	v.SetDefault("ocr.rate_limit", 0)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "1h")

	v.SetDefault("image.max_bytes", 10<<20)
	v.SetDefault("image.max_pixels", 40_000_000)

	v.SetDefault("appraisal.memo_size", 256)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	switch cfg.Catalog.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Catalog.DSN == "" && cfg.Catalog.Host == "" && cfg.Catalog.InstanceName == "" {
			errs = append(errs, errors.New("postgres requires catalog.dsn, catalog.host or catalog.instance_name"))
		}
	default:
		errs = append(errs, fmt.Errorf("catalog.driver must be 'sqlite' or 'postgres', got: %q", cfg.Catalog.Driver))
	}
	if cfg.Catalog.CSVPath == "" {
		errs = append(errs, errors.New("catalog.csv_path is required"))
	}
	if cfg.Matcher.Ratio <= 0 || cfg.Matcher.Ratio >= 1 {
		errs = append(errs, fmt.Errorf("matcher.ratio must be in (0, 1), got: %v", cfg.Matcher.Ratio))
	}
	if cfg.Matcher.MinGoodMatches < 0 {
		errs = append(errs, errors.New("matcher.min_good_matches must not be negative"))
	}
	if cfg.Matcher.MaxFeatures <= 0 || cfg.Matcher.Workers <= 0 {
		errs = append(errs, errors.New("matcher.max_features and matcher.workers must be positive"))
	}
	if cfg.OCR.Provider != "vision" && cfg.OCR.Provider != "gemini" {
		errs = append(errs, fmt.Errorf("ocr.provider must be 'vision' or 'gemini', got: %q", cfg.OCR.Provider))
	}
	if cfg.OCR.MinWidth <= 0 {
		errs = append(errs, errors.New("ocr.min_width must be positive"))
	}
	if cfg.OCR.RateLimit < 0 {
		errs = append(errs, errors.New("ocr.rate_limit must not be negative"))
	}
	if cfg.Image.MaxBytes <= 0 {
		errs = append(errs, errors.New("image.max_bytes must be positive"))
	}
	if cfg.Image.MaxPixels <= 0 {
		errs = append(errs, errors.New("image.max_pixels must be positive"))
	}
	if cfg.Appraisal.MemoSize <= 0 {
		errs = append(errs, errors.New("appraisal.memo_size must be positive"))
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be 'text' or 'json', got: %q", cfg.Log.Format))
	}

	return errors.Join(errs...)
}
