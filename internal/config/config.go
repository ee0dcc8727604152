package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	BucketPhotos string
	UseSSL       bool
	Region       string
}

type SecurityConfig struct {
	JWTSecret         string
	JWTTTL            time.Duration
	MaxLoginAttempts  int
	BanDuration       time.Duration
	// MaxSessions caps stored session digests per account; 0 is unlimited.
	MaxSessions       int
	CallbackDedupeTTL time.Duration
}

type OTPConfig struct {
	RegisterLength int
	ResetLength    int
	RegisterTTL    time.Duration
	ResetTTL       time.Duration
}

type MailConfig struct {
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	SenderName string
	Timeout    time.Duration
}

type PaymentConfig struct {
	ServerKey         string
	ClientKey         string
	Production        bool
	PremiumPrice      int64
	AppURL            string
	ReconcileAfter    time.Duration
	ReconcileSchedule string
	ReconcileBatch    int
}

type QueueConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	OTP              OTPConfig
	Mail             MailConfig
	Payment          PaymentConfig
	Queue            QueueConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	return load(v)
}

func load(v *viper.Viper) (*AppConfig, error) {
	v.SetEnvPrefix("RESEP")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	var errs []error
	if c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwtsecret is required"))
	}
	if c.Security.MaxLoginAttempts <= 0 {
		errs = append(errs, errors.New("security.maxloginattempts must be positive"))
	}
	if c.Payment.PremiumPrice <= 0 {
		errs = append(errs, errors.New("payment.premiumprice must be positive"))
	}
	if c.OTP.RegisterLength <= 0 || c.OTP.ResetLength <= 0 {
		errs = append(errs, errors.New("otp lengths must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketphotos", "resep-photos")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.jwtttl", "1h")
	v.SetDefault("security.maxloginattempts", 3)
	v.SetDefault("security.banduration", "10m")
	v.SetDefault("security.maxsessions", 0)
	v.SetDefault("security.callbackdedupettl", "10m")

	v.SetDefault("otp.registerlength", 6)
	v.SetDefault("otp.resetlength", 8)
	v.SetDefault("otp.registerttl", "0s")
	v.SetDefault("otp.resetttl", "15m")

	v.SetDefault("mail.smtpserver", "smtp.gmail.com")
	v.SetDefault("mail.smtpport", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.sendername", "Resep App")
	v.SetDefault("mail.timeout", "10s")

	v.SetDefault("payment.serverkey", "")
	v.SetDefault("payment.clientkey", "")
	v.SetDefault("payment.production", false)
	v.SetDefault("payment.premiumprice", 100000)
	v.SetDefault("payment.appurl", "http://localhost:8080")
	v.SetDefault("payment.reconcileafter", "15m")
	v.SetDefault("payment.reconcileschedule", "0 */5 * * * *")
	v.SetDefault("payment.reconcilebatch", 50)

	v.SetDefault("queue.stream", "payment:reconcile")
	v.SetDefault("queue.group", "payment-workers")
	v.SetDefault("queue.consumer", "worker-1")
	v.SetDefault("queue.claiminterval", "10s")

	v.SetDefault("allowcorsorigins", []string{})
}
