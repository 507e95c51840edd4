package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Email     EmailConfig     `mapstructure:"email"`
	Push      PushConfig      `mapstructure:"push"`
	Order     OrderConfig     `mapstructure:"order"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Stdout:     c.Stdout,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置（订单锁、限流）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// KafkaConfig 订单事件投递配置
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"` // 逗号分隔
	Topic   string `mapstructure:"topic"`
}

// JWTConfig 令牌校验配置（签发由外部认证服务负责）
type JWTConfig struct {
	CustomerSecret string `mapstructure:"customer_secret"`
	StaffSecret    string `mapstructure:"staff_secret"`
}

// EmailConfig 邮件服务配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	UseTLS   bool   `mapstructure:"use_tls"`
	UseSSL   bool   `mapstructure:"use_ssl"`
}

// PushConfig 推送服务配置
type PushConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	ServerKey string `mapstructure:"server_key"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// OrderConfig 订单配置
type OrderConfig struct {
	PaymentTimeoutMinutes int    `mapstructure:"payment_timeout_minutes"`
	OrderNoPrefix         string `mapstructure:"order_no_prefix"`
}

// PaymentTimeout 网关支付超时时长
func (c OrderConfig) PaymentTimeout() time.Duration {
	if c.PaymentTimeoutMinutes <= 0 {
		return 16 * time.Minute
	}
	return time.Duration(c.PaymentTimeoutMinutes) * time.Minute
}

// PaymentConfig 支付网关配置
type PaymentConfig struct {
	CallbackBaseURL string             `mapstructure:"callback_base_url"` // 本服务对外地址，用于拼接回调
	ReturnURLs      PlatformReturnURLs `mapstructure:"return_urls"`
	VNPay           VNPayGatewayConfig `mapstructure:"vnpay"`
	MoMo            MoMoGatewayConfig  `mapstructure:"momo"`
}

// PlatformReturnURLs 支付完成后按平台跳转的地址
type PlatformReturnURLs struct {
	Web    string `mapstructure:"web"`
	Staff  string `mapstructure:"staff"`
	Mobile string `mapstructure:"mobile"` // 移动端 deep link
}

// VNPayGatewayConfig VNPay 配置
type VNPayGatewayConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	PayURL     string `mapstructure:"pay_url"`
	TmnCode    string `mapstructure:"tmn_code"`
	HashSecret string `mapstructure:"hash_secret"`
	Locale     string `mapstructure:"locale"`
	CurrCode   string `mapstructure:"curr_code"`
}

// MoMoGatewayConfig MoMo 配置
type MoMoGatewayConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	PartnerCode string `mapstructure:"partner_code"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	RequestType string `mapstructure:"request_type"`
	TimeoutMS   int    `mapstructure:"timeout_ms"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// RateLimitConfig 下单限流配置
type RateLimitConfig struct {
	OrderCreate RateLimitWindow `mapstructure:"order_create"`
}

// RateLimitWindow 固定窗口限流
type RateLimitWindow struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("./etc")

	SetDefaults(v)

	// 环境变量支持（server.port -> SERVER_PORT）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return &cfg
}

// SetDefaults 写入默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/storefront.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sf")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"critical": 6,
		"default":  3,
	})
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "127.0.0.1:9092")
	v.SetDefault("kafka.topic", "storefront.orders")
	v.SetDefault("jwt.customer_secret", "")
	v.SetDefault("jwt.staff_secret", "")
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("push.enabled", false)
	v.SetDefault("push.endpoint", "https://fcm.googleapis.com/fcm/send")
	v.SetDefault("push.server_key", "")
	v.SetDefault("push.timeout_ms", 5000)
	v.SetDefault("order.payment_timeout_minutes", 16)
	v.SetDefault("order.order_no_prefix", "SF")
	v.SetDefault("payment.callback_base_url", "http://127.0.0.1:8080")
	v.SetDefault("payment.return_urls.web", "http://127.0.0.1:3000/checkout/result")
	v.SetDefault("payment.return_urls.staff", "http://127.0.0.1:3001/pos/orders")
	v.SetDefault("payment.return_urls.mobile", "storefront://orders")
	v.SetDefault("payment.vnpay.enabled", false)
	v.SetDefault("payment.vnpay.pay_url", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	v.SetDefault("payment.vnpay.locale", "vn")
	v.SetDefault("payment.vnpay.curr_code", "VND")
	v.SetDefault("payment.momo.enabled", false)
	v.SetDefault("payment.momo.endpoint", "https://test-payment.momo.vn")
	v.SetDefault("payment.momo.request_type", "captureWallet")
	v.SetDefault("payment.momo.timeout_ms", 10000)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("rate_limit.order_create.window_seconds", 60)
	v.SetDefault("rate_limit.order_create.max_requests", 10)
}
