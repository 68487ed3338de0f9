package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/secureport/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Security SecurityConfig `mapstructure:"security"`
	Site     SiteConfig     `mapstructure:"site"`
}

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Mode string `mapstructure:"mode"` // debug / release
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host                   string   `mapstructure:"host"`
	Port                   string   `mapstructure:"port"`
	ReadHeaderTimeoutSec   int      `mapstructure:"read_header_timeout_seconds"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds     int      `mapstructure:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds"`
	TrustedProxies         []string `mapstructure:"trusted_proxies"`
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
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
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Stdout:     c.Stdout,
	}
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// CaptchaConfig 验证码配置
// provider: recaptcha / turnstile / hcaptcha / image / none
type CaptchaConfig struct {
	Provider  string             `mapstructure:"provider"`
	SiteKey   string             `mapstructure:"site_key"`
	SecretKey string             `mapstructure:"secret_key"`
	VerifyURL string             `mapstructure:"verify_url"`
	TimeoutMS int                `mapstructure:"timeout_ms"`
	MinScore  float64            `mapstructure:"min_score"`
	Image     CaptchaImageConfig `mapstructure:"image"`
}

// CaptchaImageConfig 图片验证码配置
type CaptchaImageConfig struct {
	Length        int `mapstructure:"length"`
	Width         int `mapstructure:"width"`
	Height        int `mapstructure:"height"`
	NoiseCount    int `mapstructure:"noise_count"`
	ShowLine      int `mapstructure:"show_line"`
	ExpireSeconds int `mapstructure:"expire_seconds"`
	MaxStore      int `mapstructure:"max_store"`
}

// NotifyConfig 联系表单投递配置
type NotifyConfig struct {
	Sinks    []string       `mapstructure:"sinks"` // log / email / telegram
	Email    EmailConfig    `mapstructure:"email"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// EmailConfig SMTP 配置
type EmailConfig struct {
	Host          string   `mapstructure:"host"`
	Port          int      `mapstructure:"port"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	From          string   `mapstructure:"from"`
	FromName      string   `mapstructure:"from_name"`
	To            []string `mapstructure:"to"`
	SubjectPrefix string   `mapstructure:"subject_prefix"`
	UseTLS        bool     `mapstructure:"use_tls"`
	UseSSL        bool     `mapstructure:"use_ssl"`
}

// TelegramConfig Telegram Bot 配置
type TelegramConfig struct {
	BotToken  string `mapstructure:"bot_token"`
	ChatID    string `mapstructure:"chat_id"`
	APIBase   string `mapstructure:"api_base"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	ContactRateLimit ContactRateLimitConfig `mapstructure:"contact_rate_limit"`
	Headers          SecurityHeadersConfig  `mapstructure:"headers"`
}

// ContactRateLimitConfig 联系表单限流配置
// backend: none / memory / redis，默认 none
type ContactRateLimitConfig struct {
	Backend       string `mapstructure:"backend"`
	WindowSeconds int    `mapstructure:"window_seconds"`
	MaxRequests   int    `mapstructure:"max_requests"`
}

// SecurityHeadersConfig 安全响应头配置
type SecurityHeadersConfig struct {
	Enabled bool `mapstructure:"enabled"`
	HSTS    bool `mapstructure:"hsts"`
}

// SiteConfig 站点展示配置
type SiteConfig struct {
	Title            string `mapstructure:"title"`
	Description      string `mapstructure:"description"`
	Production       bool   `mapstructure:"production"`
	PlaceholderImage string `mapstructure:"placeholder_image"`
	ContentFile      string `mapstructure:"content_file"`
	GatewayURL       string `mapstructure:"gateway_url"`
}

// Load 从 config.yml 加载配置，失败时直接 panic
func Load() *Config {
	cfg, err := LoadFrom(viper.New(), ".", "./config", "../", "./etc")
	if err != nil {
		logger.Errorw("config_load_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

// LoadFrom 使用指定 viper 实例加载配置
// 配置文件缺失时回落到环境变量与默认值
func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	setDefaults(v)

	// 环境变量支持（例如 captcha.secret_key -> CAPTCHA_SECRET_KEY）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		logger.Warnw("config_file_not_found", "fallback", "env_or_defaults")
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "secureport")
	v.SetDefault("app.mode", "debug")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout_seconds", 5)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "secureport.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.stdout", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Accept", "X-Requested-With", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("captcha.provider", "recaptcha")
	v.SetDefault("captcha.site_key", "")
	v.SetDefault("captcha.secret_key", "")
	v.SetDefault("captcha.verify_url", "")
	v.SetDefault("captcha.timeout_ms", 5000)
	v.SetDefault("captcha.min_score", 0)
	v.SetDefault("captcha.image.length", 5)
	v.SetDefault("captcha.image.width", 240)
	v.SetDefault("captcha.image.height", 80)
	v.SetDefault("captcha.image.noise_count", 2)
	v.SetDefault("captcha.image.show_line", 2)
	v.SetDefault("captcha.image.expire_seconds", 300)
	v.SetDefault("captcha.image.max_store", 10240)
	v.SetDefault("notify.sinks", []string{"log"})
	v.SetDefault("notify.email.host", "")
	v.SetDefault("notify.email.port", 587)
	v.SetDefault("notify.email.username", "")
	v.SetDefault("notify.email.password", "")
	v.SetDefault("notify.email.from", "")
	v.SetDefault("notify.email.from_name", "SecurePort Website")
	v.SetDefault("notify.email.to", []string{})
	v.SetDefault("notify.email.subject_prefix", "[SecurePort]")
	v.SetDefault("notify.email.use_tls", true)
	v.SetDefault("notify.email.use_ssl", false)
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", "")
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("notify.telegram.timeout_ms", 5000)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sp")
	v.SetDefault("security.contact_rate_limit.backend", "none")
	v.SetDefault("security.contact_rate_limit.window_seconds", 60)
	v.SetDefault("security.contact_rate_limit.max_requests", 5)
	v.SetDefault("security.headers.enabled", true)
	v.SetDefault("security.headers.hsts", false)
	v.SetDefault("site.title", "SecurePort | Cybersecurity Solutions")
	v.SetDefault("site.description", "Leading provider of comprehensive cybersecurity solutions. Protect your digital assets with SecurePort's advanced security services and expert consulting.")
	v.SetDefault("site.production", false)
	v.SetDefault("site.placeholder_image", "https://placehold.co/600x400/064e3b/ffffff?text=Coming+Soon")
	v.SetDefault("site.content_file", "")
	v.SetDefault("site.gateway_url", "")
}

func (c *Config) normalize() {
	c.App.Mode = strings.ToLower(strings.TrimSpace(c.App.Mode))
	if c.App.Mode != "release" {
		c.App.Mode = "debug"
	}
	c.Captcha.Provider = strings.ToLower(strings.TrimSpace(c.Captcha.Provider))
	c.Captcha.SiteKey = strings.TrimSpace(c.Captcha.SiteKey)
	c.Captcha.SecretKey = strings.TrimSpace(c.Captcha.SecretKey)
	c.Captcha.VerifyURL = strings.TrimSpace(c.Captcha.VerifyURL)
	c.Security.ContactRateLimit.Backend = strings.ToLower(strings.TrimSpace(c.Security.ContactRateLimit.Backend))

	sinks := make([]string, 0, len(c.Notify.Sinks))
	for _, sink := range c.Notify.Sinks {
		// 环境变量形式 NOTIFY_SINKS="log,email" 会被解析为单个元素
		for _, part := range strings.Split(sink, ",") {
			if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
				sinks = append(sinks, name)
			}
		}
	}
	c.Notify.Sinks = sinks
}

// IsRelease 是否为生产模式
func (c *Config) IsRelease() bool {
	return c != nil && c.App.Mode == "release"
}

// Redacted 返回隐藏敏感字段后的副本，用于启动日志
func (c Config) Redacted() Config {
	c.Captcha.SecretKey = mask(c.Captcha.SecretKey)
	c.Notify.Email.Password = mask(c.Notify.Email.Password)
	c.Notify.Telegram.BotToken = mask(c.Notify.Telegram.BotToken)
	c.Redis.Password = mask(c.Redis.Password)
	return c
}

func mask(value string) string {
	if value == "" {
		return ""
	}
	return "******"
}
