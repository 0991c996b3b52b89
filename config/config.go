package config

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host    string  `envconfig:"HOST" mapstructure:"host"`
	Port    string  `envconfig:"PORT" mapstructure:"port"`
	Domain  string  `envconfig:"DOMAIN" mapstructure:"domain"`
	Prefix  string  `envconfig:"PREFIX" mapstructure:"prefix"`
	Mode    Mode    `envconfig:"MODE" mapstructure:"mode"`
	Storage Storage `mapstructure:"storage"`
	Mysql   Mysql   `mapstructure:"mysql"`
	Redis   Redis   `mapstructure:"redis"`
	JWT     JWT     `mapstructure:"jwt"`
	Log     Log     `mapstructure:"log"`
	Sentry  Sentry  `mapstructure:"sentry"`
	S3      S3      `mapstructure:"s3"`
	AI      AI      `mapstructure:"ai"`
	Borrow  Borrow  `mapstructure:"borrow"`
	Seed    Seed    `mapstructure:"seed"`
}

// Storage 本地文件存储，未配置 S3 时使用
type Storage struct {
	Home      string `envconfig:"HOME" mapstructure:"home"`
	URLPrefix string `envconfig:"URL_PREFIX" mapstructure:"url_prefix"`
}

type S3 struct {
	Endpoint        string `envconfig:"ENDPOINT" mapstructure:"endpoint"`
	BaseURL         string `envconfig:"BASE_URL" mapstructure:"base_url"`
	Bucket          string `envconfig:"BUCKET" mapstructure:"bucket"`
	Region          string `envconfig:"REGION" mapstructure:"region"`
	AccessKey       string `envconfig:"ACCESS_KEY" mapstructure:"access_key"`
	SecretAccessKey string `envconfig:"SECRET_KEY" mapstructure:"secret_key"`
	Prefix          string `envconfig:"PREFIX" mapstructure:"prefix"`
	UsePathStyle    bool   `envconfig:"PATH_STYLE" mapstructure:"path_style"`
}

type Mysql struct {
	Host     string `envconfig:"HOST" mapstructure:"host"`
	Port     string `envconfig:"PORT" mapstructure:"port"`
	Username string `envconfig:"USERNAME" mapstructure:"username"`
	Password string `envconfig:"PASSWORD" mapstructure:"password"`
	DBName   string `envconfig:"DB_NAME" mapstructure:"db_name"`
}

type Redis struct {
	Host     string `envconfig:"HOST" mapstructure:"host"`
	Port     string `envconfig:"PORT" mapstructure:"port"`
	Password string `envconfig:"PASSWORD" mapstructure:"password"`
	DB       int    `envconfig:"DB" mapstructure:"db"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET" mapstructure:"access_secret"`
	AccessExpire int64  `envconfig:"ACCESS_EXPIRE" mapstructure:"access_expire"` // 秒
}

type Log struct {
	FilePath   string `envconfig:"FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn         string        `envconfig:"DSN" mapstructure:"dsn"`
	Environment string        `envconfig:"ENVIRONMENT" mapstructure:"environment"`
	SampleRate  float64       `envconfig:"SAMPLE_RATE" mapstructure:"sample_rate"` // 性能追踪采样率
	Tracing     SentryTracing `mapstructure:"tracing"`
}

type SentryTracing struct {
	DBSlowThresholdMs    int  `mapstructure:"db_slow_threshold_ms"`
	RedisSlowThresholdMs int  `mapstructure:"redis_slow_threshold_ms"`
	TraceHTTPCalls       bool `mapstructure:"trace_http_calls"`
}

// AI 聊天补全服务配置
type AI struct {
	ApiURL        string  `envconfig:"API_URL" mapstructure:"api_url"`
	ApiKey        string  `envconfig:"API_KEY" mapstructure:"api_key"`
	Model         string  `envconfig:"MODEL" mapstructure:"model"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	SystemMessage string  `mapstructure:"system_message"`
	HistorySize   int     `mapstructure:"history_size"` // 每个用户保留的历史消息条数
	HistoryTTL    int     `mapstructure:"history_ttl"`  // 历史记录过期时间（秒）
	Timeout       int     `mapstructure:"timeout"`      // 请求超时（秒）
}

type Borrow struct {
	DefaultDays  int    `mapstructure:"default_days"`  // 未填写预计归还时间时的默认借用天数
	OverdueSweep string `mapstructure:"overdue_sweep"` // cron 表达式，为空则不启用逾期标记任务
}

// Seed 启动时初始化的管理员账户
type Seed struct {
	AdminUsername string `envconfig:"ADMIN_USERNAME" mapstructure:"admin_username"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" mapstructure:"admin_password"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" mapstructure:"admin_email"`
}
