package configuration

import (
	"errors"
	"fmt"
	"os"

	"yt-analytics/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	YouTube  YouTube  `mapstructure:"youtube"`
	Output   Output   `mapstructure:"output"`
	Schedule Schedule `mapstructure:"schedule"`
	Logger   Logger   `mapstructure:"logger"`
	Archive  Archive  `mapstructure:"archive"`
	Notify   Notify   `mapstructure:"notify"`
}

type YouTube struct {
	ClientID          string  `mapstructure:"clientId"`
	ClientSecret      string  `mapstructure:"clientSecret"`
	RefreshToken      string  `mapstructure:"refreshToken"`
	RedirectURI       string  `mapstructure:"redirectURI"`
	TokenURL          string  `mapstructure:"tokenURL"`
	AnalyticsEndpoint string  `mapstructure:"analyticsEndpoint"`
	DataEndpoint      string  `mapstructure:"dataEndpoint"`
	TimeoutSeconds    int     `mapstructure:"timeoutSeconds"`
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
}

type Output struct {
	Dir string `mapstructure:"dir"`
}

type Schedule struct {
	Cron string `mapstructure:"cron"`
}

type Logger struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// Archive lists the enabled secondary stores and their connection settings
type Archive struct {
	Drivers []string `mapstructure:"drivers"`
	Psql    Db       `mapstructure:"psql"`
	Mssql   Db       `mapstructure:"mssql"`
	MySql   Db       `mapstructure:"mysql"`
	Mongo   Mongo    `mapstructure:"mongo"`
	Redis   Redis    `mapstructure:"redis"`
	S3      S3       `mapstructure:"s3"`
}

type Db struct {
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type Mongo struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type Redis struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	TTLHours int    `mapstructure:"ttlHours"`
}

type S3 struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Prefix    string `mapstructure:"prefix"`
}

// Notify holds broker settings; a notifier is enabled when its target is set
type Notify struct {
	PubSub     PubSub     `mapstructure:"pubsub"`
	ServiceBus ServiceBus `mapstructure:"serviceBus"`
	Asynq      Asynq      `mapstructure:"asynq"`
}

type PubSub struct {
	ProjectID string `mapstructure:"projectId"`
	Topic     string `mapstructure:"topic"`
}

type ServiceBus struct {
	Namespace string `mapstructure:"namespace"`
	Queue     string `mapstructure:"queue"`
}

type Asynq struct {
	RedisAddr string `mapstructure:"redisAddr"`
	Queue     string `mapstructure:"queue"`
}

var C Config

// LoadConfig reads config[-ENV].json (optional) into C and applies defaults and env overrides.
// name overrides the config file base name when non-empty.
func LoadConfig(name string) error {
	if name == "" {
		name = getConfig()
	}
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config %s: %w", name, err)
		}
		logger.GetLogger().WithField("config", name).Warn("Config file not found, using defaults and environment")
	} else {
		logger.GetLogger().WithField("config", v.ConfigFileUsed()).Info("Config set up successfully")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	initOutput(&cfg)
	initSchedule(&cfg)
	initNotify(&cfg)
	C = cfg
	logger.Configure(C.Logger.Format, getEnv("LOG_LEVEL", C.Logger.Level))
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", "data")
	v.SetDefault("youtube.timeoutSeconds", 60)
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.level", "info")
	v.SetDefault("archive.mongo.database", "yt_analytics")
	v.SetDefault("archive.mongo.collection", "video_snapshots")
	v.SetDefault("archive.redis.ttlHours", 48)
	v.SetDefault("archive.s3.region", "auto")
	v.SetDefault("notify.asynq.queue", "default")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initOutput(C *Config) {
	C.Output.Dir = getConfigValue(C.Output.Dir, "OUTPUT_DIR", "data")
}

func initSchedule(C *Config) {
	C.Schedule.Cron = getConfigValue(C.Schedule.Cron, "SCHEDULE_CRON", "")
}

func initNotify(C *Config) {
	C.Notify.PubSub.ProjectID = getConfigValue(C.Notify.PubSub.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.Notify.PubSub.Topic = getConfigValue(C.Notify.PubSub.Topic, "PUBSUB_TOPIC", "")
	C.Notify.ServiceBus.Namespace = getConfigValue(C.Notify.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
	C.Notify.ServiceBus.Queue = getConfigValue(C.Notify.ServiceBus.Queue, "SERVICEBUS_QUEUE", "")
	C.Notify.Asynq.RedisAddr = getConfigValue(C.Notify.Asynq.RedisAddr, "ASYNQ_REDIS_ADDR", "")
}
