package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Coverage CoverageConfig `mapstructure:"coverage"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	MaxSize          int64    `mapstructure:"max_size"`
	UploadDir        string   `mapstructure:"upload_dir"`
	AllowedTypes     []string `mapstructure:"allowed_types"`
	CleanupTempFiles bool     `mapstructure:"cleanup_temp_files"`
}

// CoverageConfig 覆盖率计算配置
type CoverageConfig struct {
	DefaultMaskPath string `mapstructure:"default_mask_path"`
	// ChannelOrder 掩码生成工具写入调色板时使用的通道顺序 (bgr / rgb)
	ChannelOrder string `mapstructure:"channel_order"`
}

// DatasetConfig 数据集目录配置
type DatasetConfig struct {
	ImageDir string `mapstructure:"image_dir"`
	MaskDir  string `mapstructure:"mask_dir"`
}

// Load 从 YAML 文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 使用给定路径加载配置，失败时回退到默认配置
func New(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return Default()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("log.mode", "debug")
	v.SetDefault("log.level", "info")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.upload_dir", "./uploads")
	v.SetDefault("upload.allowed_types", []string{"image/png", "image/x-png", "image/bmp", "image/tiff"})
	v.SetDefault("upload.cleanup_temp_files", true)

	v.SetDefault("coverage.default_mask_path", "../dataset/images/output_338.png")
	v.SetDefault("coverage.channel_order", "bgr")

	v.SetDefault("dataset.image_dir", "../dataset/images")
	v.SetDefault("dataset.mask_dir", "../dataset/masks")
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			Mode:         "debug",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Mode:  "debug",
			Level: "info",
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		Upload: UploadConfig{
			MaxSize:          10 * 1024 * 1024,
			UploadDir:        "./uploads",
			AllowedTypes:     []string{"image/png", "image/x-png", "image/bmp", "image/tiff"},
			CleanupTempFiles: true,
		},
		Coverage: CoverageConfig{
			DefaultMaskPath: "../dataset/images/output_338.png",
			ChannelOrder:    "bgr",
		},
		Dataset: DatasetConfig{
			ImageDir: "../dataset/images",
			MaskDir:  "../dataset/masks",
		},
	}
}
