package config

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Inference InferenceConfig `mapstructure:"inference"`
	Database  DatabaseConfig  `mapstructure:"database"`
	History   HistoryConfig   `mapstructure:"history"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// InferenceConfig 推理服务配置
type InferenceConfig struct {
	Provider           string        `mapstructure:"provider"` // ollama | openai
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	DefaultModel       string        `mapstructure:"default_model"`
	DefaultTemperature float64       `mapstructure:"default_temperature"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	StreamIdleTimeout  time.Duration `mapstructure:"stream_idle_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql | postgres | memory
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Charset      string `mapstructure:"charset"`
	URL          string `mapstructure:"url"` // postgres 连接串
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// HistoryConfig 历史记录配置
type HistoryConfig struct {
	RecentLimit int `mapstructure:"recent_limit"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | text
	File   string `mapstructure:"file"`   // 为空时输出到标准输出
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > .env > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}
	log.Println("已加载内置默认配置")

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Printf("警告: 无法读取指定配置文件 %s: %v", configPath, err)
		} else {
			log.Printf("已合并外部配置文件: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/chatgate")
		externalViper.AddConfigPath("$HOME/.chatgate")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Printf("警告: 合并外部配置失败: %v", err)
			} else {
				log.Printf("已合并外部配置文件: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	// 3. .env 文件（可选），其中的变量与真实环境变量一样通过 CHATGATE_ 前缀生效
	if err := godotenv.Load(); err == nil {
		log.Println("已加载 .env 文件")
	}

	// 4. 环境变量覆盖
	v.SetEnvPrefix("CHATGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	GlobalConfig = &cfg

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Inference.RequestTimeout <= 0 {
		cfg.Inference.RequestTimeout = 2 * time.Minute
	}
	if cfg.Inference.StreamIdleTimeout <= 0 {
		cfg.Inference.StreamIdleTimeout = time.Minute
	}
	if cfg.History.RecentLimit <= 0 {
		cfg.History.RecentLimit = 10
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.Port != "" && !strings.HasPrefix(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
}

// Validate 校验配置的合法性
func (c *Config) Validate() error {
	switch c.Inference.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("不支持的推理服务类型: %q", c.Inference.Provider)
	}
	if strings.TrimSpace(c.Inference.BaseURL) == "" {
		return fmt.Errorf("inference.base_url 不能为空")
	}
	if strings.TrimSpace(c.Inference.DefaultModel) == "" {
		return fmt.Errorf("inference.default_model 不能为空")
	}
	switch c.Database.Driver {
	case "mysql", "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("postgres 需要配置 database.url")
		}
	default:
		return fmt.Errorf("不支持的数据库类型: %q", c.Database.Driver)
	}
	return nil
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Printf("当前配置:")
	log.Printf("  服务器: %s (模式: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	log.Printf("  推理服务: %s %s (默认模型: %s, 温度: %.2f)",
		GlobalConfig.Inference.Provider,
		GlobalConfig.Inference.BaseURL,
		GlobalConfig.Inference.DefaultModel,
		GlobalConfig.Inference.DefaultTemperature)
	switch GlobalConfig.Database.Driver {
	case "mysql":
		log.Printf("  数据库: mysql %s@%s:%s/%s",
			GlobalConfig.Database.Username,
			GlobalConfig.Database.Host,
			GlobalConfig.Database.Port,
			GlobalConfig.Database.DBName)
	default:
		log.Printf("  数据库: %s", GlobalConfig.Database.Driver)
	}
}
