package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"cv-assistant-go/internal/constants"
	"cv-assistant-go/internal/logger"
)

// GeminiConfig 外部大模型服务配置
type GeminiConfig struct {
	APIKey      string  `yaml:"api_key"`
	APIURL      string  `yaml:"api_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	// 单次调用超时，例如 "30s"，空值表示不设置
	RequestTimeout string `yaml:"request_timeout"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Address string `yaml:"address"` // 例如 ":8080" or "0.0.0.0:8080"
	// 执行模式：development 模式下错误响应包含内部细节
	Environment string `yaml:"environment"`
}

// SessionConfig 会话存储配置
type SessionConfig struct {
	// 空闲超过该分钟数的会话会被后台清理任务删除
	TTLMinutes int `yaml:"ttl_minutes"`
	// 清理任务的运行间隔(分钟)
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
	// 会话数上限，0表示不限制。超限时插入新会话会淘汰最久未访问的会话
	MaxEntries int `yaml:"max_entries"`
}

// TTL 返回会话空闲阈值
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return constants.DefaultSessionTTL
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// SweepInterval 返回清理任务间隔
func (s SessionConfig) SweepInterval() time.Duration {
	if s.SweepIntervalMinutes <= 0 {
		return constants.DefaultSweepInterval
	}
	return time.Duration(s.SweepIntervalMinutes) * time.Minute
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`      // OTLP gRPC endpoint，例如 "localhost:4317"
	SamplingRate float64 `yaml:"sampling_rate"` // 0.0 - 1.0
	ServiceName  string  `yaml:"service_name"`
}

// Config 应用程序配置
type Config struct {
	Gemini  GeminiConfig  `yaml:"gemini"`
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Tracing TracingConfig `yaml:"tracing"`
	Logger  logger.Config `yaml:"logger"`
}

// IsDevelopment 判断是否处于开发模式
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// LoadConfig 从文件加载配置，并用环境变量覆盖敏感项。
// configPath 为空时在常见位置查找配置文件；找不到文件时
// 使用默认值（环境变量仍然生效），保证无配置文件也能启动。
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	path := configPath
	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("未配置 Gemini API Key (配置文件 gemini.api_key 或环境变量 GEMINI_API_KEY)")
	}

	return cfg, nil
}

// defaultConfig 返回内置默认配置
func defaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:       "gemini-1.5-flash",
			Temperature: 0.5,
			MaxTokens:   2000,
		},
		Server: ServerConfig{
			Address:     ":5000",
			Environment: "production",
		},
		Session: SessionConfig{
			TTLMinutes:           60,
			SweepIntervalMinutes: 30,
		},
		Tracing: TracingConfig{
			SamplingRate: 1.0,
			ServiceName:  "cv-assistant",
		},
		Logger: logger.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// findConfigFile 在常见位置查找配置文件
func findConfigFile() string {
	searchPaths := []string{
		"config.yaml",
		"./config.yaml",
		"../config.yaml",
		"internal/config/config.yaml",
		filepath.Join(os.Getenv("HOME"), ".cv-assistant", "config.yaml"),
	}

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths,
			filepath.Join(execDir, "config.yaml"),
			filepath.Join(execDir, "..", "config.yaml"),
		)
	}

	for _, p := range searchPaths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// applyEnvOverrides 环境变量优先于配置文件
func applyEnvOverrides(cfg *Config) {
	if envKey := os.Getenv("GEMINI_API_KEY"); envKey != "" {
		cfg.Gemini.APIKey = envKey
	}
	if envURL := os.Getenv("GEMINI_API_URL"); envURL != "" {
		cfg.Gemini.APIURL = envURL
	}
	if envModel := os.Getenv("GEMINI_MODEL"); envModel != "" {
		cfg.Gemini.Model = envModel
	}
	if envAddr := os.Getenv("SERVER_ADDRESS"); envAddr != "" {
		cfg.Server.Address = envAddr
	}
	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.Address = ":" + envPort
	}
	if envMode := os.Getenv("APP_ENV"); envMode != "" {
		cfg.Server.Environment = envMode
	}
}
