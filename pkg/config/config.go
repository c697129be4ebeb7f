package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/betbot/brokersync/internal/domain"
)

// BrokerConfig 单个交易所的接入配置（按交易所标识区分）
type BrokerConfig struct {
	BaseURL     string `yaml:"base_url"`
	Pair        string `yaml:"pair"`
	TradingMode string `yaml:"trading_mode"` // cash / margin_open / net_out
	APIKey      string `yaml:"api_key"`      // 优先从环境变量 {BROKER}_API_KEY 读取
	APISecret   string `yaml:"api_secret"`   // 优先从环境变量 {BROKER}_API_SECRET 读取
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Config 应用配置
type Config struct {
	Broker       string                  `yaml:"broker"` // 当前使用的交易所标识
	Brokers      map[string]BrokerConfig `yaml:"brokers"`
	QuoteLevels  int                     `yaml:"quote_levels"`  // 盘口快照每侧最大档数（默认100）
	PollInterval int                     `yaml:"poll_interval"` // broker-watcher 轮询间隔（秒）
	Log          LogConfig               `yaml:"log"`
}

// ActiveBroker 返回当前选中交易所的接入配置
func (c *Config) ActiveBroker() (BrokerConfig, error) {
	bc, ok := c.Brokers[c.Broker]
	if !ok {
		return BrokerConfig{}, fmt.Errorf("配置中不存在交易所 %q", c.Broker)
	}
	return bc, nil
}

// Mode 解析当前交易所的交易模式
func (bc BrokerConfig) Mode() (domain.TradingMode, error) {
	switch strings.ToLower(strings.TrimSpace(bc.TradingMode)) {
	case "", "cash":
		return domain.TradingModeCash, nil
	case "margin_open", "margin":
		return domain.TradingModeMarginOpen, nil
	case "net_out", "netout":
		return domain.TradingModeNetOut, nil
	default:
		return "", fmt.Errorf("未知的交易模式: %q", bc.TradingMode)
	}
}

// Load 从 yaml 文件加载配置，并用环境变量覆盖敏感字段。
//
// 优先级：环境变量 > yaml 配置 > 默认值。
// 环境变量命名按交易所标识区分，例如 COINCHECK_API_KEY / COINCHECK_API_SECRET。
func Load(filePath string) (*Config, error) {
	// .env 文件可选，不存在时忽略
	_ = godotenv.Load()

	cfg := &Config{
		Broker:       "coincheck",
		QuoteLevels:  100,
		PollInterval: 3,
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败 %s: %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败 %s: %w", filePath, err)
		}
	}

	if cfg.Brokers == nil {
		cfg.Brokers = make(map[string]BrokerConfig)
	}

	// 环境变量覆盖（凭证绝不写进 yaml 提交）
	for name, bc := range cfg.Brokers {
		prefix := strings.ToUpper(name)
		if v := os.Getenv(prefix + "_API_KEY"); v != "" {
			bc.APIKey = v
		}
		if v := os.Getenv(prefix + "_API_SECRET"); v != "" {
			bc.APISecret = v
		}
		cfg.Brokers[name] = bc
	}
	if v := os.Getenv("BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := os.Getenv("QUOTE_LEVELS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.QuoteLevels = n
		}
	}

	if cfg.QuoteLevels <= 0 {
		cfg.QuoteLevels = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3
	}

	return cfg, nil
}
