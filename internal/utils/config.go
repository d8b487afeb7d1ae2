package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the scanner configuration
type Config struct {
	LogLevel  string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`

	// ToolsDir is the fallback location for bundled inspection utilities
	ToolsDir string `yaml:"tools_dir" mapstructure:"tools_dir"`

	// ToolTimeout bounds every external utility invocation
	ToolTimeout time.Duration `yaml:"tool_timeout" mapstructure:"tool_timeout"`

	// RulesFile optionally points at a YAML file with extra signature rules
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`

	Tools ToolPaths `yaml:"tools" mapstructure:"tools"`
}

// ToolPaths holds operator-supplied absolute paths overriding each external
// utility's default location. Empty values fall back to the platform default.
type ToolPaths struct {
	Otool          string `yaml:"otool" mapstructure:"otool"`
	Jtool          string `yaml:"jtool" mapstructure:"jtool"`
	Classdump      string `yaml:"classdump" mapstructure:"classdump"`
	ClassdumpSwift string `yaml:"classdump_swift" mapstructure:"classdump_swift"`
}

// ConfigManager handles configuration loading and management
type ConfigManager struct {
	config *Config
	viper  *viper.Viper
	logger *Logger
}

// NewConfigManager creates a new configuration manager
func NewConfigManager(logger *Logger) *ConfigManager {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &ConfigManager{
		config: &Config{},
		viper:  viper.New(),
		logger: logger,
	}
}

// LoadConfig loads configuration from defaults, an optional file, and
// MACHOSCAN_* environment variables, in increasing precedence.
func (c *ConfigManager) LoadConfig(configFile string) error {
	c.setDefaults()

	c.viper.SetConfigType("yaml")
	c.viper.SetEnvPrefix("MACHOSCAN")
	c.viper.AutomaticEnv()
	c.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		c.viper.SetConfigFile(configFile)
		if err := c.viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
			c.logger.WithComponent("config").Warnf("Config file not found: %s", configFile)
		}
	} else {
		c.viper.SetConfigName("config")
		c.viper.AddConfigPath(".")
		c.viper.AddConfigPath("$HOME/.machoscan")
		if err := c.viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("failed to read config file: %w", err)
			}
			c.logger.WithComponent("config").Debug("No config file found, using defaults and environment variables")
		}
	}

	if err := c.viper.Unmarshal(c.config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return c.validate()
}

// Config returns the loaded configuration
func (c *ConfigManager) Config() *Config {
	return c.config
}

func (c *ConfigManager) setDefaults() {
	c.viper.SetDefault("log_level", "info")
	c.viper.SetDefault("log_format", "text")
	c.viper.SetDefault("tools_dir", "tools")
	c.viper.SetDefault("tool_timeout", 60*time.Second)
	c.viper.SetDefault("rules_file", "")
	c.viper.SetDefault("tools.otool", "")
	c.viper.SetDefault("tools.jtool", "")
	c.viper.SetDefault("tools.classdump", "")
	c.viper.SetDefault("tools.classdump_swift", "")
}

func (c *ConfigManager) validate() error {
	if c.config.ToolTimeout < 0 {
		return fmt.Errorf("tool_timeout must not be negative: %s", c.config.ToolTimeout)
	}
	for _, override := range []struct {
		name string
		path string
	}{
		{"tools.otool", c.config.Tools.Otool},
		{"tools.jtool", c.config.Tools.Jtool},
		{"tools.classdump", c.config.Tools.Classdump},
		{"tools.classdump_swift", c.config.Tools.ClassdumpSwift},
	} {
		if override.path == "" {
			continue
		}
		if _, err := os.Stat(override.path); err != nil {
			// An override pointing nowhere silently falls back to the
			// platform default, matching the file-exists check at
			// resolution time. Surface it early instead.
			c.logger.WithComponent("config").Warnf("%s override does not exist: %s", override.name, override.path)
		}
	}
	return nil
}

// DefaultConfig returns a Config populated with defaults only
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		ToolsDir:    "tools",
		ToolTimeout: 60 * time.Second,
	}
}
