package configs

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AppConfig is the whole process configuration.
type AppConfig struct {
	DatabaseConfig       DatabaseConfig       `yaml:"database"`
	DatabaseOptionConfig DatabaseOptionConfig `yaml:"databaseConfig"`
	RedisConfig          RedisConfig          `yaml:"redis"`
	EndpointRepoConfig   EndpointRepoConfig   `yaml:"endpointRepo"`
	ApiConfig            ApiConfig            `yaml:"api"`
	ForwardConfig        ForwardConfig        `yaml:"forward"`
	ServerConfig         ServerConfig         `yaml:"server"`
}

// EndpointRepoConfig 封装 endpointRepoImpl 的配置参数
type EndpointRepoConfig struct {
	RedisCacheRetryCount  int           `json:"redisCacheRetryCount" yaml:"redisCacheRetryCount"`
	RedisCacheRetryDelay  time.Duration `json:"redisCacheRetryDelay" yaml:"redisCacheRetryDelay"`
	SaveDBRetryCount      int           `json:"saveDBRetryCount" yaml:"saveDBRetryCount"`
	SaveDBRetryDelay      time.Duration `json:"saveDBRetryDelay" yaml:"saveDBRetryDelay"`
	IndexUpdateRetryCount int           `json:"indexUpdateRetryCount" yaml:"indexUpdateRetryCount"`
	IndexUpdateRetryDelay time.Duration `json:"indexUpdateRetryDelay" yaml:"indexUpdateRetryDelay"`
	IndexUpdatePoolSize   int           `json:"indexUpdatePoolSize" yaml:"indexUpdatePoolSize"`
}

// LoadAppConfig loads the configuration file picked by getConfigPath.
func LoadAppConfig() (*AppConfig, error) {
	return LoadAppConfigFromFile(getConfigPath())
}

func LoadAppConfigFromFile(path string) (*AppConfig, error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseAppConfig(configFile)
}

// ParseAppConfig decodes, defaults and validates a YAML document.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	config := &AppConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	if path := os.Getenv("CAPTURE_PROXY_CONFIG_PATH"); path != "" {
		return path
	}

	env := os.Getenv("CAPTURE_PROXY_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("conf/app.%s.yaml", env)
}

func (c *AppConfig) applyDefaults() {
	if c.DatabaseConfig.Driver == "" {
		c.DatabaseConfig.Driver = DriverMySQL
	}

	opt := &c.DatabaseOptionConfig
	if opt.MaxIdleConns == 0 {
		opt.MaxIdleConns = 10
	}
	if opt.MaxOpenConns == 0 {
		opt.MaxOpenConns = 50
	}

	repo := &c.EndpointRepoConfig
	if repo.RedisCacheRetryCount == 0 {
		repo.RedisCacheRetryCount = 3
	}
	if repo.SaveDBRetryCount == 0 {
		repo.SaveDBRetryCount = 3
	}
	if repo.IndexUpdateRetryCount == 0 {
		repo.IndexUpdateRetryCount = 3
	}
	if repo.IndexUpdatePoolSize == 0 {
		repo.IndexUpdatePoolSize = 10
	}

	if c.ApiConfig.CaptureMode == "" {
		c.ApiConfig.CaptureMode = "miss"
	}

	fwd := &c.ForwardConfig
	if fwd.Timeout == 0 {
		fwd.Timeout = 30 * time.Second
	}
	if fwd.RetryCount == 0 {
		fwd.RetryCount = 1
	}
	if fwd.DropHeaders == nil {
		fwd.DropHeaders = []string{"Host", "Content-Length"}
	}

	if c.ServerConfig.ProxyAddr == "" {
		c.ServerConfig.ProxyAddr = ":8080"
	}
}

// validate 验证配置
func (c *AppConfig) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	db := c.DatabaseConfig
	switch db.Driver {
	case DriverSQLite:
		if db.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	default:
		if db.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if db.Port == 0 {
			return fmt.Errorf("database port is required")
		}
		if db.Username == "" {
			return fmt.Errorf("database username is required")
		}
		if db.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	dbConfig := c.DatabaseOptionConfig
	if dbConfig.MaxIdleConns <= 0 {
		return fmt.Errorf("maxIdleConns must be positive")
	}
	if dbConfig.MaxOpenConns <= 0 {
		return fmt.Errorf("maxOpenConns must be positive")
	}
	if dbConfig.MaxOpenConns < dbConfig.MaxIdleConns {
		return fmt.Errorf("maxOpenConns must be greater than or equal to maxIdleConns")
	}

	if c.RedisConfig.Host == "" {
		return fmt.Errorf("redis host is required")
	}

	return nil
}

// NewEndpointRepoConfig, NewApiConfig and NewForwardConfig expose the
// sections as wire providers.
func NewEndpointRepoConfig(c *AppConfig) *EndpointRepoConfig {
	return &c.EndpointRepoConfig
}

func NewApiConfig(c *AppConfig) *ApiConfig {
	return &c.ApiConfig
}

func NewForwardConfig(c *AppConfig) *ForwardConfig {
	return &c.ForwardConfig
}
