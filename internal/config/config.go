package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	BackgroundTasks struct {
		MaxConcurrentTasks int           `yaml:"max_concurrent_tasks" default:"50"`
		TaskTimeout        time.Duration `yaml:"task_timeout" default:"300s"`
		CleanupInterval    time.Duration `yaml:"cleanup_interval" default:"1h"`
		MaxTaskAge         time.Duration `yaml:"max_task_age" default:"24h"`
	} `yaml:"background_tasks"`

	LLM struct {
		Provider      string  `yaml:"provider"`
		APIKey        string  `yaml:"api_key"`
		Model         string  `yaml:"model"`
		APIBase       string  `yaml:"api_base"`
		MaxTokens     int     `yaml:"max_tokens"`
		Temperature   float64 `yaml:"temperature" default:"-1"`
		Timeout       int     `yaml:"timeout"` // seconds
		RetryAttempts int     `yaml:"retry_attempts" default:"2"`
		RateLimit     int     `yaml:"rate_limit" default:"60"` // requests per minute

		EnableLocalFallback bool   `yaml:"enable_local_fallback"`
		LocalBaseURL        string `yaml:"local_base_url" default:"http://localhost:11434/v1"`
		LocalModel          string `yaml:"local_model" default:"llama3.2"`
	} `yaml:"llm"`

	Prompts struct {
		Dir string `yaml:"dir"`
	} `yaml:"prompts"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	Spaces struct {
		BucketURL       string `yaml:"bucket_url"`
		CDNEndpoint     string `yaml:"cdn_endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		AccessKeySecret string `yaml:"access_key_secret"`
		Region          string `yaml:"region" default:"blr1"`
		BucketName      string `yaml:"bucket_name" default:"cvforge-artifacts"`
	} `yaml:"spaces"`

	PDF struct {
		RendererURL string        `yaml:"renderer_url"`
		TempDir     string        `yaml:"temp_dir" default:"/tmp/cvforge-latex"`
		Timeout     time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"pdf"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.BackgroundTasks.MaxConcurrentTasks = 50
	config.BackgroundTasks.TaskTimeout = 300 * time.Second
	config.BackgroundTasks.CleanupInterval = 1 * time.Hour
	config.BackgroundTasks.MaxTaskAge = 24 * time.Hour

	// Provider-specific gaps are filled during profile resolution, so the
	// generic LLM settings start empty. Temperature -1 means "not set".
	config.LLM.Temperature = -1
	config.LLM.RetryAttempts = 2
	config.LLM.RateLimit = 60
	config.LLM.LocalBaseURL = "http://localhost:11434/v1"
	config.LLM.LocalModel = "llama3.2"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.Spaces.Region = "blr1"
	config.Spaces.BucketName = "cvforge-artifacts"

	config.PDF.TempDir = "/tmp/cvforge-latex"
	config.PDF.Timeout = 60 * time.Second

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	} else if model := os.Getenv("MODEL_NAME"); model != "" {
		c.LLM.Model = model
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	} else if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if apiBase := os.Getenv("LLM_API_BASE"); apiBase != "" {
		c.LLM.APIBase = apiBase
	} else if apiBase := os.Getenv("API_BASE"); apiBase != "" {
		c.LLM.APIBase = apiBase
	}

	if temp := os.Getenv("LLM_TEMPERATURE"); temp != "" {
		if t, err := strconv.ParseFloat(temp, 64); err == nil {
			c.LLM.Temperature = t
		}
	}

	if maxTokens := os.Getenv("LLM_MAX_TOKENS"); maxTokens != "" {
		if n, err := strconv.Atoi(maxTokens); err == nil {
			c.LLM.MaxTokens = n
		}
	}

	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		if n, err := strconv.Atoi(timeout); err == nil {
			c.LLM.Timeout = n
		}
	}

	if retries := os.Getenv("LLM_RETRY_ATTEMPTS"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil {
			c.LLM.RetryAttempts = n
		}
	}

	if rateLimit := os.Getenv("LLM_RATE_LIMIT"); rateLimit != "" {
		if n, err := strconv.Atoi(rateLimit); err == nil {
			c.LLM.RateLimit = n
		}
	}

	if fallback := os.Getenv("ENABLE_LOCAL_LLM_FALLBACK"); fallback != "" {
		c.LLM.EnableLocalFallback = fallback == "true" || fallback == "1"
	}

	if localURL := os.Getenv("LOCAL_LLM_BASE_URL"); localURL != "" {
		c.LLM.LocalBaseURL = localURL
	}

	if localModel := os.Getenv("LOCAL_LLM_MODEL"); localModel != "" {
		c.LLM.LocalModel = localModel
	}

	if promptsDir := os.Getenv("PROMPTS_DIR"); promptsDir != "" {
		c.Prompts.Dir = promptsDir
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	// Handle Betterstack adapter enabled/disabled via environment variable
	if betterstackEnabled := os.Getenv("BETTERSTACK_ENABLED"); betterstackEnabled != "" {
		enabled := betterstackEnabled == "true" || betterstackEnabled == "1"

		for i := range c.Logging.Adapters {
			if c.Logging.Adapters[i].Name == "betterstack" || c.Logging.Adapters[i].Type == "betterstack" {
				c.Logging.Adapters[i].Enabled = enabled
				break
			}
		}
	}

	// DigitalOcean Spaces configuration
	if bucketURL := os.Getenv("BUCKET_URL"); bucketURL != "" {
		c.Spaces.BucketURL = bucketURL
	}

	if cdnEndpoint := os.Getenv("BUCKET_CDN_ENDPOINT"); cdnEndpoint != "" {
		c.Spaces.CDNEndpoint = cdnEndpoint
	}

	if accessKeyID := os.Getenv("BUCKET_ACCESS_KEY_ID"); accessKeyID != "" {
		c.Spaces.AccessKeyID = accessKeyID
	}

	if accessKeySecret := os.Getenv("BUCKET_ACCESS_KEY_SECRET"); accessKeySecret != "" {
		c.Spaces.AccessKeySecret = accessKeySecret
	}

	if region := os.Getenv("BUCKET_REGION"); region != "" {
		c.Spaces.Region = region
	}

	if bucketName := os.Getenv("BUCKET_NAME"); bucketName != "" {
		c.Spaces.BucketName = bucketName
	}

	// PDF renderer configuration
	if rendererURL := os.Getenv("PDF_RENDERER_URL"); rendererURL != "" {
		c.PDF.RendererURL = rendererURL
	}

	if tempDir := os.Getenv("PDF_TEMP_DIR"); tempDir != "" {
		c.PDF.TempDir = tempDir
	}

	// Handle additional logging adapter options via environment variables
	c.loadLoggingAdapterEnvVars()
}

// loadLoggingAdapterEnvVars loads environment variables for logging adapters
func (c *Config) loadLoggingAdapterEnvVars() {
	for i := range c.Logging.Adapters {
		adapter := &c.Logging.Adapters[i]

		switch adapter.Type {
		case "betterstack":
			if token := os.Getenv("BETTERSTACK_SOURCE_TOKEN"); token != "" {
				if adapter.Options == nil {
					adapter.Options = make(map[string]interface{})
				}
				adapter.Options["source_token"] = token
			}

			if endpoint := os.Getenv("BETTERSTACK_ENDPOINT"); endpoint != "" {
				if adapter.Options == nil {
					adapter.Options = make(map[string]interface{})
				}
				adapter.Options["endpoint"] = endpoint
			}

			if timeout := os.Getenv("BETTERSTACK_TIMEOUT"); timeout != "" {
				if adapter.Options == nil {
					adapter.Options = make(map[string]interface{})
				}
				adapter.Options["timeout"] = timeout
			}
		}
	}
}
