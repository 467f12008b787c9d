package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		APIKey      string  `yaml:"api_key"`
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Extractor struct {
		SpanStrategy string `yaml:"span_strategy"` // "naive" or "balanced"
	} `yaml:"extractor"`

	Images struct {
		PlaceholderURL string `yaml:"placeholder_url"`
	} `yaml:"images"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
	} `yaml:"database"`

	Storage struct {
		Bucket string `yaml:"bucket"`
		Region string `yaml:"region"`
	} `yaml:"storage"`

	Queue struct {
		InboundURL string `yaml:"inbound_url"`
	} `yaml:"queue"`

	OCR struct {
		Endpoint        string        `yaml:"endpoint"`
		ConvertEndpoint string        `yaml:"convert_endpoint"`
		ConvertAPIKey   string        `yaml:"convert_api_key"`
		PollAttempts    int           `yaml:"poll_attempts"`
		PollInterval    time.Duration `yaml:"poll_interval"`
	} `yaml:"ocr"`

	Scraper struct {
		RateLimit float64       `yaml:"rate_limit"`
		Timeout   time.Duration `yaml:"timeout"`
		WordLimit int           `yaml:"word_limit"`
	} `yaml:"scraper"`
}

// The arweave image used whenever generation or upload fails, so the image
// field of a persisted recipe is never empty.
const DefaultPlaceholderURL = "https://arweave.net/imiGGOP3GIoPcVUJAoZIaBI7DqQRZ7nPSiqunzMIMxQ"

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/recipe3/config.yaml"),
			"/etc/recipe3/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-4"
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.2
	}

	if config.Extractor.SpanStrategy == "" {
		config.Extractor.SpanStrategy = "naive"
	}

	if config.Images.PlaceholderURL == "" {
		config.Images.PlaceholderURL = DefaultPlaceholderURL
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "recipes"
	}

	if config.Storage.Region == "" {
		config.Storage.Region = "us-east-1"
	}

	if config.OCR.PollAttempts == 0 {
		config.OCR.PollAttempts = 20
	}
	if config.OCR.PollInterval == 0 {
		config.OCR.PollInterval = 3 * time.Second
	}

	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if config.Scraper.Timeout == 0 {
		config.Scraper.Timeout = 30 * time.Second
	}
	if config.Scraper.WordLimit == 0 {
		config.Scraper.WordLimit = 800
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPEN_AI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if table := os.Getenv("TABLE_NAME"); table != "" {
		config.Database.TableName = table
	}
	if bucket := os.Getenv("BUCKET_NAME"); bucket != "" {
		config.Storage.Bucket = bucket
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.Storage.Region = region
	}
	if queueURL := os.Getenv("QUEUE_URL"); queueURL != "" {
		config.Queue.InboundURL = queueURL
	}
	if ocrURL := os.Getenv("OCR_URL"); ocrURL != "" {
		config.OCR.Endpoint = ocrURL
	}
	if convertKey := os.Getenv("CONVERT_API_KEY"); convertKey != "" {
		config.OCR.ConvertAPIKey = convertKey
	}
}
