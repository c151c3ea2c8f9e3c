package core

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Telegram refuses albums with more than ten items.
const maxAlbumSize = 10

type Config struct {
	Env            string `yaml:"env" env:"ENV" env-default:"prod"`
	TelegramApiKey string `yaml:"telegram_api_key" env:"TELEGRAM_TOKEN" env-default:""`
	Images         struct {
		URL       string        `yaml:"url" env:"IMAGES_URL" env-default:"https://thispersondoesnotexist.com/"`
		Max       int           `yaml:"max" env:"IMAGES_MAX" env-default:"100"`
		GroupSize int           `yaml:"group_size" env:"IMAGES_GROUP_SIZE" env-default:"9"`
		Timeout   time.Duration `yaml:"timeout" env:"IMAGES_TIMEOUT" env-default:"30s"`
		TempDir   string        `yaml:"temp_dir" env:"IMAGES_TEMP_DIR" env-default:""`
	} `yaml:"images"`
	Bot struct {
		PromptTTL         time.Duration `yaml:"prompt_ttl" env:"BOT_PROMPT_TTL" env-default:"10m"`
		MaxConcurrentRuns int           `yaml:"max_concurrent_runs" env:"BOT_MAX_CONCURRENT_RUNS" env-default:"4"`
	} `yaml:"bot"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:"admin"`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:"pass"`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"facely"`
	} `yaml:"mongo"`
}

// Load reads the config file when it exists and applies environment overrides.
// Without a file the config is built from the environment alone.
func Load(path string) (*Config, error) {
	conf := &Config{}
	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, conf)
	} else {
		err = cleanenv.ReadEnv(conf)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("config: %s; %s", err, desc)
	}
	if err = conf.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return conf, nil
}

func MustLoad(path string) *Config {
	conf, err := Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return conf
}

func (c *Config) Validate() error {
	var errs []error
	if c.TelegramApiKey == "" {
		errs = append(errs, errors.New("telegram_api_key is empty"))
	}
	if c.Images.URL == "" {
		errs = append(errs, errors.New("images.url is empty"))
	}
	if c.Images.Max < 1 {
		errs = append(errs, fmt.Errorf("images.max must be positive, got %d", c.Images.Max))
	}
	if c.Images.GroupSize < 1 || c.Images.GroupSize > maxAlbumSize {
		errs = append(errs, fmt.Errorf("images.group_size must be in 1..%d, got %d", maxAlbumSize, c.Images.GroupSize))
	}
	if c.Bot.MaxConcurrentRuns < 1 {
		errs = append(errs, fmt.Errorf("bot.max_concurrent_runs must be positive, got %d", c.Bot.MaxConcurrentRuns))
	}
	return errors.Join(errs...)
}

func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb://%s:%s@%s:%s",
		c.Mongo.User, c.Mongo.Password,
		c.Mongo.Host, c.Mongo.Port)
}
