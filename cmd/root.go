package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/scholarsense/opportunity-finder/internal/grants"
	"github.com/scholarsense/opportunity-finder/internal/jobs"
	"github.com/scholarsense/opportunity-finder/internal/llm"
	"github.com/scholarsense/opportunity-finder/internal/logger"
	"github.com/scholarsense/opportunity-finder/internal/secrets"
	"github.com/scholarsense/opportunity-finder/internal/upstream"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "opportunity-finder"

	envGrantsAPIKey = "GRANTS_API_KEY"
	envAdzunaAppID  = "ADZUNA_APP_ID"
	envAdzunaAppKey = "ADZUNA_APP_KEY"
	envLLMAPIKey    = "OPENROUTER_API_KEY"
)

type Config struct {
	Grants *GrantsConfig `mapstructure:"grants"`
	Jobs   *JobsConfig   `mapstructure:"jobs"`
	LLM    *LLMConfig    `mapstructure:"llm"`
}

type GrantsConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	BaseURL        string `mapstructure:"base-url"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds"`
	MaxRetries     int    `mapstructure:"max-retries"`
}

type JobsConfig struct {
	AppID          string `mapstructure:"app-id"`
	AppKey         string `mapstructure:"app-key"`
	AppKeyFile     string `mapstructure:"app-key-file"`
	BaseURL        string `mapstructure:"base-url"`
	Country        string `mapstructure:"country"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds"`
	MaxRetries     int    `mapstructure:"max-retries"`
}

type LLMConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	BaseURL        string `mapstructure:"base-url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds"`
	MaxRetries     int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "opportunity-finder is a cli for matching student profiles against grants and job openings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is opportunity-finder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional since every credential can come from the
	// environment. An explicitly passed file still has to parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := mapstructure.Decode(viper.AllSettings(), &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	return l
}

func retryPolicy(maxRetries int) upstream.Policy {
	if maxRetries <= 0 {
		// Zero value makes the client fall back to its default policy.
		return upstream.Policy{}
	}

	p := upstream.DefaultPolicy()
	p.Attempts = uint(maxRetries)

	return p
}

func newGrantsClient(cfg *GrantsConfig, base *zap.Logger) (*grants.Client, error) {
	if cfg == nil {
		cfg = &GrantsConfig{}
	}

	key, err := secrets.Load(secrets.Source{
		Name:  "grants api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   envGrantsAPIKey,
	})
	if err != nil {
		return nil, err
	}

	return grants.New(grants.Config{
		APIKey:  key,
		BaseURL: cfg.BaseURL,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Retry:   retryPolicy(cfg.MaxRetries),
	}, logger.WithUpstream(base, "grants", "")), nil
}

func newJobsClient(cfg *JobsConfig, base *zap.Logger) (*jobs.Client, error) {
	if cfg == nil {
		cfg = &JobsConfig{}
	}

	appID, err := secrets.Load(secrets.Source{
		Name:  "adzuna app id",
		Value: cfg.AppID,
		Env:   envAdzunaAppID,
	})
	if err != nil {
		return nil, err
	}

	appKey, err := secrets.Load(secrets.Source{
		Name:  "adzuna app key",
		Value: cfg.AppKey,
		File:  cfg.AppKeyFile,
		Env:   envAdzunaAppKey,
	})
	if err != nil {
		return nil, err
	}

	return jobs.New(jobs.Config{
		AppID:   appID,
		AppKey:  appKey,
		BaseURL: cfg.BaseURL,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Retry:   retryPolicy(cfg.MaxRetries),
	}, logger.WithUpstream(base, "jobs", "")), nil
}

func newLLMClient(cfg *LLMConfig, base *zap.Logger) (*llm.Client, error) {
	if cfg == nil {
		cfg = &LLMConfig{}
	}

	key, err := secrets.Load(secrets.Source{
		Name:  "llm api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   envLLMAPIKey,
	})
	if err != nil {
		return nil, err
	}

	return llm.New(llm.Config{
		APIKey:  key,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Retry:   retryPolicy(cfg.MaxRetries),
	}, logger.WithUpstream(base, "llm", cfg.Model))
}
