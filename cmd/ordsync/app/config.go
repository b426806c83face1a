package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Sync configuration
	BaseURI     string
	OutputDir   string
	OutputPath  string
	Template    string
	UserAgent   string
	Workers     int
	RateLimit   float64
	RateBurst   int
	HTTPTimeout time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
	LogFile   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (ORDSYNC_*)
// 3. .env files
// 4. Config file (configFile, or .ordsync.yaml in $HOME or ".")
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Logging keys also honour the unprefixed variables
	for _, key := range []string{"log_level", "log_format", "log_output"} {
		env := strings.ToUpper(key)
		if err := v.BindEnv(key, constants.EnvPrefix+"_"+env, env); err != nil {
			return nil, errors.NewConfigError(key, "cannot bind environment", err)
		}
	}

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)

		// A missing config file is fine, a broken one is not
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "cannot read "+v.ConfigFileUsed(), err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		BaseURI:     v.GetString("base_uri"),
		OutputDir:   v.GetString("output_dir"),
		OutputPath:  v.GetString("output"),
		Template:    v.GetString("template"),
		UserAgent:   v.GetString("user_agent"),
		Workers:     v.GetInt("workers"),
		RateLimit:   v.GetFloat64("rate_limit"),
		RateBurst:   v.GetInt("rate_burst"),
		HTTPTimeout: v.GetDuration("http_timeout"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
		LogFile:   v.GetString("log_file"),
	}

	if os.Getenv("NO_COLOR") != "" {
		config.NoColor = true
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_uri", constants.DefaultSyncURI)
	v.SetDefault("output_dir", constants.DefaultOutputDir)
	v.SetDefault("user_agent", constants.DefaultUserAgent)
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("rate_burst", constants.DefaultRateBurst)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	v.SetDefault("log_file", constants.DefaultLogFile)
}

// UpdateFromFlags updates config values from parsed global flags.
// This should be called after cobra parses flags so that flag values
// take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(flags *cmdutil.GlobalFlags) {
	if flags == nil {
		return
	}
	c.Verbose = c.Verbose || flags.Verbose
	c.Quiet = c.Quiet || flags.Quiet
	c.NoColor = c.NoColor || flags.NoColor
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so its values win; godotenv never
// overrides a variable that is already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
