package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/foodreview/internal/logger"
)

const (
	defaultListenAddr        = "localhost:8080"
	defaultLoggingLevel      = logger.LevelInfo
	defaultEnvironment       = logger.EnvProduction
	defaultTokenTTL          = time.Hour
	defaultFrontendURL       = "http://localhost:3000"
	defaultGoogleRedirectURL = "http://localhost:8080/login/oauth2/code/google"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Signs access, refresh tokens and oauth2 state
	SecretKey string

	// Environment
	Environment string

	AccessTTL time.Duration

	// Same as access token TTL unless set explicitly
	RefreshTTL time.Duration

	// Front-end base url. Federated sign in redirects back there.
	FrontendURL string

	// Browser origins allowed by CORS. FrontendURL if empty.
	CORSOrigins []string

	// Google sign in is disabled while client id is empty
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:          defaultLoggingLevel,
		ListenAddr:        defaultListenAddr,
		Environment:       defaultEnvironment,
		AccessTTL:         defaultTokenTTL,
		RefreshTTL:        defaultTokenTTL,
		FrontendURL:       defaultFrontendURL,
		GoogleRedirectURL: defaultGoogleRedirectURL,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setList := func(o *[]string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = splitList(value)
			}
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"JWT_SECRET":           setString(&c.SecretKey),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
		"ACCESS_TOKEN_TTL":     setDuration(&c.AccessTTL),
		"REFRESH_TOKEN_TTL":    setDuration(&c.RefreshTTL),
		"FRONTEND_URL":         setString(&c.FrontendURL),
		"CORS_ALLOWED_ORIGINS": setList(&c.CORSOrigins),
		"GOOGLE_CLIENT_ID":     setString(&c.GoogleClientID),
		"GOOGLE_CLIENT_SECRET": setString(&c.GoogleClientSecret),
		"GOOGLE_REDIRECT_URL":  setString(&c.GoogleRedirectURL),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("foodreview", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime")
	fs.StringVarP(&c.FrontendURL, "frontend-url", "f", c.FrontendURL, "Front-end base url")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", c.CORSOrigins, "Allowed CORS origins (comma separated)")
	fs.StringVar(&c.GoogleClientID, "google-client-id", c.GoogleClientID, "Google OAuth2 client id")
	fs.StringVar(&c.GoogleClientSecret, "google-client-secret", c.GoogleClientSecret, "Google OAuth2 client secret")
	fs.StringVar(&c.GoogleRedirectURL, "google-redirect-url", c.GoogleRedirectURL, "Google OAuth2 redirect url")

	return fs.Parse(args)
}

func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(value string) []string {
	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
