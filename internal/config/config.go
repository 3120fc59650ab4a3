package config

import (
	_ "embed"
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

// ErrSupabaseNotConfigured is returned when the remote-procedure surface is used without credentials.
var ErrSupabaseNotConfigured = errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")

// ErrDatabaseNotConfigured is returned when a direct connection is requested without DATABASE_URL.
var ErrDatabaseNotConfigured = errors.New("DATABASE_URL is required for direct database access")

const (
	defaultModelsURL    = "https://github.com/Kagami/go-face-testdata/raw/master/models"
	defaultModelsDir    = "./models"
	defaultMaxFrameSize = 1280
)

type Config struct {
	Supabase SupabaseConfig
	Database DatabaseConfig
	Face     FaceConfig
	Log      LogConfig
	Web      WebConfig
}

// SupabaseConfig points at the hosted project's REST/RPC surface.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
}

// Validate reports whether the remote surface can be used.
func (c *SupabaseConfig) Validate() error {
	if c.URL == "" || c.ServiceKey == "" {
		return ErrSupabaseNotConfigured
	}
	return nil
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 5)
	MaxIdleConns int    // Maximum idle connections (default 2)
}

// Validate reports whether a direct connection can be opened.
func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return ErrDatabaseNotConfigured
	}
	return nil
}

type FaceConfig struct {
	ModelsURL    string // base URL serving the pretrained artifacts
	ModelsDir    string // local directory the artifacts are stored in
	MaxFrameSize int    // frames are downscaled to fit within this many pixels
	Models       []ModelFile
}

// ModelFile is one entry of the embedded model manifest.
type ModelFile struct {
	Role string `yaml:"role"`
	File string `yaml:"file"`
}

type modelManifest struct {
	Models []ModelFile `yaml:"models"`
}

type LogConfig struct {
	Level  string // zerolog level name (debug, info, warn, error)
	Format string // console or json
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // CORS whitelist in addition to localhost
	APIToken       string   // bearer token for /api/v1, empty disables auth
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString returns the first non-empty value among the given keys, or defaultVal.
func envString(defaultVal string, keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var manifest modelManifest
	if err := yaml.Unmarshal(modelsYAML, &manifest); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	return &Config{
		Supabase: SupabaseConfig{
			URL:        os.Getenv("SUPABASE_URL"),
			ServiceKey: envString("", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_KEY"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 5),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Face: FaceConfig{
			ModelsURL:    envString(defaultModelsURL, "FACE_MODELS_URL"),
			ModelsDir:    envString(defaultModelsDir, "FACE_MODELS_DIR"),
			MaxFrameSize: envInt("FACE_MAX_FRAME_SIZE", defaultMaxFrameSize),
			Models:       manifest.Models,
		},
		Log: LogConfig{
			Level:  envString("info", "LOG_LEVEL"),
			Format: envString("console", "LOG_FORMAT"),
		},
		Web: WebConfig{
			Host:           envString("0.0.0.0", "WEB_HOST"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
			APIToken:       os.Getenv("WEB_API_TOKEN"),
		},
	}
}

// ModelFiles returns the artifact file names in manifest order.
func (c *FaceConfig) ModelFiles() []string {
	files := make([]string, 0, len(c.Models))
	for _, m := range c.Models {
		files = append(files, m.File)
	}
	return files
}
