package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultHotkey      = "Ctrl+Alt+A"
	DefaultSurfaceAddr = "127.0.0.1:49600"
	DefaultLogLevel    = "info"
	AltEnvPathVar      = "SCREENSHOTS_ENV"
	LangFileEnvVar     = "LANG_FILE"
)

type LoadOptions struct {
	LanguageOverride    string
	SurfaceAddrOverride string
	LogLevelOverride    string
}

type Config struct {
	Hotkey            string
	SurfaceAddr       string
	SurfaceDir        string
	Language          string
	LangFile          string
	SaveDir           string
	SingleWindow      bool
	EnableFileLogging bool
	LogLevel          string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREENSHOTS_ENV as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		SurfaceAddr:       override(opts.SurfaceAddrOverride, getEnvWithDefault("SURFACE_ADDR", DefaultSurfaceAddr)),
		SurfaceDir:        strings.TrimSpace(os.Getenv("SURFACE_DIR")),
		Language:          override(opts.LanguageOverride, strings.TrimSpace(os.Getenv("LANGUAGE"))),
		LangFile:          resolveLangFile(envPath, dotenvValues),
		SaveDir:           strings.TrimSpace(os.Getenv("SAVE_DIR")),
		SingleWindow:      parseBool(getEnvWithDefault("SINGLE_WINDOW", "true")),
		EnableFileLogging: parseBool(os.Getenv("ENABLE_FILE_LOGGING")),
		LogLevel:          override(opts.LogLevelOverride, getEnvWithDefault("LOG_LEVEL", DefaultLogLevel)),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(AltEnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

// resolveLangFile makes a relative LANG_FILE taken from the .env file
// relative to that file's directory.
func resolveLangFile(envPath string, dotenvValues map[string]string) string {
	path := strings.TrimSpace(os.Getenv(LangFileEnvVar))
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if fromFile := strings.TrimSpace(dotenvValues[LangFileEnvVar]); fromFile == path && envPath != "" {
		return filepath.Join(filepath.Dir(envPath), path)
	}
	return path
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func override(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
