package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOption customizes LoadConfig.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit YAML config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// LoadConfig loads configuration into cfg: YAML file as the base, then a
// .env file, then process environment variables, later sources winning.
// Missing files are not an error; deployment environments often configure
// purely through the environment.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.configFile == "" {
		lc.configFile = findFirst(
			fmt.Sprintf("./cmd/%s/config.yml", serviceName),
			"./config/config.yml",
			"./config.yml",
		)
	}
	if lc.envFile == "" {
		lc.envFile = findFirst(fmt.Sprintf(".env.%s", serviceName), ".env")
	}

	v := viper.New()

	if lc.configFile != "" && exists(lc.configFile) {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", lc.configFile, err)
		}
	}

	if lc.envFile != "" && exists(lc.envFile) {
		if err := godotenv.Load(lc.envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", lc.envFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", serviceName, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if exists(p) {
			return p
		}
	}
	return ""
}

// bindEnvVars maps UPPER_SNAKE environment variables onto viper's nested
// dotted keys, so DEEPGRAM_API_KEY reaches deepgram.api_key.
func bindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		for _, variant := range keyVariants(pair[0]) {
			v.Set(variant, pair[1])
		}
	}
}

// keyVariants generates dotted nesting variants for an env key:
// DEEPGRAM_API_KEY -> deepgram_api_key, deepgram.api.key, deepgram.api_key,
// deepgram.api_key.
func keyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	variants := []string{
		lower,
		strings.ReplaceAll(lower, "_", "."),
	}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, item := range variants {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
