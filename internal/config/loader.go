package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

const escapedDollar = "\x00ESCAPED_DOLLAR\x00"

// LoadConfig reads, substitutes and decodes the file at path and applies
// defaults. It does not validate.
func LoadConfig(path string) (*GatewayConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath) //nolint:gosec // operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return parseConfig(data)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*GatewayConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*GatewayConfig, error) {
	content := substituteEnvVars(string(data))

	var cfg GatewayConfig
	dec := yaml.NewDecoder(strings.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} with environment
// values. Unset variables without a default become empty.
func substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", escapedDollar)

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(sub[1]); ok {
			return value
		}
		return sub[2]
	})

	return strings.ReplaceAll(result, escapedDollar, "$")
}

// ResolveConfigPath returns path if it exists, otherwise the first match
// under ./configs, /etc/avaroute and ~/.avaroute.
func ResolveConfigPath(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return filepath.Abs(path)
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("config file not found: %s", path)
	}

	candidates := []string{
		filepath.Join("configs", path),
		filepath.Join(string(filepath.Separator), "etc", "avaroute", path),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".avaroute", path))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("config file not found: %s", path)
}
