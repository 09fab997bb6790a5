package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mavwarf/appicons/internal/paths"
)

// DefaultSource is the logo every icon set is generated from.
const DefaultSource = "assets/images/logos/app-logo.png"

// Default output roots, relative to the project directory.
const (
	DefaultAndroidDir = "android/app/src/main/res"
	DefaultIOSDir     = "ios/Runner/Assets.xcassets/AppIcon.appiconset"
	DefaultWebDir     = "web"
)

// DefaultTool is the build toolchain driven by the release pipeline.
const DefaultTool = "flutter"

// DefaultMQTTTopic is used when a broker is set but no topic is.
const DefaultMQTTTopic = "appicons/events"

// Outputs holds the per-platform output roots.
type Outputs struct {
	Android string `json:"android,omitempty"`
	IOS     string `json:"ios,omitempty"`
	Web     string `json:"web,omitempty"`
}

// Release holds settings for the release build pipeline.
type Release struct {
	Tool    string `json:"tool,omitempty"`
	SkipIOS bool   `json:"skip_ios,omitempty"`
	Package string `json:"package,omitempty"`
	AppName string `json:"app_name,omitempty"`
	Version string `json:"version,omitempty"`
}

// MQTT holds broker settings for completion notifications.
// An empty Broker disables publishing.
type MQTT struct {
	Broker   string `json:"broker,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Topic    string `json:"topic,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	QoS      int    `json:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty"`
}

// Enabled reports whether a broker is configured.
func (m MQTT) Enabled() bool {
	return m.Broker != ""
}

// Config is the top-level configuration.
type Config struct {
	Source  string  `json:"source"`
	Outputs Outputs `json:"outputs"`
	Release Release `json:"release"`
	History bool    `json:"history"`
	MQTT    MQTT    `json:"mqtt"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	var c Config
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.Source = DefaultSource
	c.Outputs = Outputs{Android: DefaultAndroidDir, IOS: DefaultIOSDir, Web: DefaultWebDir}
	c.Release.Tool = DefaultTool
	c.History = true
	c.MQTT.ClientID = paths.AppDirName
	c.MQTT.Topic = DefaultMQTTTopic
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	c.setDefaults()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// Validate checks values that would otherwise fail later at run time.
func Validate(cfg Config) error {
	if cfg.Source == "" {
		return fmt.Errorf("config: source must not be empty")
	}
	if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
		return fmt.Errorf("config: mqtt.qos must be 0, 1 or 2, got %d", cfg.MQTT.QoS)
	}
	if cfg.MQTT.Enabled() && cfg.MQTT.Topic == "" {
		return fmt.Errorf("config: mqtt.topic must not be empty when a broker is set")
	}
	return nil
}

// OutputDir returns the configured output root for a platform name.
func (c Config) OutputDir(platform string) (string, error) {
	var dir string
	switch platform {
	case "android":
		dir = c.Outputs.Android
	case "ios":
		dir = c.Outputs.IOS
	case "web":
		dir = c.Outputs.Web
	default:
		return "", fmt.Errorf("unknown platform %q", platform)
	}
	if dir == "" {
		return "", fmt.Errorf("no output directory configured for %s", platform)
	}
	return dir, nil
}

// Load reads and parses a config file. It tries, in order:
//  1. explicitPath (if non-empty; must exist)
//  2. appicons-config.json in the working directory
//  3. appicons-config.json next to the running binary
//  4. ~/.config/appicons/appicons-config.json
//
// When none of the implicit locations exist the defaults are returned.
// The second return value is the file that was read, or "".
func Load(explicitPath string) (Config, string, error) {
	if explicitPath != "" {
		cfg, err := readConfig(explicitPath)
		return cfg, explicitPath, err
	}

	for _, p := range candidates() {
		if _, err := os.Stat(p); err == nil {
			cfg, err := readConfig(p)
			return cfg, p, err
		}
	}
	return Default(), "", nil
}

func candidates() []string {
	var out []string
	if wd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(wd, paths.ConfigFileName))
	}
	if exe, err := os.Executable(); err == nil {
		out = append(out, filepath.Join(filepath.Dir(exe), paths.ConfigFileName))
	}
	if d := paths.UserDir(); d != "" {
		out = append(out, filepath.Join(d, paths.ConfigFileName))
	}
	return out
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
