/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	sigsyaml "sigs.k8s.io/yaml"
)

// Vector is a 3D vector in scene coordinates (metres, Y up).
type Vector [3]float64

// ParseVector parses "x,y,z".
func ParseVector(s string) (Vector, error) {
	var v Vector
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, ErrParseVector{Value: s}
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, ErrParseVector{Value: s}
		}
		v[i] = f
	}
	return v, nil
}

// UnmarshalText lets environment variables carry vectors as "x,y,z".
func (v *Vector) UnmarshalText(text []byte) error {
	parsed, err := ParseVector(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

type TelemetryConfig struct {
	Address        string `json:"address"`
	Port           int    `json:"port"`
	MetricsAddress string `json:"metrics_address,omitempty"`
}

type SceneConfig struct {
	TickRate        float64  `json:"tick_rate"`
	Source          string   `json:"source"`
	DeviceClasses   []string `json:"device_classes"`
	ApiAddress      string   `json:"api_address"`
	ApiPort         int      `json:"api_port"`
	SimInvalidTicks int      `json:"sim_invalid_ticks"`
}

type CalibrationConfig struct {
	HandOffset Vector  `json:"hand_offset"`
	TipLength  float64 `json:"tip_length"`
}

type Config struct {
	LogLevel           string `json:"log_level"`
	*TelemetryConfig   `json:"telemetry"`
	*SceneConfig       `json:"scene"`
	*CalibrationConfig `json:"calibration"`
	filepath           string
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func NewDefaultConfig() *Config {
	return NewConfig(DefaultConfigPath())
}

// NewConfig returns the defaults bound to the config file at path.
func NewConfig(path string) *Config {
	classes := make([]string, len(DefaultDeviceClasses))
	copy(classes, DefaultDeviceClasses)
	return &Config{
		LogLevel: DefaultLogLevel,
		TelemetryConfig: &TelemetryConfig{
			Address: DefaultTelemetryAddress,
			Port:    DefaultTelemetryPort,
		},
		SceneConfig: &SceneConfig{
			TickRate:        DefaultTickRate,
			Source:          DefaultPoseSource,
			DeviceClasses:   classes,
			ApiAddress:      DefaultSceneApiAddress,
			ApiPort:         DefaultSceneApiPort,
			SimInvalidTicks: DefaultSimInvalidTicks,
		},
		CalibrationConfig: &CalibrationConfig{
			HandOffset: DefaultHandOffset,
			TipLength:  DefaultTipLength,
		},
		filepath: path,
	}
}

func (c *Config) Filepath() string {
	return c.filepath
}

// Persist writes the config to its file as YAML.
func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.filepath, data, 0644)
}

func (c *Config) Marshal() ([]byte, error) {
	return sigsyaml.Marshal(c)
}

// Load layers, from low to high precedence, the current values, the config
// file (when it exists) and GO_TRACKER_* environment variables.
func (c *Config) Load() error {
	k := koanf.New(".")

	if _, err := os.Stat(c.filepath); err == nil {
		if err := k.Load(file.Provider(c.filepath), yaml.Parser()); err != nil {
			return ErrLoadConfig{Path: c.filepath, Err: err}
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return ErrLoadConfig{Path: "env", Err: err}
	}

	if err := k.UnmarshalWithConf("", c, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return ErrLoadConfig{Path: c.filepath, Err: err}
	}
	return c.Validate()
}

var sections = []string{"telemetry", "scene", "calibration"}

// envKey maps GO_TRACKER_SCENE_TICK_RATE to scene.tick_rate.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}
	return s
}

// listKeys hold comma separated values in the environment
var listKeys = map[string]bool{"scene.device_classes": true}

func envValue(key, value string) (string, interface{}) {
	key = envKey(key)
	if !listKeys[key] {
		return key, value
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidConfig{Field: "telemetry.port", What: strconv.Itoa(c.Port)}
	}
	if c.ApiPort < 1 || c.ApiPort > 65535 {
		return ErrInvalidConfig{Field: "scene.api_port", What: strconv.Itoa(c.ApiPort)}
	}
	if math.IsNaN(c.TickRate) || c.TickRate <= 0 {
		return ErrInvalidConfig{Field: "scene.tick_rate", What: "must be positive"}
	}
	if c.TickRate > MaxTickRate {
		return ErrInvalidConfig{Field: "scene.tick_rate", What: "must not exceed " + strconv.Itoa(MaxTickRate)}
	}
	if c.Source != PoseSourceSim && c.Source != PoseSourceTelemetry {
		return ErrInvalidConfig{Field: "scene.source", What: c.Source}
	}
	if c.TipLength < 0 {
		return ErrInvalidConfig{Field: "calibration.tip_length", What: "must not be negative"}
	}
	return nil
}
