// Package config provides configuration for the focusbuddy daemon.
// All settings come from environment variables with sensible defaults,
// so a plain `focusbuddy` invocation works on a laptop with a webcam.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the daemon configuration.
type Config struct {
	// Port is the HTTP listen port for the API and websocket feeds.
	Port string

	// DataDir is where users.json and sessions.json live.
	DataDir string

	// ModelPath is the YOLOv8 ONNX model used for person detection.
	// If the file is missing the session still runs with person
	// detection degraded to zero.
	ModelPath string

	// CameraDevice is the capture device index (0 = default webcam).
	CameraDevice int

	// AudioBackend selects the audio capture backend ("auto" or "mock").
	AudioBackend string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Default()

	if v := os.Getenv("FOCUSBUDDY_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("FOCUSBUDDY_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FOCUSBUDDY_MODEL"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("FOCUSBUDDY_CAMERA"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: FOCUSBUDDY_CAMERA must be a device index: %w", err)
		}
		cfg.CameraDevice = idx
	}
	if v := os.Getenv("FOCUSBUDDY_AUDIO_BACKEND"); v != "" {
		cfg.AudioBackend = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return Config{}, fmt.Errorf("config: invalid configuration: %v", errs)
	}
	return cfg, nil
}

// Default returns the out-of-the-box configuration.
func Default() Config {
	dataDir := "data"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".focusbuddy")
	}
	return Config{
		Port:         "8080",
		DataDir:      dataDir,
		ModelPath:    "models/yolov8n.onnx",
		CameraDevice: 0,
		AudioBackend: "auto",
		LogLevel:     "info",
	}
}

// Validate checks the config values and returns a list of problems,
// or nil if the config is valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.Port == "" {
		errs = append(errs, "port must not be empty")
	} else if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, "port must be a number between 1 and 65535")
	}
	if c.DataDir == "" {
		errs = append(errs, "data dir must not be empty")
	}
	if c.CameraDevice < 0 {
		errs = append(errs, "camera device index must not be negative")
	}

	validBackends := map[string]bool{"auto": true, "arecord": true, "mock": true}
	if !validBackends[c.AudioBackend] {
		errs = append(errs, "audio backend must be auto, arecord, or mock")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		errs = append(errs, "log level must be debug, info, warn, or error")
	}

	return errs
}

// UsersPath returns the path of the users store file.
func (c *Config) UsersPath() string {
	return filepath.Join(c.DataDir, "users.json")
}

// SessionsPath returns the path of the sessions store file.
func (c *Config) SessionsPath() string {
	return filepath.Join(c.DataDir, "sessions.json")
}
