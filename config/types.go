package config

import (
	"sync"

	"github.com/spf13/viper"
)

type Validator interface {
	Validate() error
}

type ConfigInterface interface {
	Bind(instance any) error
	BindWithDefaults(instance any) error
	Get(key string) any
	Set(key string, value any)
	Files() []string
}

type Config struct {
	instance *viper.Viper
	opts     ConfigOptions
	files    []string
	mu       sync.RWMutex
}

type ConfigOptions struct {
	BasePath  string
	FileName  string
	FileType  string
	EnvPrefix string
	// Optional allows running with no config file at all; defaults and
	// environment variables still apply.
	Optional bool
	// Defaults seeds keys so environment overrides apply even when no file
	// mentions them.
	Defaults map[string]any
}
