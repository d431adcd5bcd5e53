package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type Options struct {
	// Defaults are applied before the file is read.
	Defaults map[string]interface{}
	// Env binds keys to environment variables regardless of the file content.
	Env map[string]string
}

// Load reads configFile into config. A value "$env:NAME" is replaced by the
// environment variable NAME, or by the key's default when NAME is unset.
func Load(configFile string, opts Options, config interface{}) error {
	v := viper.New()
	v.SetConfigFile(configFile)
	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %q: %w", configFile, err)
	}

	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if !strings.HasPrefix(value, envConfigPrefix) {
			continue
		}
		if env, ok := os.LookupEnv(value[len(envConfigPrefix):]); ok {
			v.Set(key, env)
			continue
		}
		v.Set(key, defaultFor(opts.Defaults, key))
	}

	for key, name := range opts.Env {
		if env, ok := os.LookupEnv(name); ok {
			v.Set(key, env)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return nil
}

func defaultFor(defaults map[string]interface{}, key string) interface{} {
	for k, v := range defaults {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
