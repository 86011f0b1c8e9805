package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/filesystem"
	"github.com/vrsync/vrsync/key"
	"github.com/vrsync/vrsync/where"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return Validate()
		}
		return err
	}

	return Validate()
}

// Validate rejects values the synchronization subsystem cannot operate with.
func Validate() error {
	if port := viper.GetInt(key.ListenPort); port < 0 || port > 65535 {
		return fmt.Errorf("%s: port %d out of range", key.ListenPort, port)
	}

	if size := viper.GetInt(key.ListenBufferSize); size <= 0 {
		return fmt.Errorf("%s: must be positive, got %d", key.ListenBufferSize, size)
	}

	if size := viper.GetInt(key.ListenQueueSize); size <= 0 {
		return fmt.Errorf("%s: must be positive, got %d", key.ListenQueueSize, size)
	}

	if tol := viper.GetInt(key.SyncDriftToleranceMs); tol < 0 {
		return fmt.Errorf("%s: must not be negative, got %d", key.SyncDriftToleranceMs, tol)
	}

	if f := viper.GetFloat64(key.SyncSmoothingFactor); f < 0 || f > 1 {
		return fmt.Errorf("%s: must be within [0, 1], got %v", key.SyncSmoothingFactor, f)
	}

	if fps := viper.GetInt(key.RenderFPS); fps <= 0 {
		return fmt.Errorf("%s: must be positive, got %d", key.RenderFPS, fps)
	}

	return nil
}
