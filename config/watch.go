package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch calls apply after every change to the config file that passes Validate.
// Changes that fail validation are handed to reject and otherwise ignored.
// It reports false when no config file was read, in which case nothing is watched.
func Watch(apply func(), reject func(error)) bool {
	if viper.ConfigFileUsed() == "" {
		return false
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		if err := Validate(); err != nil {
			if reject != nil {
				reject(err)
			}
			return
		}
		apply()
	})
	viper.WatchConfig()
	return true
}
