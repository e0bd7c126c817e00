package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cordialsys/xcall/config/constants"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// xcall.yaml is looked up at $XCALL_CONFIG, then in the working directory, its parent and ~/.xcall
func newViper() *viper.Viper {
	// own instance, the global one is shared with libraries
	v := viper.New()
	v.SetConfigName("xcall")
	v.SetConfigType("yaml")
	v.SetConfigFile(os.Getenv(constants.ConfigEnv))
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath(constants.DefaultHome)
	return v
}

func isMissingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// RequireConfig reads one section of xcall.yaml into dst, or the whole file when section is empty.
// With defaults given, a missing file is not an error and loaded fields are laid over the defaults.
func RequireConfig(section string, dst any, defaults any) error {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		if defaults == nil || !isMissingConfig(err) {
			return fmt.Errorf("could not read config file: %w", err)
		}
		logrus.WithError(err).Debug("no config file, using defaults")
		return ApplyDefaults(defaults, map[string]any{}, dst)
	}
	logrus.WithField("file", v.ConfigFileUsed()).Debug("read config")

	settings := v.AllSettings()
	if section != "" {
		// viper cannot decode a single section into a struct with yaml tags
		settings = v.GetStringMap(section)
	}
	bz, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(bz, dst); err != nil {
		return fmt.Errorf("invalid %s config: %w", section, err)
	}
	if defaults == nil {
		return nil
	}
	return ApplyDefaults(defaults, dst, dst)
}
