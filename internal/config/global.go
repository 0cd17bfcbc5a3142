// SPDX-License-Identifier: MPL-2.0

package config

import "os"

// ConfigDirEnv names the environment variable that replaces the user config directory.
// It lets go:generate pipelines and script tests pin the configuration.
const ConfigDirEnv = "PKGSETTINGS_CONFIG_DIR"

// configDirOverride allows tests to override the config directory.
var configDirOverride string

func init() {
	configDirOverride = os.Getenv(ConfigDirEnv)
}

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = os.Getenv(ConfigDirEnv)
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing, where os.UserConfigDir() would point at the
// real user's configuration.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
