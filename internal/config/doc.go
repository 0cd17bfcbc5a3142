// SPDX-License-Identifier: MPL-2.0

// Package config handles pkgsettings configuration using Viper with CUE as the file format.
//
// The configuration file is looked up at the --config path when given, else at
// config.cue in the user configuration directory (os.UserConfigDir()/pkgsettings), else
// at pkgsettings.cue in the working directory. Without a file the defaults apply.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before being
// merged over the defaults, then checked again with Config.IsValid for constraints the
// schema cannot express, such as glob syntax.
package config
