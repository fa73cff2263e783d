package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts true/1/yes and false/0/no, case-insensitively. Any
// other value leaves defaultVal in place.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvList splits a list variable on the OS path separator.
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, p := range strings.Split(val, string(os.PathListSeparator)) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isFlagSet reports whether any of names was given on the command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, n := range names {
			if f.Name == n {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides fills every setting whose flag was not given from its
// RSAGCD_ variable: flags win over the environment, which wins over
// defaults. RSAGCD_HEX is a path list; positional arguments count as -hex.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "keys") {
		config.KeysDir = getEnvString("KEYS", config.KeysDir)
	}
	if !isFlagSet(fs, "hex") && fs.NArg() == 0 {
		config.HexFiles = getEnvList("HEX", config.HexFiles)
	}
	if !isFlagSet(fs, "against") {
		config.AgainstFile = getEnvString("AGAINST", config.AgainstFile)
	}
	if !isFlagSet(fs, "algo") {
		config.Algo = getEnvString("ALGO", config.Algo)
	}
	if !isFlagSet(fs, "scheme") {
		config.Scheme = getEnvString("SCHEME", config.Scheme)
	}
	if !isFlagSet(fs, "log-level") {
		config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	}
	if !isFlagSet(fs, "output", "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
	if !isFlagSet(fs, "calibration-profile") {
		config.CalibrationProfile = getEnvString("CALIBRATION_PROFILE", config.CalibrationProfile)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}

	if !isFlagSet(fs, "limit") {
		config.Limit = getEnvInt("LIMIT", config.Limit)
	}
	if !isFlagSet(fs, "pairs") {
		config.Pairs = getEnvInt("PAIRS", config.Pairs)
	}
	if !isFlagSet(fs, "workers") {
		config.Workers = getEnvInt("WORKERS", config.Workers)
	}
	if !isFlagSet(fs, "group-width") {
		config.GroupWidth = getEnvInt("GROUP_WIDTH", config.GroupWidth)
	}
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}

	boolOverrides := []struct {
		dst   *bool
		env   string
		flags []string
	}{
		{&config.Host, "HOST", []string{"host"}},
		{&config.Verify, "VERIFY", []string{"verify"}},
		{&config.Strict, "STRICT", []string{"strict"}},
		{&config.JSONOutput, "JSON", []string{"json"}},
		{&config.Quiet, "QUIET", []string{"quiet", "q"}},
		{&config.Details, "DETAILS", []string{"details", "d"}},
		{&config.NoColor, "NO_COLOR", []string{"no-color"}},
		{&config.ServerMode, "SERVER", []string{"server"}},
		{&config.Calibrate, "CALIBRATE", []string{"calibrate"}},
	}
	for _, o := range boolOverrides {
		if !isFlagSet(fs, o.flags...) {
			*o.dst = getEnvBool(o.env, *o.dst)
		}
	}
}
