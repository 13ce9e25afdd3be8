// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppd/pkg/types"
)

const (
	defaultLang      = "AM"
	defaultFormat    = "JWPUB"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ppd/0.3"
)

// boundFlags maps viper keys to the flags that override them.
var boundFlags = map[string]string{
	"lang":      "lang",
	"format":    "format",
	"dir":       "dir",
	"hierarchy": "hierarchy",
	"timeout":   "timeout",
	"endpoint":  "endpoint",
	"progress":  "progress",
	"history":   "history",
	"verbose":   "verbose",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("lang", defaultLang)
	v.SetDefault("format", defaultFormat)
	v.SetDefault("dir", ".")
	v.SetDefault("endpoint", types.DefaultEndpoint)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("max_retries", 3)
	v.SetDefault("download_delay", time.Duration(0))
	v.SetDefault("progress", true)
	return v
}

// bindFlags wires cmd's flags into v so precedence is flag > env > file > default.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range boundFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(name)
		}
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// readConfig loads cfgFile, or ppd.yaml from . or ~/.config/ppd/, and
// the PPD_* environment.
func readConfig(v *viper.Viper, cfgFile string, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ppd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ppd"))
		}
	}

	v.SetEnvPrefix("PPD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

func httpConfig(v *viper.Viper) types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:    v.GetDuration("timeout"),
		UserAgent:  v.GetString("user_agent"),
		MaxRetries: v.GetInt("max_retries"),
	}
}

func resolverConfig(v *viper.Viper) types.ResolverConfig {
	return types.ResolverConfig{
		HTTPConfig: httpConfig(v),
		Endpoint:   v.GetString("endpoint"),
	}
}

func fetchConfig(v *viper.Viper) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig:    httpConfig(v),
		DownloadDelay: v.GetDuration("download_delay"),
		Progress:      v.GetBool("progress"),
	}
}

func historyConfig(v *viper.Viper) types.HistoryConfig {
	return types.HistoryConfig{Path: v.GetString("history")}
}

func newLogger(v *viper.Viper, stderr io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if v.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
