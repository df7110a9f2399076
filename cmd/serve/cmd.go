// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serve

import (
	"io"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/streamnative/rangeroute/cmd/flag"
	"github.com/streamnative/rangeroute/common/process"
	"github.com/streamnative/rangeroute/server"
)

var (
	configFile string
	defaults   = server.NewDefaultConfig()
	conf       = server.NewDefaultConfig()

	Cmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the routing sidecar",
		Long:  `Serve the feed range resolution API over HTTP, backed by a boundary file or a boundary map store.`,
		Args:  cobra.NoArgs,
		RunE:  exec,
	}

	// Config keys bound to the command flags.
	flagKeys = map[string]string{
		"public-addr":            "publicServiceAddr",
		"metrics-addr":           "metricsServiceAddr",
		"boundary-file":          "boundaryFile",
		"data-dir":               "dataDir",
		"store-cache-size":       "storeCacheSize",
		"cache-ttl":              "cacheTTL",
		"cache-max-ranges":       "cacheMaxRanges",
		"refresh-rate-limit":     "refreshRateLimit",
		"refresh-burst":          "refreshBurst",
		"max-fetch-elapsed-time": "maxFetchElapsedTime",
		"request-timeout":        "requestTimeout",
	}
)

func init() {
	Cmd.Flags().SortFlags = false

	Cmd.Flags().StringVarP(&configFile, "config", "f", "", "Yaml configuration file")
	flag.PublicAddr(Cmd, &conf.PublicServiceAddr)
	flag.MetricsAddr(Cmd, &conf.MetricsServiceAddr)
	flag.BoundaryFile(Cmd, &conf.BoundaryFile)
	flag.DataDir(Cmd, &conf.DataDir)
	Cmd.Flags().String("store-cache-size", humanize.IBytes(defaults.StoreCacheSize), "Block cache size of the boundary map store")
	Cmd.Flags().DurationVar(&conf.CacheTTL, "cache-ttl", defaults.CacheTTL, "How long a boundary map is served from the cache")
	Cmd.Flags().Int64Var(&conf.CacheMaxRanges, "cache-max-ranges", defaults.CacheMaxRanges, "Max number of partition key ranges in the cache")
	Cmd.Flags().Float64Var(&conf.RefreshRateLimit, "refresh-rate-limit", defaults.RefreshRateLimit, "Max forced refreshes of the boundary maps per second")
	Cmd.Flags().IntVar(&conf.RefreshBurst, "refresh-burst", defaults.RefreshBurst, "Burst of forced refreshes of the boundary maps")
	Cmd.Flags().DurationVar(&conf.MaxFetchElapsedTime, "max-fetch-elapsed-time", defaults.MaxFetchElapsedTime, "Max time spent retrying a boundary map fetch")
	Cmd.Flags().DurationVar(&conf.RequestTimeout, "request-timeout", defaults.RequestTimeout, "Timeout of the API requests")
}

func exec(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	config, err := loadConfig(v, cmd)
	if err != nil {
		return err
	}

	process.RunProcess(func() (io.Closer, error) {
		return server.New(config)
	})
	return nil
}

// loadConfig merges, by increasing priority, the defaults, the
// configuration file, the RANGEROUTE_* environment variables and the
// flags set on the command line.
func loadConfig(v *viper.Viper, cmd *cobra.Command) (server.Config, error) {
	for flagName, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flagName)); err != nil {
			return server.Config{}, err
		}
	}

	v.SetEnvPrefix("rangeroute")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return server.Config{}, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	config := server.NewDefaultConfig()
	if err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		bytesSizeHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return server.Config{}, errors.Wrap(err, "failed to load config")
	}
	return config, nil
}

// bytesSizeHookFunc decodes human readable sizes, like "64 MiB", into
// byte counts.
func bytesSizeHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Uint64 {
			return data, nil
		}
		size, err := humanize.ParseBytes(data.(string))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid size %q", data)
		}
		return size, nil
	}
}
