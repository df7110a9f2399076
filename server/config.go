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

package server

import (
	"fmt"
	"time"

	"github.com/streamnative/rangeroute/common"
	"github.com/streamnative/rangeroute/routing"
	"github.com/streamnative/rangeroute/routingmap"
)

const DefaultRequestTimeout = 30 * time.Second

type Config struct {
	PublicServiceAddr  string `mapstructure:"publicServiceAddr"`
	MetricsServiceAddr string `mapstructure:"metricsServiceAddr"`

	// BoundaryFile is the yaml file holding the boundary maps. When empty,
	// the boundary maps are read from the Pebble store in DataDir.
	BoundaryFile string `mapstructure:"boundaryFile"`
	DataDir      string `mapstructure:"dataDir"`
	InMemory     bool   `mapstructure:"inMemory"`
	// StoreCacheSize is the Pebble block cache size, in bytes.
	StoreCacheSize uint64 `mapstructure:"storeCacheSize"`

	CacheTTL            time.Duration `mapstructure:"cacheTTL"`
	CacheMaxRanges      int64         `mapstructure:"cacheMaxRanges"`
	RefreshRateLimit    float64       `mapstructure:"refreshRateLimit"`
	RefreshBurst        int           `mapstructure:"refreshBurst"`
	MaxFetchElapsedTime time.Duration `mapstructure:"maxFetchElapsedTime"`
	RequestTimeout      time.Duration `mapstructure:"requestTimeout"`

	// PartitionKeyDefinitions are the key space layouts of the containers,
	// used when a request does not carry its own.
	PartitionKeyDefinitions map[string]routing.PartitionKeyDefinition `mapstructure:"partitionKeyDefinitions"`
}

func NewDefaultConfig() Config {
	return Config{
		PublicServiceAddr:   fmt.Sprintf("0.0.0.0:%d", common.DefaultPublicPort),
		MetricsServiceAddr:  fmt.Sprintf("0.0.0.0:%d", common.DefaultMetricsPort),
		DataDir:             routingmap.DefaultPebbleSourceOptions.DataDir,
		StoreCacheSize:      uint64(routingmap.DefaultPebbleSourceOptions.CacheSizeMB) * 1024 * 1024,
		CacheTTL:            routingmap.DefaultCacheTTL,
		CacheMaxRanges:      routingmap.DefaultCacheMaxCost,
		RefreshRateLimit:    float64(routingmap.DefaultRefreshRateLimit),
		RefreshBurst:        routingmap.DefaultRefreshBurst,
		MaxFetchElapsedTime: routingmap.DefaultMaxFetchElapsedTime,
		RequestTimeout:      DefaultRequestTimeout,
	}
}

func NewTestConfig(dir string) Config {
	c := NewDefaultConfig()
	c.PublicServiceAddr = "localhost:0"
	c.MetricsServiceAddr = ""
	c.DataDir = dir
	c.InMemory = true
	return c
}
