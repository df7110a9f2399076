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
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/streamnative/rangeroute/common/metrics"
	"github.com/streamnative/rangeroute/routingmap"
)

// Server is the routing sidecar: it serves the feed range resolution API
// over HTTP, backed by a cached view of the boundary maps.
type Server struct {
	config   Config
	source   routingmap.Source
	provider *routingmap.CachingProvider
	public   *publicHttpServer
	metrics  *metrics.PrometheusMetrics
}

func New(config Config) (*Server, error) {
	slog.Info(
		"Starting rangeroute server",
		slog.Any("config", config),
	)

	s := &Server{config: config}

	var err error
	if config.BoundaryFile != "" {
		s.source, err = routingmap.NewFileSource(config.BoundaryFile)
	} else {
		s.source, err = routingmap.NewPebbleSource(&routingmap.PebbleSourceOptions{
			DataDir:     config.DataDir,
			CacheSizeMB: int64(config.StoreCacheSize / (1024 * 1024)),
			InMemory:    config.InMemory,
		})
	}
	if err != nil {
		return nil, err
	}

	var meterProvider metric.MeterProvider
	if config.MetricsServiceAddr != "" {
		if meterProvider, err = metrics.MeterProvider(); err != nil {
			return nil, s.closeOnError(err)
		}
	}

	options := []routingmap.ProviderOption{
		routingmap.WithMeterProvider(meterProvider),
	}
	if config.CacheTTL > 0 {
		options = append(options, routingmap.WithCacheTTL(config.CacheTTL))
	}
	if config.CacheMaxRanges > 0 {
		options = append(options, routingmap.WithCacheMaxCost(config.CacheMaxRanges))
	}
	if config.RefreshRateLimit > 0 {
		burst := config.RefreshBurst
		if burst <= 0 {
			burst = routingmap.DefaultRefreshBurst
		}
		options = append(options, routingmap.WithRefreshRateLimit(rate.Limit(config.RefreshRateLimit), burst))
	}
	if config.MaxFetchElapsedTime > 0 {
		options = append(options, routingmap.WithMaxFetchElapsedTime(config.MaxFetchElapsedTime))
	}

	if s.provider, err = routingmap.NewCachingProvider(s.source, options...); err != nil {
		return nil, s.closeOnError(err)
	}

	router := NewRouter(s.provider, config.PartitionKeyDefinitions, config.RequestTimeout)
	if s.public, err = newPublicHttpServer(config.PublicServiceAddr, router); err != nil {
		return nil, s.closeOnError(err)
	}

	if config.MetricsServiceAddr != "" {
		if s.metrics, err = metrics.Start(config.MetricsServiceAddr); err != nil {
			return nil, s.closeOnError(err)
		}
	}

	return s, nil
}

func (s *Server) PublicPort() int {
	return s.public.Port()
}

// MetricsPort returns the port serving the metrics, or zero when disabled.
func (s *Server) MetricsPort() int {
	if s.metrics == nil {
		return 0
	}
	return s.metrics.Port()
}

func (s *Server) Provider() *routingmap.CachingProvider {
	return s.provider
}

func (s *Server) closeOnError(err error) error {
	return multierr.Append(err, s.Close())
}

func (s *Server) Close() error {
	var err error
	if s.metrics != nil {
		err = multierr.Append(err, s.metrics.Close())
	}
	if s.public != nil {
		err = multierr.Append(err, s.public.Close())
	}
	if s.provider != nil {
		err = multierr.Append(err, s.provider.Close())
	}
	if s.source != nil {
		err = multierr.Append(err, s.source.Close())
	}
	return err
}
