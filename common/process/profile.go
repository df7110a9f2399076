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

package process

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/pkg/errors"

	"github.com/streamnative/rangeroute/common"
)

var (
	PprofEnable      bool
	PprofBindAddress string
)

type noopCloser struct{}

func (noopCloser) Close() error {
	return nil
}

// RunProfiling starts the pprof server when it is enabled by the flags.
func RunProfiling() io.Closer {
	if !PprofEnable {
		return noopCloser{}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s := &http.Server{
		Addr:              PprofBindAddress,
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}

	slog.Info(
		"Starting pprof server",
		slog.String("address", s.Addr),
	)

	go common.DoWithLabels(context.Background(), map[string]string{
		"rangeroute": "pprof",
	}, func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error(
				"Unable to start debug profiling server",
				slog.Any("error", err),
				slog.String("component", "pprof"),
			)
		}
	})

	return s
}
