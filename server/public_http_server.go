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
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/streamnative/rangeroute/common"
)

const shutdownTimeout = 5 * time.Second

type publicHttpServer struct {
	server *http.Server
	port   int
	log    *slog.Logger
}

func newPublicHttpServer(bindAddress string, handler http.Handler) (*publicHttpServer, error) {
	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", bindAddress)
	}

	s := &publicHttpServer{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: time.Second,
		},
		port: listener.Addr().(*net.TCPAddr).Port,
	}
	s.log = slog.With(
		slog.String("component", "public-http-server"),
		slog.Int("port", s.port),
	)

	go common.DoWithLabels(context.Background(), map[string]string{
		"rangeroute": "public-http-server",
	}, func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(
				"Failed to serve",
				slog.Any("error", err),
			)
		}
	})

	s.log.Info("Started public HTTP server", slog.String("bind-address", listener.Addr().String()))
	return s, nil
}

func (s *publicHttpServer) Port() int {
	return s.port
}

func (s *publicHttpServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown the public HTTP server")
	}
	s.log.Info("Stopped public HTTP server")
	return nil
}
