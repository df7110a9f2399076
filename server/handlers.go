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
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/streamnative/rangeroute/routing"
)

const maxRequestBodySize = 1 << 20

type handler struct {
	provider       routing.RoutingMapProvider
	definitions    map[string]routing.PartitionKeyDefinition
	requestTimeout time.Duration
	log            *slog.Logger
}

// NewRouter returns the HTTP API resolving feed ranges against the boundary
// maps of the provider. The definitions are the default partition key
// definitions of the containers.
func NewRouter(provider routing.RoutingMapProvider, definitions map[string]routing.PartitionKeyDefinition,
	requestTimeout time.Duration) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	h := &handler{
		provider:       provider,
		definitions:    definitions,
		requestTimeout: requestTimeout,
		log: slog.With(
			slog.String("component", "http-handler"),
		),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/containers/{containerID}/partition-key-ranges", h.handleListPartitionKeyRanges)

		r.Route("/feed-ranges", func(r chi.Router) {
			r.Post("/effective-ranges", h.handleEffectiveRanges)
			r.Post("/partition-key-ranges", h.handlePartitionKeyRangeIDs)
			r.Post("/request", h.handleRequest)
		})
	})
	return r
}

func (*handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: StatusOK})
}

func (h *handler) handleListPartitionKeyRanges(w http.ResponseWriter, r *http.Request) {
	containerID := chi.URLParam(r, "containerID")
	forceRefresh := false
	if refresh := r.URL.Query().Get("refresh"); refresh != "" {
		var err error
		if forceRefresh, err = strconv.ParseBool(refresh); err != nil {
			writeError(w, h.log, errors.Wrapf(errBadRequest, "invalid refresh parameter %q", refresh))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	ranges, err := h.provider.TryGetOverlappingRanges(ctx, containerID, routing.FullRange(), forceRefresh)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, partitionKeyRangesResponse{
		ContainerID:        containerID,
		PartitionKeyRanges: ranges,
	})
}

func (h *handler) handleEffectiveRanges(w http.ResponseWriter, r *http.Request) {
	h.withFeedRange(w, r, func(ctx context.Context, req *feedRangeRequest, feedRange routing.FeedRange) (any, error) {
		ranges, err := feedRange.ComputeEffectiveRanges(ctx, h.provider, req.ContainerID, h.definition(req))
		if err != nil {
			return nil, err
		}
		return effectiveRangesResponse{
			ContainerID: req.ContainerID,
			Ranges:      ranges,
		}, nil
	})
}

func (h *handler) handlePartitionKeyRangeIDs(w http.ResponseWriter, r *http.Request) {
	h.withFeedRange(w, r, func(ctx context.Context, req *feedRangeRequest, feedRange routing.FeedRange) (any, error) {
		ids, err := feedRange.ComputePartitionKeyRangeIDs(ctx, h.provider, req.ContainerID, h.definition(req))
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []string{}
		}
		return partitionKeyRangeIDsResponse{
			ContainerID:          req.ContainerID,
			PartitionKeyRangeIDs: ids,
		}, nil
	})
}

func (h *handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	h.withFeedRange(w, r, func(_ context.Context, _ *feedRangeRequest, feedRange routing.FeedRange) (any, error) {
		descriptor := routing.NewRequestDescriptor()
		if activityID := r.Header.Get(routing.HeaderActivityID); activityID != "" {
			descriptor.ActivityID = activityID
		}
		feedRange.Accept(routing.NewRequestPopulator(descriptor))
		return requestResponse{
			RequestDescriptor: descriptor,
			Headers:           descriptor.Headers(),
		}, nil
	})
}

func (h *handler) withFeedRange(w http.ResponseWriter, r *http.Request,
	f func(ctx context.Context, req *feedRangeRequest, feedRange routing.FeedRange) (any, error)) {
	req := &feedRangeRequest{}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(req); err != nil {
		if !errors.Is(err, routing.ErrMalformedFeedRange) {
			err = errors.Wrap(errBadRequest, err.Error())
		}
		writeError(w, h.log, err)
		return
	}

	if req.ContainerID == "" {
		writeError(w, h.log, errors.Wrap(errBadRequest, "missing containerId"))
		return
	}

	feedRange, err := req.feedRange()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if feedRange.Kind() == routing.KindUnknown {
		writeError(w, h.log, errors.Wrap(routing.ErrMalformedFeedRange, "missing feed range type"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	res, err := f(ctx, req, feedRange)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) definition(req *feedRangeRequest) *routing.PartitionKeyDefinition {
	if req.PartitionKeyDefinition != nil {
		return req.PartitionKeyDefinition
	}
	if def, ok := h.definitions[req.ContainerID]; ok {
		return &def
	}
	// Keys loaded through viper are lower-cased
	if def, ok := h.definitions[strings.ToLower(req.ContainerID)]; ok {
		return &def
	}
	return nil
}
