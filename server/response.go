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

	"github.com/pkg/errors"

	"github.com/streamnative/rangeroute/routing"
	"github.com/streamnative/rangeroute/routingmap"
)

const (
	contentTypeJSON = "application/json"

	// HeaderSubStatus carries the sub-status code of an error response.
	HeaderSubStatus = "x-substatus"
)

var errBadRequest = errors.New("bad request")

type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "error"
)

type errorResponse struct {
	Status    Status `json:"status"`
	Error     string `json:"error"`
	SubStatus int    `json:"subStatus,omitempty"`
}

type healthResponse struct {
	Status Status `json:"status"`
}

// feedRangeRequest carries a feed range either in its JSON form or as a
// compact token.
type feedRangeRequest struct {
	ContainerID            string                          `json:"containerId"`
	FeedRange              *routing.FeedRange              `json:"feedRange,omitempty"`
	FeedRangeToken         string                          `json:"feedRangeToken,omitempty"`
	PartitionKeyDefinition *routing.PartitionKeyDefinition `json:"partitionKeyDefinition,omitempty"`
}

func (r *feedRangeRequest) feedRange() (routing.FeedRange, error) {
	switch {
	case r.FeedRange != nil && r.FeedRangeToken != "":
		return routing.FeedRange{}, errors.Wrap(routing.ErrMalformedFeedRange, "only one of feedRange and feedRangeToken can be set")
	case r.FeedRange != nil:
		return *r.FeedRange, nil
	case r.FeedRangeToken != "":
		return routing.DeserializeCompact(r.FeedRangeToken)
	default:
		return routing.FeedRange{}, errors.Wrap(routing.ErrMalformedFeedRange, "missing feed range")
	}
}

type effectiveRangesResponse struct {
	ContainerID string                   `json:"containerId"`
	Ranges      []routing.EffectiveRange `json:"ranges"`
}

type partitionKeyRangeIDsResponse struct {
	ContainerID          string   `json:"containerId"`
	PartitionKeyRangeIDs []string `json:"partitionKeyRangeIds"`
}

type requestResponse struct {
	*routing.RequestDescriptor
	Headers map[string]string `json:"headers"`
}

type partitionKeyRangesResponse struct {
	ContainerID        string                      `json:"containerId"`
	PartitionKeyRanges []routing.PartitionKeyRange `json:"partitionKeyRanges"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn(
			"Failed to encode response",
			slog.Any("error", err),
		)
	}
}

// httpStatus maps a resolution error to the response status and sub-status.
func httpStatus(err error) (int, routing.SubStatusCode) {
	if status, subStatus, ok := routing.StatusCodes(err); ok {
		return status, subStatus
	}

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, routing.ErrMalformedFeedRange),
		errors.Is(err, routing.ErrInvalidLayout),
		errors.Is(err, routing.ErrInvalidPartitionKey),
		errors.Is(err, routing.ErrPartitionKeyMismatch),
		errors.Is(err, routing.ErrInvalidEffectiveRange):
		return http.StatusBadRequest, routing.SubStatusUnknown
	case errors.Is(err, routingmap.ErrContainerNotFound):
		return http.StatusNotFound, routing.SubStatusUnknown
	case errors.Is(err, routingmap.ErrRefreshThrottled):
		return http.StatusTooManyRequests, routing.SubStatusUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, routing.SubStatusUnknown
	default:
		return http.StatusInternalServerError, routing.SubStatusUnknown
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status, subStatus := httpStatus(err)
	if status >= http.StatusInternalServerError {
		log.Warn(
			"Failed to serve request",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	} else {
		log.Debug(
			"Rejected request",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	if subStatus != routing.SubStatusUnknown {
		w.Header().Set(HeaderSubStatus, strconv.Itoa(int(subStatus)))
	}
	writeJSON(w, status, errorResponse{
		Status:    StatusError,
		Error:     err.Error(),
		SubStatus: int(subStatus),
	})
}
