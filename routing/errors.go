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

package routing

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SubStatusCode refines an HTTP-style status code.
type SubStatusCode int

const (
	SubStatusUnknown               SubStatusCode = 0
	SubStatusPartitionKeyRangeGone SubStatusCode = 1002
)

const (
	CodeInvalidLayout         codes.Code = 120
	CodeMalformedFeedRange    codes.Code = 121
	CodePartitionKeyRangeGone codes.Code = 122
)

var (
	ErrInvalidLayout         = errors.New("routing: partition key definition is required")
	ErrMalformedFeedRange    = errors.New("routing: malformed feed range")
	ErrInvalidPartitionKey   = errors.New("routing: invalid partition key")
	ErrPartitionKeyMismatch  = errors.New("routing: partition key does not match the partition key definition")
	ErrPartitionKeyRangeGone = errors.New("routing: partition key range is gone")
)

// RangeGoneError reports that a partition key range identifier could not be
// found in the boundary map, even after a forced refresh. The identifier is
// permanently invalid: continuation state that references it must be
// abandoned.
type RangeGoneError struct {
	ContainerID         string
	PartitionKeyRangeID string
}

func (e *RangeGoneError) Error() string {
	return fmt.Sprintf("routing: partition key range %q of container %q is gone",
		e.PartitionKeyRangeID, e.ContainerID)
}

func (*RangeGoneError) StatusCode() int {
	return http.StatusGone
}

func (*RangeGoneError) SubStatusCode() SubStatusCode {
	return SubStatusPartitionKeyRangeGone
}

func (*RangeGoneError) Is(target error) bool {
	return target == ErrPartitionKeyRangeGone
}

func (e *RangeGoneError) GRPCStatus() *status.Status {
	return status.New(CodePartitionKeyRangeGone, e.Error())
}

type statusCoder interface {
	StatusCode() int
	SubStatusCode() SubStatusCode
}

// StatusCodes extracts the HTTP-style classification carried by err, if any.
func StatusCodes(err error) (statusCode int, subStatusCode SubStatusCode, ok bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), sc.SubStatusCode(), true
	}
	return 0, SubStatusUnknown, false
}

// ToGRPCStatus maps the routing errors to the custom gRPC codes. Context
// errors keep their standard codes.
func ToGRPCStatus(err error) *status.Status {
	var gone *RangeGoneError
	switch {
	case err == nil:
		return status.New(codes.OK, "")
	case errors.As(err, &gone):
		return gone.GRPCStatus()
	case errors.Is(err, ErrInvalidLayout):
		return status.New(CodeInvalidLayout, err.Error())
	case errors.Is(err, ErrMalformedFeedRange):
		return status.New(CodeMalformedFeedRange, err.Error())
	default:
		return status.FromContextError(err)
	}
}
