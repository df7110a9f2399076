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

package routingmap

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/streamnative/rangeroute/routing"
)

var ErrContainerNotFound = errors.New("routingmap: container not found")

// Source is the authoritative origin of the boundary map. Implementations
// must be safe for concurrent use.
type Source interface {
	io.Closer

	// Fetch returns the current partition key ranges of a container, or an
	// error matching ErrContainerNotFound.
	Fetch(ctx context.Context, containerID string) ([]routing.PartitionKeyRange, error)
}
