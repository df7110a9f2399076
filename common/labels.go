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

package common

import (
	"context"
	"runtime/pprof"
)

// DoWithLabels runs f with the given labels attached to the pprof context
// of the current goroutine, so that background workers can be told apart in
// profiles.
func DoWithLabels(ctx context.Context, labels map[string]string, f func()) {
	l := make([]string, 0, 2*len(labels))
	for k, v := range labels {
		l = append(l, k, v)
	}

	pprof.Do(ctx, pprof.Labels(l...), func(_ context.Context) {
		f()
	})
}
