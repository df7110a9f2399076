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

// Package routing resolves feed ranges into the regions of a container's
// effective key space they cover.
//
// A FeedRange is either an explicit EffectiveRange, a logical PartitionKey
// or the id of a partition key range. Partition key range ids are looked up
// through a RoutingMapProvider, refreshing its cached boundary map once when
// the id is unknown and failing with a *RangeGoneError when it is still
// unknown afterward.
//
// The package does not log, export metrics or cache boundary maps. See the
// routingmap package for provider implementations.
package routing
