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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/multierr"

	"github.com/streamnative/rangeroute/common"
	"github.com/streamnative/rangeroute/routing"
)

const (
	containerKeyPrefix = "container/"

	// One past '/', the upper bound of the container keys.
	containerKeyEnd = "container0"
)

type PebbleSourceOptions struct {
	DataDir     string
	CacheSizeMB int64
	InMemory    bool
	Clock       common.Clock
}

var DefaultPebbleSourceOptions = &PebbleSourceOptions{
	DataDir:     "./data/boundaries",
	CacheSizeMB: 16,
	InMemory:    false,
}

type storedRange struct {
	ID           string   `msgpack:"id"`
	MinInclusive string   `msgpack:"min"`
	MaxExclusive string   `msgpack:"max"`
	Parents      []string `msgpack:"parents,omitempty"`
}

type storedBoundaryMap struct {
	Ranges          []storedRange `msgpack:"ranges"`
	UpdatedAtMillis uint64        `msgpack:"updated"`
}

// BoundaryMapInfo describes a boundary map persisted in a PebbleSource.
type BoundaryMapInfo struct {
	ContainerID string
	Ranges      int
	UpdatedAt   time.Time
}

// PebbleSource persists the boundary maps of the containers in a Pebble
// database, one key per container.
type PebbleSource struct {
	db    *pebble.DB
	cache *pebble.Cache
	clock common.Clock
	log   *slog.Logger
}

func NewPebbleSource(options *PebbleSourceOptions) (*PebbleSource, error) {
	if options == nil {
		options = DefaultPebbleSourceOptions
	}
	dataDir := options.DataDir
	if dataDir == "" {
		dataDir = DefaultPebbleSourceOptions.DataDir
	}
	cacheSizeMB := options.CacheSizeMB
	if cacheSizeMB == 0 {
		cacheSizeMB = DefaultPebbleSourceOptions.CacheSizeMB
	}
	clock := options.Clock
	if clock == nil {
		clock = common.SystemClock()
	}

	ps := &PebbleSource{
		cache: pebble.NewCache(cacheSizeMB * 1024 * 1024),
		clock: clock,
		log: slog.With(
			slog.String("component", "pebble-source"),
		),
	}

	pbOptions := &pebble.Options{
		Cache: ps.cache,
		FS:    vfs.Default,
		Logger: &pebbleLogger{
			ps.log.With(slog.String("sub-component", "pebble")),
		},
		FormatMajorVersion: pebble.FormatNewest,
	}

	if options.InMemory {
		pbOptions.FS = vfs.NewMem()
	} else if err := os.MkdirAll(dataDir, 0o755); err != nil {
		ps.cache.Unref()
		return nil, errors.Wrapf(err, "failed to create data directory %s", dataDir)
	}

	dbPath := filepath.Join(dataDir, "db")
	db, err := pebble.Open(dbPath, pbOptions)
	if err != nil {
		ps.cache.Unref()
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	ps.db = db

	ps.log.Info(
		"Opened boundary map store",
		slog.String("path", dbPath),
		slog.Bool("in-memory", options.InMemory),
	)
	return ps, nil
}

// Put validates and stores the boundary map of a container, replacing the
// previous one.
func (ps *PebbleSource) Put(containerID string, ranges []routing.PartitionKeyRange) error {
	if containerID == "" {
		return errors.New("container id must not be empty")
	}
	if _, err := NewSnapshot(containerID, ranges); err != nil {
		return err
	}

	stored := storedBoundaryMap{
		Ranges:          make([]storedRange, len(ranges)),
		UpdatedAtMillis: ps.clock.NowMillis(),
	}
	for i, r := range ranges {
		stored.Ranges[i] = storedRange{
			ID:           r.ID,
			MinInclusive: r.MinInclusive,
			MaxExclusive: r.MaxExclusive,
			Parents:      r.Parents,
		}
	}

	value, err := msgpack.Marshal(&stored)
	if err != nil {
		return errors.Wrap(err, "failed to serialize boundary map")
	}

	if err := ps.db.Set(containerKey(containerID), value, pebble.Sync); err != nil {
		return errors.Wrapf(err, "failed to store boundary map of container %q", containerID)
	}
	return nil
}

// Delete removes the boundary map of a container.
func (ps *PebbleSource) Delete(containerID string) error {
	return ps.db.Delete(containerKey(containerID), pebble.Sync)
}

func (ps *PebbleSource) Fetch(_ context.Context, containerID string) ([]routing.PartitionKeyRange, error) {
	stored, err := ps.get(containerID)
	if err != nil {
		return nil, err
	}

	ranges := make([]routing.PartitionKeyRange, len(stored.Ranges))
	for i, r := range stored.Ranges {
		ranges[i] = routing.PartitionKeyRange{
			ID:           r.ID,
			MinInclusive: r.MinInclusive,
			MaxExclusive: r.MaxExclusive,
			Parents:      r.Parents,
		}
	}
	return ranges, nil
}

// Containers lists the boundary maps in the store, ordered by container id.
func (ps *PebbleSource) Containers() ([]BoundaryMapInfo, error) {
	it, err := ps.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(containerKeyPrefix),
		UpperBound: []byte(containerKeyEnd),
	})
	if err != nil {
		return nil, err
	}

	var res []BoundaryMapInfo
	for it.First(); it.Valid(); it.Next() {
		stored := storedBoundaryMap{}
		if err := msgpack.Unmarshal(it.Value(), &stored); err != nil {
			return nil, multierr.Combine(
				errors.Wrapf(err, "failed to deserialize boundary map at %q", it.Key()),
				it.Close(),
			)
		}
		res = append(res, BoundaryMapInfo{
			ContainerID: strings.TrimPrefix(string(it.Key()), containerKeyPrefix),
			Ranges:      len(stored.Ranges),
			UpdatedAt:   time.UnixMilli(int64(stored.UpdatedAtMillis)),
		})
	}
	return res, it.Close()
}

func (ps *PebbleSource) get(containerID string) (*storedBoundaryMap, error) {
	value, closer, err := ps.db.Get(containerKey(containerID))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrContainerNotFound, "container %q", containerID)
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read boundary map of container %q", containerID)
	}
	defer closer.Close()

	stored := &storedBoundaryMap{}
	if err := msgpack.Unmarshal(value, stored); err != nil {
		return nil, errors.Wrapf(err, "failed to deserialize boundary map of container %q", containerID)
	}
	return stored, nil
}

func (ps *PebbleSource) Close() error {
	err := ps.db.Close()
	ps.cache.Unref()
	return err
}

func containerKey(containerID string) []byte {
	return []byte(containerKeyPrefix + containerID)
}

// pebbleLogger is the wrapper of slog to implement pebble's logger interface.
type pebbleLogger struct {
	zl *slog.Logger
}

func (pl *pebbleLogger) Infof(format string, args ...any) {
	pl.zl.Info(fmt.Sprintf(format, args...))
}

func (pl *pebbleLogger) Errorf(format string, args ...any) {
	pl.zl.Error(fmt.Sprintf(format, args...))
}

func (pl *pebbleLogger) Fatalf(format string, args ...any) {
	pl.zl.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
