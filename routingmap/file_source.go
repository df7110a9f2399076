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
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/rangeroute/common"
	"github.com/streamnative/rangeroute/routing"
)

// BoundaryFile is the yaml document holding the boundary maps of a set of
// containers.
//
//	containers:
//	  orders:
//	    - id: "0"
//	      minInclusive: ""
//	      maxExclusive: "2000"
//	    - id: "1"
//	      minInclusive: "2000"
//	      maxExclusive: "FF"
type BoundaryFile struct {
	Containers map[string][]routing.PartitionKeyRange `yaml:"containers" json:"containers"`
}

// Validate checks that every container has a complete boundary map.
func (b *BoundaryFile) Validate() error {
	var err error
	for containerID, ranges := range b.Containers {
		if _, e := NewSnapshot(containerID, ranges); e != nil {
			err = multierr.Append(err, e)
		}
	}
	return err
}

func (b *BoundaryFile) ContainerIDs() []string {
	ids := make([]string, 0, len(b.Containers))
	for id := range b.Containers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func ReadBoundaryFile(path string) (*BoundaryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read boundary file %s", path)
	}

	bf := &BoundaryFile{}
	if err := yaml.Unmarshal(data, bf); err != nil {
		return nil, errors.Wrapf(err, "failed to parse boundary file %s", path)
	}
	if len(bf.Containers) == 0 {
		return nil, errors.Errorf("boundary file %s has no containers", path)
	}
	if err := bf.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid boundary file %s", path)
	}
	return bf, nil
}

func WriteBoundaryFile(path string, bf *BoundaryFile) error {
	data, err := yaml.Marshal(bf)
	if err != nil {
		return errors.Wrap(err, "failed to serialize boundary file")
	}
	return os.WriteFile(path, data, 0o644)
}

// FileSource serves the boundary maps stored in a yaml file and reloads
// them whenever the file changes. A reload that fails keeps the last valid
// content.
type FileSource struct {
	sync.RWMutex

	path    string
	content *BoundaryFile
	version atomic.Int64

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *slog.Logger
}

func NewFileSource(path string) (*FileSource, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fs := &FileSource{
		path: absPath,
		log: slog.With(
			slog.String("component", "file-source"),
			slog.String("path", absPath),
		),
	}
	if err := fs.Reload(); err != nil {
		return nil, err
	}

	// Watch the directory, so that files replaced by a rename are still
	// picked up.
	if fs.watcher, err = fsnotify.NewWatcher(); err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	if err := fs.watcher.Add(filepath.Dir(absPath)); err != nil {
		return nil, multierr.Combine(
			errors.Wrapf(err, "failed to watch %s", filepath.Dir(absPath)),
			fs.watcher.Close(),
		)
	}

	fs.ctx, fs.cancel = context.WithCancel(context.Background())
	fs.wg.Add(1)
	go common.DoWithLabels(fs.ctx, map[string]string{
		"rangeroute": "file-source-watcher",
	}, fs.watch)

	return fs, nil
}

// Reload reads the file again.
func (fs *FileSource) Reload() error {
	bf, err := ReadBoundaryFile(fs.path)
	if err != nil {
		return err
	}

	fs.Lock()
	fs.content = bf
	fs.Unlock()

	fs.version.Add(1)
	return nil
}

// Version is incremented on every successful load of the file.
func (fs *FileSource) Version() int64 {
	return fs.version.Load()
}

func (fs *FileSource) Fetch(_ context.Context, containerID string) ([]routing.PartitionKeyRange, error) {
	fs.RLock()
	defer fs.RUnlock()

	ranges, ok := fs.content.Containers[containerID]
	if !ok {
		return nil, errors.Wrapf(ErrContainerNotFound, "container %q", containerID)
	}
	return cloneRanges(ranges), nil
}

func (fs *FileSource) watch() {
	defer fs.wg.Done()

	for {
		select {
		case <-fs.ctx.Done():
			return

		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fs.path ||
				!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := fs.Reload(); err != nil {
				fs.log.Warn(
					"Failed to reload boundary file, keeping the previous content",
					slog.Any("error", err),
				)
				continue
			}
			fs.log.Info(
				"Reloaded boundary file",
				slog.Int64("version", fs.Version()),
			)

		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.log.Warn(
				"Error while watching boundary file",
				slog.Any("error", err),
			)
		}
	}
}

func (fs *FileSource) Close() error {
	fs.cancel()
	err := fs.watcher.Close()
	fs.wg.Wait()
	return err
}
