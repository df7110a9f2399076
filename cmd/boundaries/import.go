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

package boundaries

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/streamnative/rangeroute/routingmap"
)

var importCmd = &cobra.Command{
	Use:   "import <boundary-file>",
	Short: "Import a boundary file in the store",
	Long:  `Store the boundary maps of all the containers of a boundary file, replacing the existing ones.`,
	Args:  cobra.ExactArgs(1),
	RunE:  execImport,
}

func execImport(cmd *cobra.Command, args []string) (err error) {
	bf, err := routingmap.ReadBoundaryFile(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	for _, containerID := range bf.ContainerIDs() {
		ranges := bf.Containers[containerID]
		if err := store.Put(containerID, ranges); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d ranges\n", containerID, len(ranges)); err != nil {
			return err
		}
	}
	return nil
}
