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
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var listContainerID string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the boundary maps in the store",
	Long:  `List the containers in the store or, with --container, the partition key ranges of one container.`,
	Args:  cobra.NoArgs,
	RunE:  execList,
}

func init() {
	listCmd.Flags().StringVarP(&listContainerID, "container", "c", "", "Show the ranges of this container")
}

func execList(cmd *cobra.Command, _ []string) (err error) {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if listContainerID != "" {
		ranges, err := store.Fetch(context.Background(), listContainerID)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tMIN\tMAX\tPARENTS")
		for _, r := range ranges {
			fmt.Fprintf(w, "%s\t%q\t%q\t%v\n", r.ID, r.MinInclusive, r.MaxExclusive, r.Parents)
		}
		return w.Flush()
	}

	containers, err := store.Containers()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "CONTAINER\tRANGES\tUPDATED")
	for _, c := range containers {
		fmt.Fprintf(w, "%s\t%d\t%s\n", c.ContainerID, c.Ranges, humanize.Time(c.UpdatedAt))
	}
	return w.Flush()
}
