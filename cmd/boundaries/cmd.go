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
	"github.com/spf13/cobra"

	"github.com/streamnative/rangeroute/cmd/flag"
	"github.com/streamnative/rangeroute/routingmap"
)

var dataDir string

var Cmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Manage boundary maps",
	Long:  `Generate boundary maps and manage the boundary map store.`,
}

func init() {
	flag.DataDir(importCmd, &dataDir)
	flag.DataDir(listCmd, &dataDir)

	Cmd.AddCommand(generateCmd)
	Cmd.AddCommand(importCmd)
	Cmd.AddCommand(listCmd)
}

func openStore() (*routingmap.PebbleSource, error) {
	return routingmap.NewPebbleSource(&routingmap.PebbleSourceOptions{DataDir: dataDir})
}
