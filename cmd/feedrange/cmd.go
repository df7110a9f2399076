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

package feedrange

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streamnative/rangeroute/routing"
)

var Cmd = &cobra.Command{
	Use:   "feedrange",
	Short: "Encode, decode and project feed ranges",
	Long:  `Tools to work with the textual and compact forms of feed ranges.`,
}

func init() {
	Cmd.AddCommand(encodeCmd)
	Cmd.AddCommand(decodeCmd)
	Cmd.AddCommand(projectCmd)
}

// Parse accepts both the JSON form of a feed range and its compact token.
func Parse(text string) (routing.FeedRange, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") {
		return routing.Deserialize(text)
	}
	return routing.DeserializeCompact(text)
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}
