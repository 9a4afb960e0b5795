// Copyright 2025 venslabs
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

package merger

import (
	"slices"
	"sort"
	"strings"

	"github.com/venslabs/licensepatch/pkg/api/types"
	"github.com/venslabs/licensepatch/pkg/license"
)

type group struct {
	first    types.ComponentData
	licenses *license.Set
	notices  []string
}

// Merge groups components by their exact name. Version, URL and purl come
// from the first member of a group, licenses and notices are unioned. The
// result is sorted by name ignoring case, ties by plain string order.
func Merge(components []types.ComponentData) []types.ComponentData {
	var order []string
	groups := map[string]*group{}
	for _, c := range components {
		g, ok := groups[c.Name]
		if !ok {
			g = &group{first: c, licenses: license.NewSet(c.Licenses...)}
			groups[c.Name] = g
			order = append(order, c.Name)
		} else {
			g.licenses.Union(c.Licenses)
		}
		g.notices = append(g.notices, c.AttributionNotices...)
	}

	out := make([]types.ComponentData, 0, len(order))
	for _, name := range order {
		g := groups[name]
		d := g.first
		d.Licenses = g.licenses.Items()
		notices := slices.Clone(g.notices)
		slices.Sort(notices)
		d.AttributionNotices = slices.Compact(notices)
		if d.AttributionNotices == nil {
			d.AttributionNotices = []string{}
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out
}
