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

package license

// Set is an insertion-ordered set of licenses. The zero value is ready to use.
type Set struct {
	items []License
	seen  map[License]struct{}
}

// NewSet returns a set holding ls in order, without duplicates.
func NewSet(ls ...License) *Set {
	s := &Set{}
	for _, l := range ls {
		s.Add(l)
	}
	return s
}

// Add inserts l unless an equal license is already present.
// It reports whether l was inserted.
func (s *Set) Add(l License) bool {
	if s.seen == nil {
		s.seen = make(map[License]struct{})
	}
	if _, ok := s.seen[l]; ok {
		return false
	}
	s.seen[l] = struct{}{}
	s.items = append(s.items, l)
	return true
}

// Union adds every license of ls, keeping first-seen order.
func (s *Set) Union(ls []License) {
	for _, l := range ls {
		s.Add(l)
	}
}

func (s *Set) Len() int { return len(s.items) }

// Items returns a copy of the licenses in insertion order.
func (s *Set) Items() []License {
	out := make([]License, len(s.items))
	copy(out, s.items)
	return out
}
