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

package outputhandler

import (
	"encoding/json"
	"io"

	"github.com/venslabs/licensepatch/pkg/api/types"
)

type jsonOutputHandler struct {
	w io.Writer
	c []types.ComponentData
}

// NewJSONOutputHandler writes the resolved component list as an indented JSON array.
func NewJSONOutputHandler(w io.Writer) OutputHandler {
	return &jsonOutputHandler{w: w}
}

func (h *jsonOutputHandler) HandleComponents(c []types.ComponentData) error {
	h.c = append(h.c, c...)
	return nil
}

func (h *jsonOutputHandler) Close() error {
	out := h.c
	if out == nil {
		out = []types.ComponentData{}
	}
	enc := json.NewEncoder(h.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
