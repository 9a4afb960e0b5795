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
	"io"
	"os"
	"strings"

	"github.com/aquasecurity/table"
	"github.com/aquasecurity/tml"
	"github.com/package-url/packageurl-go"
	"github.com/venslabs/licensepatch/pkg/api/types"
	"github.com/venslabs/licensepatch/pkg/license"
)

type tableOutputHandler struct {
	w io.Writer
	c []types.ComponentData
}

func NewTableOutputHandler(w io.Writer) OutputHandler {
	if w == nil {
		w = os.Stdout
	}
	return &tableOutputHandler{w: w}
}

func (h *tableOutputHandler) HandleComponents(c []types.ComponentData) error {
	h.c = append(h.c, c...)
	return nil
}

func (h *tableOutputHandler) Close() error {
	if len(h.c) == 0 {
		return nil
	}

	t := table.New(h.w)
	t.SetHeaders("Component", "Version", "Type", "Licenses", "Attribution")
	for _, c := range h.c {
		t.AddRow(
			c.Name,
			c.Version,
			purlType(c.PURL),
			formatLicenses(c.Licenses),
			strings.Join(c.AttributionNotices, "\n"),
		)
	}
	t.Render()
	return nil
}

func purlType(purl string) string {
	if purl == "" {
		return "-"
	}
	p, err := packageurl.FromString(purl)
	if err != nil {
		return "unknown"
	}
	return p.Type
}

// formatLicenses puts one license per line; catalog licenses are green.
func formatLicenses(ls []license.License) string {
	if len(ls) == 0 {
		return tml.Sprintf("<red>none</red>")
	}
	lines := make([]string, 0, len(ls))
	for _, l := range ls {
		if l.Configured {
			lines = append(lines, tml.Sprintf("<green>%s</green>", l.Name))
			continue
		}
		lines = append(lines, l.Name)
	}
	return strings.Join(lines, "\n")
}
