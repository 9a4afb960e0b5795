package types

import "github.com/venslabs/licensepatch/pkg/license"

// ComponentData is a resolved component: the name it is reported under and
// its canonicalized licenses. It is what listing and patching consume, and the
// only shape exposed to downstream tools such as manifest renderers.
type ComponentData struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	URL     string `json:"url,omitempty"`
	// PURL is the key the patch writer matches BOM components by.
	PURL               string            `json:"purl,omitempty"`
	Licenses           []license.License `json:"licenses"`
	AttributionNotices []string          `json:"attributionNotices"`
}
