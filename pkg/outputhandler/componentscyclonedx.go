package outputhandler

import (
	"io"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/venslabs/licensepatch/pkg/api/types"
)

// NewCycloneDXOutputHandler returns an OutputHandler that accumulates resolved
// components and emits them as a CycloneDX BOM on Close.
func NewCycloneDXOutputHandler(w io.Writer) OutputHandler { return &cycloneDxWriter{w: w} }

type cycloneDxWriter struct {
	w      io.Writer
	c      []types.ComponentData
	closed bool
}

func (c *cycloneDxWriter) HandleComponents(cd []types.ComponentData) error {
	if len(cd) == 0 {
		return nil
	}
	c.c = append(c.c, cd...)
	return nil
}

func (c *cycloneDxWriter) Close() error {
	if c.closed {
		return nil
	}
	bom := cyclonedx.NewBOM()

	comps := make([]cyclonedx.Component, 0, len(c.c))
	for _, d := range c.c {
		comp := cyclonedx.Component{
			Type:       cyclonedx.ComponentTypeLibrary,
			Name:       d.Name,
			Version:    d.Version,
			PackageURL: d.PURL,
		}
		if len(d.Licenses) > 0 {
			ls := make(cyclonedx.Licenses, 0, len(d.Licenses))
			for _, l := range d.Licenses {
				ls = append(ls, cyclonedx.LicenseChoice{License: &cyclonedx.License{Name: l.Name, URL: l.URL}})
			}
			comp.Licenses = &ls
		}
		if d.URL != "" {
			comp.ExternalReferences = &[]cyclonedx.ExternalReference{{Type: cyclonedx.ERTypeWebsite, URL: d.URL}}
		}
		comps = append(comps, comp)
	}
	if len(comps) > 0 {
		bom.Components = &comps
	}

	enc := cyclonedx.NewBOMEncoder(c.w, cyclonedx.BOMFileFormatJSON)
	enc.SetPretty(true)
	if err := enc.Encode(bom); err != nil {
		return err
	}
	c.closed = true
	return nil
}
