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

package bom

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/cockroachdb/errors"
)

const xmlNamespacePrefix = "http://cyclonedx.org/schema/bom/"

var supportedVersions = map[string]cdx.SpecVersion{
	"1.0": cdx.SpecVersion1_0,
	"1.1": cdx.SpecVersion1_1,
	"1.2": cdx.SpecVersion1_2,
	"1.3": cdx.SpecVersion1_3,
	"1.4": cdx.SpecVersion1_4,
	"1.5": cdx.SpecVersion1_5,
	"1.6": cdx.SpecVersion1_6,
}

// Header is what must be known about a document before decoding it.
type Header struct {
	FileFormat  cdx.BOMFileFormat
	BOMFormat   string
	SpecVersion cdx.SpecVersion
}

// DetectFileFormat reports XML when the first non-space byte is '<'.
func DetectFileFormat(data []byte) cdx.BOMFileFormat {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return cdx.BOMFileFormatXML
	}
	return cdx.BOMFileFormatJSON
}

// ReadHeader checks the declared format and spec version without decoding
// the components.
func ReadHeader(data []byte) (Header, error) {
	if DetectFileFormat(data) == cdx.BOMFileFormatXML {
		return readXMLHeader(data)
	}
	return readJSONHeader(data)
}

func readJSONHeader(data []byte) (Header, error) {
	h := Header{FileFormat: cdx.BOMFileFormatJSON}
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return h, errors.Mark(errors.Wrap(err, "read BOM"), ErrUnsupportedFormat)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return h, errors.Mark(errors.New("invalid CycloneDX JSON: expected object start"), ErrUnsupportedFormat)
	}

	var version string
	seenFormat, seenVersion := false, false
	for dec.More() && !(seenFormat && seenVersion) {
		t, err := dec.Token()
		if err != nil {
			return h, errors.Mark(errors.Wrap(err, "read BOM"), ErrUnsupportedFormat)
		}
		key, ok := t.(string)
		if !ok {
			return h, errors.Mark(errors.New("invalid key token"), ErrUnsupportedFormat)
		}
		switch key {
		case "bomFormat":
			if err := dec.Decode(&h.BOMFormat); err != nil {
				return h, errors.Mark(errors.Wrap(err, "bomFormat"), ErrUnsupportedFormat)
			}
			seenFormat = true
		case "specVersion":
			if err := dec.Decode(&version); err != nil {
				return h, errors.Mark(errors.Wrap(err, "specVersion"), ErrUnsupportedVersion)
			}
			seenVersion = true
		default:
			if err := skipAny(dec); err != nil {
				return h, errors.Mark(errors.Wrap(err, "read BOM"), ErrUnsupportedFormat)
			}
		}
	}

	if h.BOMFormat != cdx.BOMFormat {
		return h, errors.Mark(errors.Newf("bomFormat %q is not %s", h.BOMFormat, cdx.BOMFormat), ErrUnsupportedFormat)
	}
	sv, ok := supportedVersions[version]
	if !ok {
		return h, errors.Mark(errors.Newf("specVersion %q is not supported", version), ErrUnsupportedVersion)
	}
	h.SpecVersion = sv
	return h, nil
}

func readXMLHeader(data []byte) (Header, error) {
	h := Header{FileFormat: cdx.BOMFileFormatXML}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return h, errors.Mark(errors.Wrap(err, "read BOM"), ErrUnsupportedFormat)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "bom" || !strings.HasPrefix(start.Name.Space, xmlNamespacePrefix) {
			return h, errors.Mark(errors.Newf("root element {%s}%s is not a CycloneDX bom", start.Name.Space, start.Name.Local), ErrUnsupportedFormat)
		}
		h.BOMFormat = cdx.BOMFormat
		version := strings.TrimPrefix(start.Name.Space, xmlNamespacePrefix)
		sv, ok := supportedVersions[version]
		if !ok {
			return h, errors.Mark(errors.Newf("specVersion %q is not supported", version), ErrUnsupportedVersion)
		}
		h.SpecVersion = sv
		return h, nil
	}
}

// skipAny consumes the next JSON value in full (scalar, object, or array).
func skipAny(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, isDelim := tok.(json.Delim)
	if !isDelim {
		return nil
	}
	depth := 1
	var open, close rune
	switch d {
	case '{':
		open, close = '{', '}'
	case '[':
		open, close = '[', ']'
	default:
		return nil
	}
	for depth > 0 {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		if dd, ok := t.(json.Delim); ok {
			switch rune(dd) {
			case open:
				depth++
			case close:
				depth--
			}
		}
	}
	return nil
}
