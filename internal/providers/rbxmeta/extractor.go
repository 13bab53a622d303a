// Package rbxmeta pulls best-effort metadata out of XML model payloads.
package rbxmeta

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"

	"assetproxy/internal/assettype"
	"assetproxy/internal/domain"
	"assetproxy/internal/infra"
)

// Extractor reads the first <Item> of a <roblox> document. It never fails;
// anything it cannot read yields an empty result.
type Extractor struct {
	logger *infra.Logger
}

// NewExtractor returns an Extractor logging at debug level to logger.
func NewExtractor(logger *infra.Logger) *Extractor {
	return &Extractor{logger: infra.OrDiscard(logger)}
}

type document struct {
	XMLName xml.Name `xml:"roblox"`
	Items   []item   `xml:"Item"`
}

type item struct {
	Class      string     `xml:"class,attr"`
	Properties properties `xml:"Properties"`
}

type properties struct {
	Strings []namedValue `xml:"string"`
}

type namedValue struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

const maxXMLBytes = 8 << 20

var errNotXML = errors.New("payload is not an xml model")

// Extract returns the class, name, creator and sniffed type found in payload.
func (e *Extractor) Extract(payload []byte) domain.PartialMetadata {
	partial, err := e.extract(payload)
	if err != nil {
		e.logger.Debug().Err(err).Msg("xml metadata extraction skipped")
		return domain.PartialMetadata{}
	}
	return partial
}

func (e *Extractor) extract(payload []byte) (out domain.PartialMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = domain.PartialMetadata{}, errors.New("xml decoder panic")
		}
	}()
	trimmed := bytes.TrimSpace(payload)
	// "<roblox!" is the binary format header.
	if !bytes.HasPrefix(trimmed, []byte("<roblox")) || bytes.HasPrefix(trimmed, []byte("<roblox!")) {
		return out, errNotXML
	}
	if len(trimmed) > maxXMLBytes {
		trimmed = trimmed[:maxXMLBytes]
	}

	var doc document
	dec := xml.NewDecoder(bytes.NewReader(trimmed))
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return out, err
	}
	if len(doc.Items) == 0 {
		return out, errors.New("no items")
	}
	first := doc.Items[0]
	out.Class = first.Class
	out.Type = assettype.Sniff(payload)
	for _, p := range first.Properties.Strings {
		switch p.Name {
		case "Name":
			out.Name = strings.TrimSpace(p.Value)
		case "Creator", "CreatorName":
			out.Creator = strings.TrimSpace(p.Value)
		}
	}
	return out, nil
}
