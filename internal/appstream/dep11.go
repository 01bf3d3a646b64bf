package appstream

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type dep11Header struct {
	File   string `yaml:"File"`
	Origin string `yaml:"Origin"`
}

type dep11Component struct {
	Type        string            `yaml:"Type"`
	ID          string            `yaml:"ID"`
	Package     string            `yaml:"Package"`
	Name        map[string]string `yaml:"Name"`
	Summary     map[string]string `yaml:"Summary"`
	Description map[string]string `yaml:"Description"`
	Icon        dep11Icons        `yaml:"Icon"`
}

type dep11Icons struct {
	Stock  string        `yaml:"stock"`
	Cached []dep11Sized  `yaml:"cached"`
	Local  []dep11Sized  `yaml:"local"`
	Remote []dep11Remote `yaml:"remote"`
}

type dep11Sized struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type dep11Remote struct {
	URL    string `yaml:"url"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ParseDEP11 parses a DEP-11 YAML stream: a header document declaring
// File: DEP-11 followed by one document per component.
func ParseDEP11(r io.Reader) (*Collection, error) {
	dec := yaml.NewDecoder(r)

	var header dep11Header
	if err := dec.Decode(&header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty DEP-11 document")
		}
		return nil, err
	}
	if header.File != "DEP-11" {
		return nil, fmt.Errorf("not a DEP-11 document (File: %q)", header.File)
	}

	coll := &Collection{Origin: strings.TrimSpace(header.Origin)}
	for {
		var dc dep11Component
		err := dec.Decode(&dc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if dc.ID == "" {
			continue
		}
		coll.Components = append(coll.Components, dc.component())
	}

	return coll, nil
}

func (dc dep11Component) component() *Component {
	comp := &Component{
		ID:      strings.TrimSpace(dc.ID),
		Type:    dc.Type,
		PkgName: strings.TrimSpace(dc.Package),
		Name:    translatable(dc.Name, strings.TrimSpace),
		Summary: translatable(dc.Summary, strings.TrimSpace),
	}
	comp.Description = translatable(dc.Description, markupText)

	if dc.Icon.Stock != "" {
		comp.Icons = append(comp.Icons, IconRef{Kind: IconStock, Value: dc.Icon.Stock})
	}
	for _, c := range dc.Icon.Cached {
		comp.Icons = append(comp.Icons, IconRef{Kind: IconCached, Value: c.Name, Width: c.Width, Height: c.Height})
	}
	for _, l := range dc.Icon.Local {
		comp.Icons = append(comp.Icons, IconRef{Kind: IconLocal, Value: l.Name, Width: l.Width, Height: l.Height})
	}
	for _, rm := range dc.Icon.Remote {
		comp.Icons = append(comp.Icons, IconRef{Kind: IconRemote, Value: rm.URL, Width: rm.Width, Height: rm.Height})
	}
	return comp
}

func translatable(m map[string]string, clean func(string) string) Translatable {
	if len(m) == 0 {
		return nil
	}
	t := make(Translatable, len(m))
	for k, v := range m {
		t[k] = clean(v)
	}
	return t
}

// markupText flattens DEP-11 description markup (<p>, <ul><li>) to plain
// paragraphs separated by blank lines.
func markupText(markup string) string {
	var d xmlDescription
	dec := xml.NewDecoder(strings.NewReader("<description>" + markup + "</description>"))
	if start, err := nextStart(dec); err == nil {
		// Paragraphs read before a markup error are kept.
		_ = d.UnmarshalXML(dec, start)
	}
	desc := mergeDescription(nil, d)
	if text, ok := desc[DefaultLocale]; ok {
		return text
	}
	return collapseSpace(markup)
}
