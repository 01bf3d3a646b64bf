package appstream

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type xmlComponent struct {
	Type         string           `xml:"type,attr"`
	ID           string           `xml:"id"`
	PkgName      string           `xml:"pkgname"`
	Names        []xmlText        `xml:"name"`
	Summaries    []xmlText        `xml:"summary"`
	Descriptions []xmlDescription `xml:"description"`
	Icons        []xmlIcon        `xml:"icon"`
}

type xmlText struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Text  string     `xml:",chardata"`
}

// xmlDescription holds the paragraphs and list items of one <description>,
// each tagged with its language.
type xmlDescription struct {
	parts []descPart
}

type descPart struct {
	lang string
	text string
}

type xmlIcon struct {
	Type   string `xml:"type,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Value  string `xml:",chardata"`
}

// ParseXML parses an AppStream XML document. Both collection documents
// (<components>) and single metainfo files (<component>) are accepted.
// Collections are decoded one <component> at a time.
func ParseXML(r io.Reader) (*Collection, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStart(dec)
	if err != nil {
		return nil, err
	}

	coll := &Collection{}
	switch root.Name.Local {
	case "components":
		coll.Origin = strings.TrimSpace(attr(root.Attr, "origin"))
		if err := decodeComponents(dec, coll); err != nil {
			return nil, err
		}
	case "component", "application":
		var xc xmlComponent
		if err := dec.DecodeElement(&xc, &root); err != nil {
			return nil, err
		}
		coll.add(xc)
	default:
		return nil, fmt.Errorf("unexpected root element <%s>", root.Name.Local)
	}

	if coll.Components == nil {
		coll.Components = []*Component{}
	}
	return coll, nil
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return xml.StartElement{}, fmt.Errorf("no root element")
			}
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// decodeComponents reads the children of <components> up to its end tag.
func decodeComponents(dec *xml.Decoder, coll *Collection) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("unterminated <components>")
			}
			return err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "component" {
				if err := dec.Skip(); err != nil {
					return err
				}
				continue
			}
			var xc xmlComponent
			if err := dec.DecodeElement(&xc, &tk); err != nil {
				return err
			}
			coll.add(xc)
		case xml.EndElement:
			return nil
		}
	}
}

// add converts xc and appends it; components without an id are dropped.
func (c *Collection) add(xc xmlComponent) {
	id := strings.TrimSpace(xc.ID)
	if id == "" {
		return
	}
	comp := &Component{
		ID:      id,
		Type:    xc.Type,
		PkgName: strings.TrimSpace(xc.PkgName),
		Name:    texts(xc.Names),
		Summary: texts(xc.Summaries),
	}
	for _, d := range xc.Descriptions {
		comp.Description = mergeDescription(comp.Description, d)
	}
	for _, ic := range xc.Icons {
		if ref, ok := xmlIconRef(ic); ok {
			comp.Icons = append(comp.Icons, ref)
		}
	}
	c.Components = append(c.Components, comp)
}

func attr(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func langOf(attrs []xml.Attr) string {
	if l := attr(attrs, "lang"); l != "" {
		return l
	}
	return DefaultLocale
}

func texts(items []xmlText) Translatable {
	if len(items) == 0 {
		return nil
	}
	t := make(Translatable, len(items))
	for _, it := range items {
		t[langOf(it.Attrs)] = strings.TrimSpace(it.Text)
	}
	return t
}

// UnmarshalXML walks the markup of a <description> element. Paragraphs and
// list items carry their own xml:lang in collection files; older files
// repeat the whole <description> per language instead.
func (d *xmlDescription) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	outer := langOf(start.Attr)
	var stack []string
	var buf strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "p", "li":
				lang := outer
				if l := langOf(tk.Attr); l != DefaultLocale {
					lang = l
				}
				stack = append(stack, lang)
				buf.Reset()
			}
		case xml.EndElement:
			switch tk.Name.Local {
			case "p", "li":
				if len(stack) == 0 {
					continue
				}
				lang := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				text := collapseSpace(buf.String())
				if tk.Name.Local == "li" && text != "" {
					text = "• " + text
				}
				if text != "" {
					d.parts = append(d.parts, descPart{lang: lang, text: text})
				}
				buf.Reset()
			case start.Name.Local:
				if len(stack) == 0 {
					return nil
				}
			}
		case xml.CharData:
			if len(stack) > 0 {
				buf.Write(tk)
			}
		}
	}
}

// mergeDescription folds one <description> element into t, joining the
// paragraphs of each language with blank lines.
func mergeDescription(t Translatable, d xmlDescription) Translatable {
	if len(d.parts) == 0 {
		return t
	}
	parts := map[string][]string{}
	var order []string
	for _, p := range d.parts {
		if _, ok := parts[p.lang]; !ok {
			order = append(order, p.lang)
		}
		parts[p.lang] = append(parts[p.lang], p.text)
	}

	if t == nil {
		t = make(Translatable, len(order))
	}
	for _, lang := range order {
		text := strings.Join(parts[lang], "\n\n")
		if prev, ok := t[lang]; ok && prev != "" {
			text = prev + "\n\n" + text
		}
		t[lang] = text
	}
	return t
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func xmlIconRef(ic xmlIcon) (IconRef, bool) {
	value := strings.TrimSpace(ic.Value)
	if value == "" {
		return IconRef{}, false
	}
	kind := IconKind(ic.Type)
	switch kind {
	case IconStock, IconCached, IconLocal, IconRemote:
	case "":
		kind = IconStock
	default:
		return IconRef{}, false
	}
	w, _ := strconv.Atoi(ic.Width)
	h, _ := strconv.Atoi(ic.Height)
	return IconRef{Kind: kind, Value: value, Width: w, Height: h}, true
}
