// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"encoding/xml"
	"strings"
)

// Record is one PubmedArticle element from an EFetch response. Optional
// sub-elements are pointers so callers can tell an absent element from an
// empty one.
type Record struct {
	Citation   *MedlineCitation `xml:"MedlineCitation"`
	PubmedData *PubmedData      `xml:"PubmedData"`
}

// PMID returns the record's PubMed identifier, or "" when absent.
func (r Record) PMID() string {
	if r.Citation == nil {
		return ""
	}
	return strings.TrimSpace(r.Citation.PMID)
}

// MedlineCitation holds the bibliographic part of a record.
type MedlineCitation struct {
	PMID    string       `xml:"PMID"`
	Article *ArticleData `xml:"Article"`
}

// ArticleData is MedlineCitation/Article.
type ArticleData struct {
	Title    *MarkupText `xml:"ArticleTitle"`
	Journal  *Journal    `xml:"Journal"`
	Abstract *Abstract   `xml:"Abstract"`
}

// Journal is MedlineCitation/Article/Journal.
type Journal struct {
	Title string `xml:"Title"`
}

// Abstract holds the abstract fragments. Structured abstracts carry one
// labelled fragment per section (BACKGROUND, METHODS, ...).
type Abstract struct {
	Texts []AbstractText `xml:"AbstractText"`
}

// AbstractText is one abstract fragment.
type AbstractText struct {
	Label string
	Text  MarkupText
}

// UnmarshalXML decodes the Label attribute and flattens the fragment's
// content, including inline markup, to text.
func (a *AbstractText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "Label" {
			a.Label = attr.Value
		}
	}
	return a.Text.UnmarshalXML(d, start)
}

// PubmedData holds the record's publication-status data.
type PubmedData struct {
	ArticleIDs []ArticleID `xml:"ArticleIdList>ArticleId"`
}

// ArticleID is one typed external identifier (doi, pubmed, pmc, pii, ...).
type ArticleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}

// DOI returns the first doi-typed identifier, or "".
func (p *PubmedData) DOI() string {
	if p == nil {
		return ""
	}
	for _, id := range p.ArticleIDs {
		if strings.EqualFold(id.Type, "doi") {
			if v := strings.TrimSpace(id.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// MarkupText is element content with inline markup (<i>, <sup>, <b>, ...)
// flattened to its character data.
type MarkupText string

// UnmarshalXML collects all character data up to the matching end element.
func (m *MarkupText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*m = MarkupText(b.String())
				return nil
			}
			depth--
		}
	}
}

// articleSet is the EFetch response root. The root element name is not
// fixed so that an eFetchResult error document decodes into the same type.
type articleSet struct {
	XMLName  xml.Name
	Articles []Record `xml:"PubmedArticle"`
	Error    string   `xml:"ERROR"`
}
