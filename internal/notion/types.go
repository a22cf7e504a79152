package notion

import (
	"net/url"
	"strings"
)

// TextSegment is one segment of a title or rich-text property.
type TextSegment struct {
	PlainText string `json:"plain_text"`
}

// Ref is a page reference inside a relation property.
type Ref struct {
	ID string `json:"id"`
}

// SelectOption is a select or multi-select choice.
type SelectOption struct {
	Name string `json:"name"`
}

// DateRange is a date property value.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Property is one property value as read from a page.
type Property struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       []TextSegment  `json:"title,omitempty"`
	RichText    []TextSegment  `json:"rich_text,omitempty"`
	Relation    []Ref          `json:"relation,omitempty"`
	HasMore     bool           `json:"has_more,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	URL         *string        `json:"url,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Date        *DateRange     `json:"date,omitempty"`
}

// Text joins the plain text of a title or rich-text property.
func (p Property) Text() string {
	segments := p.Title
	if p.Type != "title" {
		segments = p.RichText
	}
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.PlainText)
	}
	return strings.TrimSpace(b.String())
}

// RelationIDs returns the referenced page IDs.
func (p Property) RelationIDs() []string {
	ids := make([]string, 0, len(p.Relation))
	for _, ref := range p.Relation {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// Page is a database row.
type Page struct {
	ID             string              `json:"id"`
	LastEditedTime string              `json:"last_edited_time"`
	Archived       bool                `json:"archived"`
	Properties     map[string]Property `json:"properties"`
}

// Title returns the text of the page's title property.
func (p *Page) Title() string {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return prop.Text()
		}
	}
	return ""
}

// Property returns the property stored under key.
func (p *Page) Property(key string) (Property, bool) {
	prop, ok := p.Properties[key]
	return prop, ok
}

// Text returns the text of the property stored under key.
func (p *Page) Text(key string) string {
	prop, ok := p.Properties[key]
	if !ok {
		return ""
	}
	return prop.Text()
}

// RelationIDs returns the page IDs referenced by the property under key.
func (p *Page) RelationIDs(key string) []string {
	prop, ok := p.Properties[key]
	if !ok {
		return nil
	}
	return prop.RelationIDs()
}

// PropertyInfo describes one database column.
type PropertyInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Database is a database definition.
type Database struct {
	ID         string                  `json:"id"`
	Title      []TextSegment           `json:"title"`
	Properties map[string]PropertyInfo `json:"properties"`
}

// Name returns the database title.
func (d *Database) Name() string {
	var b strings.Builder
	for _, seg := range d.Title {
		b.WriteString(seg.PlainText)
	}
	return b.String()
}

// Schema maps stable property IDs to the keys used in page payloads.
type Schema struct {
	DatabaseID string
	TitleKey   string
	byID       map[string]string
	info       map[string]PropertyInfo
}

// NewSchema indexes a database definition.
func NewSchema(db *Database) *Schema {
	s := &Schema{
		DatabaseID: db.ID,
		byID:       make(map[string]string, len(db.Properties)*2),
		info:       make(map[string]PropertyInfo, len(db.Properties)),
	}
	for key, prop := range db.Properties {
		s.info[key] = prop
		s.byID[prop.ID] = key
		if decoded, err := url.PathUnescape(prop.ID); err == nil {
			s.byID[decoded] = key
		}
		if prop.Type == "title" {
			s.TitleKey = key
		}
	}
	return s
}

// Key returns the payload key for a property ID. IDs are accepted in either
// URL-encoded or decoded form.
func (s *Schema) Key(propertyID string) (string, bool) {
	if s == nil || propertyID == "" {
		return "", false
	}
	if key, ok := s.byID[propertyID]; ok {
		return key, true
	}
	if decoded, err := url.PathUnescape(propertyID); err == nil {
		key, ok := s.byID[decoded]
		return key, ok
	}
	return "", false
}

// Info returns the column description for a payload key.
func (s *Schema) Info(key string) (PropertyInfo, bool) {
	info, ok := s.info[key]
	return info, ok
}

// Keys returns every payload key in the schema.
func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.info))
	for key := range s.info {
		keys = append(keys, key)
	}
	return keys
}
