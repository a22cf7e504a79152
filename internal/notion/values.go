package notion

import (
	"encoding/json"
	"strings"
)

const maxRichTextLength = 2000

// Value is a typed property value for page writes.
type Value struct {
	kind    string
	payload any
	ids     []string
}

// Kind returns the Notion property type of the value.
func (v Value) Kind() string { return v.kind }

// IsRelation reports whether the value is a relation.
func (v Value) IsRelation() bool { return v.kind == "relation" }

// RelationIDs returns the page IDs of a relation value.
func (v Value) RelationIDs() []string { return append([]string(nil), v.ids...) }

// MarshalJSON renders {"<type>": payload}.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{v.kind: v.payload})
}

// Properties is a write payload keyed by property key.
type Properties map[string]Value

type textContent struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

func richText(content string) []textContent {
	if len(content) > maxRichTextLength {
		content = truncateRunes(content, maxRichTextLength)
	}
	var seg textContent
	seg.Text.Content = content
	return []textContent{seg}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// Title builds a title value.
func Title(text string) Value {
	return Value{kind: "title", payload: richText(text)}
}

// RichText builds a rich-text value.
func RichText(text string) Value {
	return Value{kind: "rich_text", payload: richText(text)}
}

// Select builds a select value. Commas are not allowed in option names.
func Select(name string) Value {
	return Value{kind: "select", payload: SelectOption{Name: optionName(name)}}
}

// MultiSelect builds a multi-select value, dropping blanks and duplicates.
func MultiSelect(names []string) Value {
	seen := make(map[string]struct{}, len(names))
	options := make([]SelectOption, 0, len(names))
	for _, name := range names {
		name = optionName(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		options = append(options, SelectOption{Name: name})
	}
	return Value{kind: "multi_select", payload: options}
}

// URL builds a url value.
func URL(u string) Value {
	return Value{kind: "url", payload: u}
}

// Date builds a date value; end may be blank.
func Date(start, end string) Value {
	return Value{kind: "date", payload: DateRange{Start: start, End: end}}
}

// Number builds a number value.
func Number(n float64) Value {
	return Value{kind: "number", payload: n}
}

// Relation builds a relation value. An empty list clears the relation.
func Relation(ids []string) Value {
	refs := make([]Ref, 0, len(ids))
	kept := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, Ref{ID: id})
		kept = append(kept, id)
	}
	return Value{kind: "relation", payload: refs, ids: kept}
}

// Empty builds a value that clears a property of the given type.
func Empty(propertyType string) Value {
	switch propertyType {
	case "relation":
		return Relation(nil)
	case "multi_select":
		return MultiSelect(nil)
	case "rich_text", "title":
		return Value{kind: propertyType, payload: []textContent{}}
	default:
		return Value{kind: propertyType, payload: nil}
	}
}

// IsEmpty reports whether the value clears its property.
func (v Value) IsEmpty() bool {
	switch payload := v.payload.(type) {
	case nil:
		return true
	case []Ref:
		return len(payload) == 0
	case []SelectOption:
		return len(payload) == 0
	case []textContent:
		return len(payload) == 0
	default:
		return false
	}
}

func optionName(name string) string {
	name = strings.ReplaceAll(name, ",", " ")
	return strings.Join(strings.Fields(name), " ")
}

// Filter is a database query filter.
type Filter map[string]any

// TitleEquals filters on an exact title match.
func TitleEquals(key, title string) Filter {
	return Filter{"property": key, "title": map[string]any{"equals": title}}
}

// Sort orders query results.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// LastEditedFirst sorts the most recently edited page first.
func LastEditedFirst() Sort {
	return Sort{Timestamp: "last_edited_time", Direction: "descending"}
}

// Query configures QueryDatabase. A positive Limit stops after that many
// pages.
type Query struct {
	Filter Filter
	Sorts  []Sort
	Limit  int
}

// PageOptions sets the cover and icon of a created or updated page.
type PageOptions struct {
	CoverURL string
	Icon     string
}

func (o PageOptions) apply(body map[string]any) {
	if o.CoverURL != "" {
		body["cover"] = map[string]any{"type": "external", "external": map[string]string{"url": o.CoverURL}}
	}
	if o.Icon != "" {
		body["icon"] = map[string]any{"type": "emoji", "emoji": o.Icon}
	}
}
