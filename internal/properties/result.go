package properties

import "notionbrainz/internal/notion"

type resultState int

const (
	omitted resultState = iota
	assigned
	cleared
)

// Result is the outcome of one rule.
type Result struct {
	state resultState
	value notion.Value
}

// Set writes v.
func Set(v notion.Value) Result {
	return Result{state: assigned, value: v}
}

// Clear empties the property.
func Clear() Result {
	return Result{state: cleared}
}

// Omit leaves the stored value untouched.
func Omit() Result {
	return Result{}
}

// PropertySet is the property payload produced for one page.
type PropertySet = notion.Properties

func text(s string) Result {
	if s == "" {
		return Omit()
	}
	return Set(notion.RichText(s))
}

func choice(s string) Result {
	if s == "" {
		return Omit()
	}
	return Set(notion.Select(s))
}

func link(u string) Result {
	if u == "" {
		return Omit()
	}
	return Set(notion.URL(u))
}

func options(names []string) Result {
	if len(names) == 0 {
		return Omit()
	}
	return Set(notion.MultiSelect(names))
}

func relation(ids []string) Result {
	if len(ids) == 0 {
		return Omit()
	}
	return Set(notion.Relation(ids))
}
