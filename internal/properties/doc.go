// Package properties turns MusicBrainz entities into Notion property sets.
//
// Each database kind has a rule table. A rule names the semantic field it
// fills and builds a Result: Set writes a value, Clear empties the property
// and Omit leaves the stored value alone. Rules run only for fields that are
// configured and present in the database schema, so an unmapped field never
// costs a remote lookup. Relation fields are merged with the page's stored
// relations by MergeRelations before write-back.
package properties
