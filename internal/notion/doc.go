// Package notion is a small client for the Notion REST API covering the
// calls the sync needs: database schema, paginated queries, page reads and
// page create/update with cover and icon.
//
// Databases identify properties two ways: a stable property ID that survives
// renames, and a display key used in page payloads. Schema maps the former to
// the latter so configuration can be written against IDs.
//
// Write payloads are built from Value constructors (Title, RichText, Select,
// Relation, ...), which marshal to the typed JSON shape Notion expects.
package notion
