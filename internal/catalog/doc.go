// Package catalog binds the configured databases to their live schemas and
// finds or creates the artist, album and label pages that other records link
// to.
package catalog
