// Package config loads, normalizes, and validates notionbrainz configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as NOTION_TOKEN and MUSICBRAINZ_USER_AGENT. The
// Config type centralizes every knob the CLI needs: credentials, database IDs,
// remote endpoints, rate limits, matching policy and the per-database property
// ID tables that tell the formatter which Notion property backs each field.
//
// Always obtain settings through this package so downstream code receives
// sanitized values and clear validation errors.
package config
