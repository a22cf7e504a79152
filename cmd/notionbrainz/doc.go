// Command notionbrainz enriches Notion music databases with MusicBrainz
// metadata.
//
// Running the binary without a subcommand performs a sync of every
// configured database. Subcommands list database property IDs for the
// config file, inspect the run history ledger, and create or check the
// configuration.
package main
