package main

import (
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"notionbrainz/internal/config"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/syncrun"
)

func newPropertiesCommand(ctx *commandContext) *cobra.Command {
	database := syncrun.DatabaseAll
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "List database property IDs and the fields mapped to them",
		Long: "List every property of the configured databases with its Notion ID.\n" +
			"Copy the IDs into the [properties.<database>] tables of the config file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := syncrun.ParseDatabase(database)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			client, err := newNotionClient(cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, kind := range kinds {
				id := cfg.DatabaseID(kind)
				if id == "" {
					fmt.Fprintf(out, "%s: not configured\n\n", kind)
					continue
				}
				db, err := client.Database(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("load %s database: %w", kind, err)
				}
				printDatabaseProperties(out, kind, db, cfg.Fields(kind))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&database, "database", "d", database, "Database to list: artists, albums, songs, labels or all")
	return cmd
}

func printDatabaseProperties(out io.Writer, kind config.Kind, db *notion.Database, fields config.FieldMap) {
	byID := make(map[string][]string, len(fields))
	for field, id := range fields {
		id = decodeID(id)
		if id != "" {
			byID[id] = append(byID[id], field)
		}
	}

	keys := make([]string, 0, len(db.Properties))
	for key := range db.Properties {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	seen := make(map[string]struct{}, len(keys))
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		prop := db.Properties[key]
		id := decodeID(prop.ID)
		seen[id] = struct{}{}
		mapped := byID[id]
		slices.Sort(mapped)
		rows = append(rows, []string{key, prop.Type, prop.ID, strings.Join(mapped, ", ")})
	}

	title := db.Name()
	if title == "" {
		title = db.ID
	}
	fmt.Fprintf(out, "%s (%s)\n", kind, title)
	fmt.Fprintln(out, renderTable([]string{"Property", "Type", "ID", "Field"}, rows, nil))

	var missing []string
	for field, id := range fields {
		if _, ok := seen[decodeID(id)]; !ok && id != "" {
			missing = append(missing, fmt.Sprintf("%s -> %s", field, id))
		}
	}
	slices.Sort(missing)
	for _, m := range missing {
		fmt.Fprintf(out, "warning: mapped field %s is not in this database\n", m)
	}
	fmt.Fprintln(out)
}

func decodeID(id string) string {
	id = strings.TrimSpace(id)
	if decoded, err := url.PathUnescape(id); err == nil {
		return decoded
	}
	return id
}
