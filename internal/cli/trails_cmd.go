package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/runbuddy/internal/cli/formatter"
	"github.com/i474232898/runbuddy/internal/trails/sources"
)

func newTrailsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trails",
		Short: "Inspect and export the trail catalog",
	}
	cmd.AddCommand(newTrailsListCmd(app), newTrailsExportCmd(app))
	return cmd
}

func newTrailsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured trail catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.Catalog.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			fmt.Fprint(app.Out, formatter.FormatTrails(records))
			return nil
		},
	}
}

func newTrailsExportCmd(app *App) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the configured catalog into a YAML file or SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			records, err := app.Catalog.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}

			switch format {
			case "yaml":
				if err := sources.WriteYAML(out, records); err != nil {
					return err
				}
			case "sqlite":
				db, err := sources.OpenSQLiteCatalog(out)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.Replace(cmd.Context(), records); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want yaml or sqlite)", format)
			}

			fmt.Fprintf(app.Out, "exported %d trails to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or sqlite")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path")
	return cmd
}
