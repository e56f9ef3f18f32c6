package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/sitepass/internal/cli"
	"github.com/aretw0/sitepass/internal/config"
	"github.com/aretw0/sitepass/internal/storefactory"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Inspect and load the record tables",
}

var tableListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the tables and their row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		infos, err := cli.ListTables(cmd.Context(), app.Stores.Store)
		if err != nil {
			return err
		}
		var sb strings.Builder
		sb.WriteString("| Table | Rows |\n|---|---|\n")
		for _, info := range infos {
			fmt.Fprintf(&sb, "| %s | %d |\n", info.Table, info.Rows)
		}
		return printer(cmd).Print(sb.String(), infos)
	},
}

var tableDumpCmd = &cobra.Command{
	Use:   "dump <table>",
	Short: "Print the rows of a table as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := parseTable(args[0])
		if err != nil {
			return err
		}
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.DumpTable(cmd.Context(), app.Stores.Store, table, cmd.OutOrStdout())
	},
}

var tableImportCmd = &cobra.Command{
	Use:   "import [table file.json]",
	Short: "Load tables into the configured store",
	Long: `Copies every table from another store (--from-backend with --from-dir), or loads
one table from a JSON array of rows as written by 'table dump'. Existing rows
of the imported tables are replaced.`,
	Example: `  sitepass table import --store redis --from-backend xlsx --from-dir ./data
  sitepass table import inductions inductions.json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <table> <file.json>, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		p := printer(cmd)

		if len(args) == 2 {
			table, err := parseTable(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			defer f.Close()
			rows, err := cli.ReadRows(f)
			if err != nil {
				return err
			}
			if err := app.Stores.Store.WriteTable(cmd.Context(), table, rows); err != nil {
				return err
			}
			p.Notice("Imported %d rows into %s", len(rows), table)
			return nil
		}

		srcCfg := *app.Config
		srcCfg.Store.Backend, _ = cmd.Flags().GetString("from-backend")
		srcCfg.Store.Dir, _ = cmd.Flags().GetString("from-dir")
		srcCfg.Lock.Distributed = false
		if err := srcCfg.Validate(); err != nil {
			return err
		}
		src, err := storefactory.Open(cmd.Context(), &srcCfg, storefactory.WithLogger(app.Logger))
		if err != nil {
			return err
		}
		defer src.Close()

		copied, err := cli.CopyTables(cmd.Context(), src.Store, app.Stores.Store)
		for _, t := range cli.SortedTables(copied) {
			p.Notice("Imported %d rows into %s", copied[t], t)
		}
		return err
	},
}

func parseTable(name string) (ports.Table, error) {
	table, ok := ports.ParseTable(name)
	if !ok {
		return "", fmt.Errorf("unknown table %q", name)
	}
	return table, nil
}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.AddCommand(tableListCmd, tableDumpCmd, tableImportCmd)

	tableImportCmd.Flags().String("from-backend", config.BackendXLSX, "Source store backend")
	tableImportCmd.Flags().String("from-dir", ".", "Source directory (file and xlsx backends)")
}
