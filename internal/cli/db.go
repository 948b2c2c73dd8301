package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/daleel/internal/store"
)

// DBInitResult is the output of db init.
type DBInitResult struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schemaVersion"`
}

func (r DBInitResult) String() string {
	return fmt.Sprintf("Database ready at %s (schema version %d)", r.Path, r.SchemaVersion)
}

// NewDBCommand creates the db command group.
func NewDBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	cmd.AddCommand(newDBInitCommand(rootOpts))
	return cmd
}

func newDBInitCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database schema and run migrations",
		Long: `Create the SQLite database if it does not exist, apply the schema and
run pending migrations. Safe to run repeatedly.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			path, err := rootOpts.databasePath(f, dbPath)
			if err != nil {
				return err
			}

			f.VerboseLog("opening database %s", path)
			st, err := store.Open(path)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
			}
			defer st.Close()

			version, err := st.SchemaVersion(cmd.Context())
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to read schema version", err)
			}
			return f.Success(DBInitResult{Path: path, SchemaVersion: version})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")
	return cmd
}
