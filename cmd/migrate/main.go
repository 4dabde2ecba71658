package main

import (
	"fmt"
	"os"

	"agrishop-be/internal/config"
	"agrishop-be/internal/db"

	"github.com/spf13/cobra"
)

type schemaMigrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, ok bool, err error)
}

// openFunc connects to the configured database. The returned func closes it.
type openFunc func() (schemaMigrator, func() error, error)

func openDatabase() (schemaMigrator, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	m, err := db.NewMigrator(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return m, conn.Close, nil
}

func main() {
	if err := newRootCmd(openDatabase).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the agrishop database schema",
		SilenceUsage:  true,
	}

	withMigrator := func(fn func(cmd *cobra.Command, m schemaMigrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			m, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(cmd, m)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("rolled back one migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator) error {
				version, dirty, ok, err := m.Version()
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println("no migrations applied")
					return nil
				}
				out := fmt.Sprintf("version %d", version)
				if dirty {
					out += " (dirty)"
				}
				cmd.Println(out)
				return nil
			}),
		},
	)

	return root
}
