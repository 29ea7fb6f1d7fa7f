package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthguard/healthguard/internal/config"
	"github.com/healthguard/healthguard/internal/platform/db"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withMigrator(cmd, func(m *db.Migrator) error {
				count, err := m.Up(cmd.Context())
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(a.stdout, "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withMigrator(cmd, func(m *db.Migrator) error {
				statuses, err := m.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Fprintf(a.stdout, "%-10s %-30s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					status, appliedAt := "pending", ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Fprintf(a.stdout, "%-10d %-30s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	})
	return cmd
}

// withMigrator runs fn against the embedded PostgreSQL migrations. SQLite
// stores need no migrations: their schema is applied on open.
func (a *app) withMigrator(cmd *cobra.Command, fn func(m *db.Migrator) error) error {
	if a.cfg.Driver() != config.DriverPostgres {
		fmt.Fprintln(a.stdout, "SQLite schema is applied automatically; nothing to migrate.")
		return nil
	}
	b, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(db.NewEmbeddedMigrator(b.pool))
}

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check store connectivity and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.rangeTable()
			if err != nil {
				return err
			}
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			h := b.Health(cmd.Context())
			fmt.Fprintf(a.stdout, "driver:  %s\n", h.Driver)
			fmt.Fprintf(a.stdout, "ranges:  %d vitals\n", table.Len())
			if h.Pool != nil {
				fmt.Fprintf(a.stdout, "pool:    %d/%d connections\n", h.Pool.TotalConns, h.Pool.MaxConns)
			}
			if !h.Healthy {
				criticalColor.Fprintf(a.stdout, "store:   unhealthy (%s)\n", h.Error)
				return fmt.Errorf("store is unhealthy")
			}
			okColor.Fprintln(a.stdout, "store:   ok")
			return nil
		},
	}
}
