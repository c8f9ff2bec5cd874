package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shaurya/recordkit/config"
	"github.com/shaurya/recordkit/db"
	"github.com/shaurya/recordkit/framework"
	"github.com/shaurya/recordkit/orm"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string
	root := &cobra.Command{
		Use:           "recordkit",
		Short:         "Record helpers for GORM applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configDir, "config", "c", "config", "Configuration directory")

	loadConfig := func() (*config.Config, error) {
		return framework.LoadConfig(configDir)
	}

	root.AddCommand(dateCmd(loadConfig))
	root.AddCommand(dbCmd(loadConfig))
	root.AddCommand(versionCmd())
	return root
}

// --- Dates ---

func dateCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Convert dates between the save and display formats",
	}

	converter := func() (orm.DateConverter, error) {
		cfg, err := loadConfig()
		if err != nil {
			return orm.DateConverter{}, err
		}
		return orm.NewDateConverterFromConfig(cfg.Record)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "to-display [date]",
		Short: "Reformat a stored date for display",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := converter()
			if err != nil {
				return err
			}
			out, err := c.ToDisplay(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "to-save [date]",
		Short: "Reformat a displayed date for storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := converter()
			if err != nil {
				return err
			}
			out, err := c.ToSave(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "to-timestamp [date]",
		Short: "Convert a displayed date to a Unix timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := converter()
			if err != nil {
				return err
			}
			ts, err := c.ToTimestamp(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ts)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "from-timestamp [unix]",
		Short: "Format a Unix timestamp with the display format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := converter()
			if err != nil {
				return err
			}
			ts, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid timestamp %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.FromTimestamp(ts))
			return nil
		},
	})

	return cmd
}

// --- Database ---

func dbCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	connect := func() (*gorm.DB, *config.Config, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, nil, err
		}
		if err := framework.InitLogger(cfg.App.Env); err != nil {
			return nil, nil, err
		}
		conn, err := db.Connect(cfg.Database, cfg.App.Env)
		if err != nil {
			return nil, nil, err
		}
		return conn, cfg, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Run pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, cfg, err := connect()
			if err != nil {
				return err
			}
			return db.Migrate(conn, cfg.Database.MigrationsDir)
		},
	})

	var steps int
	rollbackCmd := &cobra.Command{
		Use:   "rollback",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, cfg, err := connect()
			if err != nil {
				return err
			}
			return db.Rollback(conn, cfg.Database.MigrationsDir, steps)
		},
	}
	rollbackCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(rollbackCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, cfg, err := connect()
			if err != nil {
				return err
			}
			return db.MigrationStatus(conn, cfg.Database.MigrationsDir)
		},
	})

	return cmd
}

// --- Version ---

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the recordkit version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recordkit v%s\n", version)
		},
	}
}
