package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hangar/internal/auth"
	"hangar/pkg/db"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hangarctl",
		Short:         "Operator utility for the hangar publishing service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newAdminCommand())
	return cmd
}

func newMigrateCommand() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			pool, err := db.Open(ctx, dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "Postgres DSN (defaults to DB_DSN)")
	return cmd
}

// credentialsFile is the YAML shape accepted by --from-file.
type credentialsFile struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator account operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAdminCreateCommand())
	cmd.AddCommand(newAdminDeleteCommand())
	return cmd
}

func newAdminDeleteCommand() *cobra.Command {
	var (
		dsn      string
		username string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("username is required")
			}

			pool, err := db.Open(ctx, dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			tag, err := db.Exec(ctx, pool, `DELETE FROM admins WHERE username = $1`, username)
			if err != nil {
				return fmt.Errorf("delete admin: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("admin %q not found", username)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %q deleted\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "Postgres DSN (defaults to DB_DSN)")
	cmd.Flags().StringVar(&username, "username", "", "login name")
	return cmd
}

func newAdminCreateCommand() *cobra.Command {
	var (
		dsn      string
		username string
		password string
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account or rotate its password",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read credentials file: %w", err)
				}
				var creds credentialsFile
				if err := yaml.Unmarshal(data, &creds); err != nil {
					return fmt.Errorf("parse credentials file: %w", err)
				}
				username, password = creds.Username, creds.Password
			}

			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("username is required")
			}
			if password == "" {
				return errors.New("password is required")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			pool, err := db.Open(ctx, dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			orm, err := db.ConnectORM(ctx, dsn)
			if err != nil {
				return fmt.Errorf("connect orm: %w", err)
			}
			defer func() { _ = db.CloseORM(orm) }()

			store, err := auth.NewPostgresStore(orm)
			if err != nil {
				return err
			}
			if err := store.Upsert(ctx, username, hash); err != nil {
				return fmt.Errorf("upsert admin: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %q ready\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "Postgres DSN (defaults to DB_DSN)")
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "password (prefer --from-file)")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "YAML file with username and password")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
