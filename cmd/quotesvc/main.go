package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"valour-interiors/quotes_backend/internal/app"
	"valour-interiors/quotes_backend/internal/app/config"
	"valour-interiors/quotes_backend/internal/domain/auth"
	"valour-interiors/quotes_backend/internal/infra/db/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quotesvc",
		Short:        "Quotation service for the design studio",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), userCmd(), renderCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|status|redo|version] [args...]",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) > 0 {
				command, args = args[0], args[1:]
			}
			return withDB(cmd.Context(), func(ctx context.Context, _ config.Config, db *postgres.DB) error {
				return db.Migrate(ctx, command, args...)
			})
		},
	}
}

func userCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	var name, password, role string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a login for a staff member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, cfg config.Config, db *postgres.DB) error {
				svc := auth.NewService(postgres.NewUserRepository(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, app.NewLogger(cfg))
				id, err := svc.Register(ctx, name, password, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", id.Name, id.Role, id.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "login name")
	add.Flags().StringVar(&password, "password", "", "password")
	add.Flags().StringVar(&role, "role", auth.RoleStaff, "admin or staff")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("password")

	user.AddCommand(add)
	return user
}

func renderCmd() *cobra.Command {
	var id, out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the PDF of a stored quotation to disk",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, app.NewLogger(cfg))
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, a.Close())
			}()

			doc, err := a.Quotes.Render(ctx, id)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = doc.Filename
			} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				path = filepath.Join(path, doc.Filename)
			}
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", path, doc.Pages)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "quotation id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func withDB(ctx context.Context, fn func(context.Context, config.Config, *postgres.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := postgres.New(ctx, postgres.Config{
		URL:      cfg.DB.URL,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, cfg, db)
}
