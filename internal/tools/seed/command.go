package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/squadup/admin-api/internal/config"
	"github.com/squadup/admin-api/internal/database"
	"github.com/squadup/admin-api/internal/tools/common"
	"github.com/squadup/admin-api/internal/tools/ui"
)

type options struct {
	envFile              string
	bootstrapAdminUserID string
	bootstrapAdminRole   string
	ci                   bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.bootstrapAdminUserID, "bootstrap-admin-user-id", "", "override bootstrap admin user id")
	cmd.PersistentFlags().StringVar(&opts.bootstrapAdminRole, "bootstrap-admin-role", "", "override bootstrap admin role")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDemoCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Ensure the bootstrap admin grant exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				userID, role := bootstrapTarget(cfg, opts)
				report, err := database.Bootstrap(db, userID, role)
				if err != nil {
					return nil, err
				}
				switch {
				case report.CreatedAdmin:
					return []string{fmt.Sprintf("created %s grant for user: %s", role, userID)}, nil
				case userID == "":
					return []string{"no bootstrap admin user id configured, nothing to do"}, nil
				default:
					return []string{fmt.Sprintf("grant already present for user: %s", userID)}, nil
				}
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed apply", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDemoCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Insert demo profiles, matches, reports, and sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed demo", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				report, err := database.SeedDemo(db)
				if err != nil {
					return nil, err
				}
				return []string{
					fmt.Sprintf("inserted %d profiles", report.Profiles),
					fmt.Sprintf("inserted %d matches", report.Matches),
					fmt.Sprintf("inserted %d reports", report.Reports),
					fmt.Sprintf("inserted %d user sessions", report.Sessions),
				}, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed demo", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				cfg, _, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				userID, role := bootstrapTarget(cfg, opts)
				details := []string{
					"would migrate tables: profiles, matches, reports, user_sessions, admin_users",
				}
				if userID != "" {
					details = append(details, fmt.Sprintf("would ensure %s grant for user: %s", role, userID))
				} else {
					details = append(details, "no bootstrap admin user id configured, would skip the grant")
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed dry-run", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func bootstrapTarget(cfg *config.Config, opts *options) (userID, role string) {
	userID = cfg.BootstrapAdminUserID
	if opts.bootstrapAdminUserID != "" {
		userID = opts.bootstrapAdminUserID
	}
	role = cfg.BootstrapAdminRole
	if opts.bootstrapAdminRole != "" {
		role = opts.bootstrapAdminRole
	}
	return userID, role
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(context.Background())
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
