package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/config"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/database"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/security"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/tools/common"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/tools/ui"
)

type options struct {
	ci      bool
	timeout time.Duration
	envFile string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "seed",
		Short: "Seed baseline data for local development",
	}
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "plain JSON output for CI")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load")

	root.AddCommand(
		&cobra.Command{
			Use:   "apply",
			Short: "Insert the demo dataset",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "seed apply", "apply", func(ctx context.Context) ([]string, error) {
					db, err := openDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					return applySeed(db)
				})
				return err
			},
		},
		&cobra.Command{
			Use:   "dry-run",
			Short: "Show what apply would insert",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "seed dry-run", "dry-run", func(ctx context.Context) ([]string, error) {
					db, err := openDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					return planSeed(db)
				})
				return err
			},
		},
	)

	var email string
	promote := &cobra.Command{
		Use:   "promote-admin",
		Short: "Grant the admin role to an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			_, err := run(opts, "seed promote-admin", "promote", func(ctx context.Context) ([]string, error) {
				db, err := openDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if err := database.PromoteBootstrapAdmin(db, slog.Default(), email); err != nil {
					return nil, err
				}
				return []string{"promoted " + email}, nil
			})
			return err
		},
	}
	promote.Flags().StringVar(&email, "email", "", "email of the user to promote")
	root.AddCommand(promote)

	return root
}

func run(opts *options, title, step string, action func(ctx context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx := context.Background()
		if opts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			defer cancel()
		}
		details, err := action(ctx)
		common.PrintCIResult(err == nil, title, details, err)
		return details, err
	}
	return ui.Run(fmt.Sprintf("%s (%s)", title, step), opts.timeout, action)
}

func openDB(envFile string) (*gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// demoMachines is the fixture set for local development.
func demoMachines() []domain.Machine {
	return []domain.Machine{
		{AssetTag: "CNC-001", Name: "CNC Milling Machine", Location: "Building A", Status: domain.MachineStatusOperational},
		{AssetTag: "PRS-002", Name: "Hydraulic Press", Location: "Building A", Status: domain.MachineStatusOperational},
		{AssetTag: "CNV-003", Name: "Conveyor Line 3", Location: "Building B", Status: domain.MachineStatusMaintenance},
	}
}

func applySeed(db *gorm.DB) ([]string, error) {
	var details []string

	var adminCount int64
	if err := db.Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&adminCount).Error; err != nil {
		return nil, err
	}
	if adminCount == 0 {
		hash, err := security.HashPassword("changeme-admin")
		if err != nil {
			return nil, err
		}
		admin := domain.User{
			Email:        "admin@localhost",
			Name:         "Local Admin",
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
			Status:       domain.UserStatusActive,
		}
		if err := db.Create(&admin).Error; err != nil {
			return nil, err
		}
		details = append(details, "created admin@localhost")
	}

	for _, m := range demoMachines() {
		var count int64
		if err := db.Model(&domain.Machine{}).Where("asset_tag = ?", m.AssetTag).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}
		machine := m
		if err := db.Create(&machine).Error; err != nil {
			return nil, err
		}
		details = append(details, "created machine "+m.AssetTag)
	}

	if len(details) == 0 {
		details = []string{"nothing to do"}
	}
	return details, nil
}

func planSeed(db *gorm.DB) ([]string, error) {
	var details []string

	var adminCount int64
	if err := db.Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&adminCount).Error; err != nil {
		return nil, err
	}
	if adminCount == 0 {
		details = append(details, "would create admin@localhost")
	}
	for _, m := range demoMachines() {
		var count int64
		if err := db.Model(&domain.Machine{}).Where("asset_tag = ?", m.AssetTag).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			details = append(details, "would create machine "+m.AssetTag)
		}
	}
	if len(details) == 0 {
		details = []string{"nothing to do"}
	}
	return details, nil
}
