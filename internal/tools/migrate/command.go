package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/config"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/database"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
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
		Use:   "migrate",
		Short: "Apply and inspect the database schema",
	}
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "plain JSON output for CI")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending schema changes",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "migrate up", "applying schema", func(ctx context.Context) ([]string, error) {
					_, db, err := loadConfigDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					if err := database.Migrate(db); err != nil {
						return nil, err
					}
					return []string{"schema is up to date"}, nil
				})
				return err
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which tables exist",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "migrate status", "inspecting schema", func(ctx context.Context) ([]string, error) {
					_, db, err := loadConfigDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					return tableStatus(db), nil
				})
				return err
			},
		},
		&cobra.Command{
			Use:   "plan",
			Short: "List tables that would be created",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "migrate plan", "planning schema", func(ctx context.Context) ([]string, error) {
					_, db, err := loadConfigDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					var missing []string
					for name, m := range managedModels() {
						if !db.Migrator().HasTable(m) {
							missing = append(missing, "create "+name)
						}
					}
					if len(missing) == 0 {
						missing = []string{"nothing to do"}
					}
					return missing, nil
				})
				return err
			},
		},
	)
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

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, fmt.Errorf("load env file: %w", err)
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

func managedModels() map[string]any {
	return map[string]any{
		"users":                 &domain.User{},
		"sessions":              &domain.Session{},
		"machines":              &domain.Machine{},
		"machine_histories":     &domain.MachineHistory{},
		"maintenance_schedules": &domain.MaintenanceSchedule{},
		"maintenance_records":   &domain.MaintenanceRecord{},
	}
}

func tableStatus(db *gorm.DB) []string {
	var details []string
	for name, m := range managedModels() {
		state := "missing"
		if db.Migrator().HasTable(m) {
			state = "present"
		}
		details = append(details, name+": "+state)
	}
	return details
}
