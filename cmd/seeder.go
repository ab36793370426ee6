package cmd

import (
	"fmt"

	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/category"
	categoryPostgres "github.com/frahmantamala/event-management/internal/category/postgres"
	"github.com/frahmantamala/event-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/event-management/internal/permission/postgres"
	"github.com/frahmantamala/event-management/internal/user"
	userPostgres "github.com/frahmantamala/event-management/internal/user/postgres"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	seedDemoUsers bool
	seedPassword  string
)

type demoUser struct {
	Email string
	Name  string
	Role  permission.Role
}

var demoUsers = []demoUser{
	{"superadmin@mail.com", "Super Admin", permission.RoleSuperAdmin},
	{"admin@mail.com", "Admin", permission.RoleAdmin},
	{"user@mail.com", "Regular User", permission.RoleUser},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed permissions, categories and role assignments",
	Long: `Upsert the permission catalog and the event categories, then replace every
user's permission set with the one derived from their role. Safe to re-run.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemoUsers, "demo-users", false, "also create one demo account per role")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "password for demo accounts")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer db.Close()

	gormDB, err := initGorm(db)
	if err != nil {
		return fmt.Errorf("failed to init gorm: %w", err)
	}

	if seedDemoUsers {
		users := user.NewService(userPostgres.NewUserRepository(db), lg)
		hash, err := auth.HashPassword(seedPassword, cfg.Security.BCryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}
		for _, du := range demoUsers {
			u, err := users.EnsureUser(ctx, du.Email, du.Name, du.Role.String(), hash)
			if err != nil {
				return fmt.Errorf("failed to seed user %s: %w", du.Email, err)
			}
			lg.Info("demo user ready", "email", u.Email, "role", u.Role, "id", u.ID)
		}
	}

	categories := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)
	if _, err := categories.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	// Runs after users exist so their role assignments are materialized.
	permissions := permission.NewService(permissionPostgres.NewPermissionRepository(gormDB), lg)
	counts, err := permissions.ReseedAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}

	fmt.Printf("Permissions seeded successfully: %d superAdmin, %d admin, %d user accounts updated\n",
		counts[permission.RoleSuperAdmin], counts[permission.RoleAdmin], counts[permission.RoleUser])
	return nil
}
