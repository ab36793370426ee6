package cmd

import (
	"fmt"

	"github.com/frahmantamala/event-management/internal/category"
	categoryPostgres "github.com/frahmantamala/event-management/internal/category/postgres"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Enable or disable event categories",
	Long: `Disabled categories are hidden from GET /categories and rejected when
creating or editing events. Events already in the category keep it.`,
}

var categoryEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Allow new events in a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetCategoryActive(cmd, args[0], true)
	},
}

var categoryDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Stop accepting new events in a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetCategoryActive(cmd, args[0], false)
	},
}

func init() {
	categoryCmd.AddCommand(categoryEnableCmd)
	categoryCmd.AddCommand(categoryDisableCmd)
}

func runSetCategoryActive(cmd *cobra.Command, name string, active bool) error {
	ctx := cmd.Context()
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := initDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer db.Close()

	gormDB, err := initGorm(db)
	if err != nil {
		return fmt.Errorf("failed to init gorm: %w", err)
	}

	categories := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), logger.LoggerWrapper())
	c, err := categories.SetActive(ctx, name, active)
	if err != nil {
		return fmt.Errorf("failed to update category %q: %w", name, err)
	}

	state := "disabled"
	if c.IsActive {
		state = "enabled"
	}
	fmt.Printf("Category %s is now %s\n", c.Name, state)
	return nil
}
