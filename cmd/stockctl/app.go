package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	importapp "github.com/stockroom/backend/internal/application/import"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// app holds the services the commands drive
type app struct {
	log *zap.Logger
	db  *persistence.Database

	categories *catalogapp.CategoryService
	products   *catalogapp.ProductService
	rules      *catalogapp.ExpiryRuleService
	nutrition  *catalogapp.NutritionService
	auth       *identityapp.AuthService
	exports    *reportapp.ExportService
	imports    *importapp.ProductImportService

	roleRepo *persistence.GormRoleRepository
}

// bootApp loads config, opens the database and wires the services
func bootApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, _ := cmd.Flags().GetString("log-level")
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithZapLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return newApp(cfg, log, db), nil
}

func newApp(cfg *config.Config, log *zap.Logger, db *persistence.Database) *app {
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	nutritionRepo := persistence.NewGormNutritionRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)

	categories := catalogapp.NewCategoryService(categoryRepo, productRepo)
	products := catalogapp.NewProductService(productRepo, categoryRepo, nutritionRepo)

	return &app{
		log:        log,
		db:         db,
		categories: categories,
		products:   products,
		rules:      catalogapp.NewExpiryRuleService(persistence.NewGormExpiryRuleRepository(db.DB), productRepo),
		nutrition:  catalogapp.NewNutritionService(nutritionRepo),
		auth:       identityapp.NewAuthService(userRepo, roleRepo, auth.NewJWTService(cfg.JWT), nil),
		exports:    reportapp.NewExportService(productRepo, categoryRepo, orderRepo, userRepo, nil),
		imports:    importapp.NewProductImportService(products, categories, categoryRepo),
		roleRepo:   roleRepo,
	}
}

// context returns a context carrying the command logger
func (a *app) context(cmd *cobra.Command) context.Context {
	return logger.WithContext(cmd.Context(), a.log)
}

func (a *app) close() {
	_ = a.log.Sync()
	if err := a.db.Close(); err != nil {
		a.log.Warn("Error closing database", zap.Error(err))
	}
}
