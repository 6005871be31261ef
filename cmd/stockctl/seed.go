package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

//go:embed seed.json
var seedData []byte

type seedFixture struct {
	Categories  []catalogapp.CategoryRequest   `json:"categories"`
	ExpiryRules []catalogapp.ExpiryRuleRequest `json:"expiry_rules"`
	Products    []seedProduct                  `json:"products"`
}

type seedProduct struct {
	Name          string                       `json:"name"`
	Brand         string                       `json:"brand"`
	Category      string                       `json:"category"`
	Price         decimal.Decimal              `json:"price"`
	CurrentStock  int                          `json:"current_stock"`
	MinStock      int                          `json:"min_stock"`
	MaxStock      int                          `json:"max_stock"`
	ShelfLifeDays int                          `json:"shelf_life_days"`
	Kind          string                       `json:"kind"`
	Presentation  string                       `json:"presentation"`
	Format        string                       `json:"format"`
	Rules         []string                     `json:"rules"`
	Nutrition     *catalogapp.NutritionRequest `json:"nutrition"`
}

// seedResult counts what a seed run created
type seedResult struct {
	Roles      int
	Categories int
	Rules      int
	Products   int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default roles and a demo catalog",
	Long:  "seed creates any missing role. The demo catalog is loaded only into an empty catalog unless --roles-only is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		rolesOnly, _ := cmd.Flags().GetBool("roles-only")
		fixture, err := loadSeedFixture(seedData)
		if err != nil {
			return err
		}

		res, err := a.seed(a.context(cmd), fixture, rolesOnly, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "roles: %d, categories: %d, expiry rules: %d, products: %d\n",
			res.Roles, res.Categories, res.Rules, res.Products)
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("roles-only", false, "Only create the default roles")
}

func loadSeedFixture(raw []byte) (*seedFixture, error) {
	var f seedFixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &f, nil
}

func (a *app) seed(ctx context.Context, f *seedFixture, rolesOnly bool, today time.Time) (*seedResult, error) {
	res := &seedResult{}

	roles, err := identityapp.EnsureDefaultRoles(ctx, a.roleRepo)
	if err != nil {
		return nil, fmt.Errorf("seed roles: %w", err)
	}
	res.Roles = roles
	if rolesOnly {
		return res, nil
	}

	_, total, err := a.products.List(ctx, catalogapp.ProductListFilter{Page: 1, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if total > 0 {
		logger.L(ctx).Info("Catalog already has products, skipping demo data", zap.Int64("products", total))
		return res, nil
	}

	categoryIDs := make(map[string]uuid.UUID, len(f.Categories))
	for _, req := range f.Categories {
		c, err := a.categories.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("seed category %q: %w", req.Name, err)
		}
		categoryIDs[req.Name] = c.ID
		res.Categories++
	}

	ruleIDs := make(map[string]uuid.UUID, len(f.ExpiryRules))
	for _, req := range f.ExpiryRules {
		r, err := a.rules.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("seed expiry rule %q: %w", req.Name, err)
		}
		ruleIDs[req.Name] = r.ID
		res.Rules++
	}

	for _, sp := range f.Products {
		req := catalogapp.CreateProductRequest{
			Name:         sp.Name,
			Brand:        sp.Brand,
			Price:        sp.Price,
			CurrentStock: sp.CurrentStock,
			MinStock:     sp.MinStock,
			MaxStock:     sp.MaxStock,
			ExpiryDate:   today.AddDate(0, 0, sp.ShelfLifeDays).Format("2006-01-02"),
			Kind:         sp.Kind,
			Presentation: sp.Presentation,
			Format:       sp.Format,
		}
		produced := today.Format("2006-01-02")
		req.ProductionDate = &produced

		if id, ok := categoryIDs[sp.Category]; ok {
			req.CategoryID = &id
		}
		if sp.Nutrition != nil {
			n, err := a.nutrition.Create(ctx, *sp.Nutrition)
			if err != nil {
				return nil, fmt.Errorf("seed nutrition for %q: %w", sp.Name, err)
			}
			req.NutritionID = &n.ID
		}

		p, err := a.products.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("seed product %q: %w", sp.Name, err)
		}
		for _, name := range sp.Rules {
			ruleID, ok := ruleIDs[name]
			if !ok {
				return nil, shared.FieldError("rules", fmt.Sprintf("unknown expiry rule %q", name))
			}
			if err := a.rules.Attach(ctx, ruleID, p.ID); err != nil {
				return nil, err
			}
		}
		res.Products++
	}

	logger.L(ctx).Info("Demo catalog seeded",
		zap.Int("categories", res.Categories),
		zap.Int("expiry_rules", res.Rules),
		zap.Int("products", res.Products),
	)
	return res, nil
}
