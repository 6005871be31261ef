package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	importapp "github.com/stockroom/backend/internal/application/import"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{JWT: config.JWTConfig{
		Secret:                 "stockctl-test-secret-key-32-chars!!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "stockctl-test",
	}}
	return newApp(cfg, zap.NewNop(), db)
}

func TestLoadSeedFixture(t *testing.T) {
	f, err := loadSeedFixture(seedData)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Categories)
	assert.NotEmpty(t, f.ExpiryRules)
	require.NotEmpty(t, f.Products)

	rules := make(map[string]bool)
	for _, r := range f.ExpiryRules {
		rules[r.Name] = true
	}
	for _, p := range f.Products {
		assert.True(t, p.Price.IsPositive(), p.Name)
		for _, name := range p.Rules {
			assert.True(t, rules[name], "product %s references unknown rule %s", p.Name, name)
		}
	}

	_, err = loadSeedFixture([]byte("{"))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f, err := loadSeedFixture(seedData)
	require.NoError(t, err)

	res, err := a.seed(ctx, f, false, today)
	require.NoError(t, err)
	assert.Equal(t, len(identity.DefaultRoleNames()), res.Roles)
	assert.Equal(t, len(f.Categories), res.Categories)
	assert.Equal(t, len(f.ExpiryRules), res.Rules)
	assert.Equal(t, len(f.Products), res.Products)

	products, total, err := a.products.List(ctx, catalogapp.ProductListFilter{Page: 1, PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(len(f.Products)), total)

	byName := make(map[string]catalogapp.ProductResponse, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}
	torta, ok := byName["Torta de mil hojas"]
	require.True(t, ok)
	rules, err := a.rules.ForProduct(ctx, torta.ID)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	t.Run("second run leaves the catalog alone", func(t *testing.T) {
		again, err := a.seed(ctx, f, false, today)
		require.NoError(t, err)
		assert.Equal(t, &seedResult{}, again)

		_, total, err := a.products.List(ctx, catalogapp.ProductListFilter{Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(len(f.Products)), total)
	})
}

func TestSeed_RolesOnly(t *testing.T) {
	a := newTestApp(t)
	f, err := loadSeedFixture(seedData)
	require.NoError(t, err)

	res, err := a.seed(context.Background(), f, true, time.Now())
	require.NoError(t, err)
	assert.Equal(t, len(identity.DefaultRoleNames()), res.Roles)
	assert.Zero(t, res.Products)
}

func TestSeed_UnknownRule(t *testing.T) {
	a := newTestApp(t)
	f := &seedFixture{Products: []seedProduct{{
		Name: "Pan amasado", Price: decimal.NewFromInt(1200), MinStock: 1, MaxStock: 10, CurrentStock: 5, ShelfLifeDays: 2,
		Rules: []string{"Inexistente"},
	}}}

	_, err := a.seed(context.Background(), f, false, time.Now())
	assert.ErrorContains(t, err, "rules")
}

func TestCreateAdmin(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := identityapp.EnsureDefaultRoles(ctx, a.roleRepo)
	require.NoError(t, err)

	user, err := a.auth.CreateAdmin(ctx, identityapp.RegisterRequest{
		Email:     "admin@forneria.cl",
		RUT:       "11.111.111-1",
		FirstName: "Ana",
		LastName:  "Rojas",
		Password:  "supersecreta",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@forneria.cl", user.Email)

	_, err = a.auth.CreateAdmin(ctx, identityapp.RegisterRequest{
		Email:     "admin@forneria.cl",
		RUT:       "12.345.678-5",
		FirstName: "Otra",
		LastName:  "Persona",
		Password:  "supersecreta",
	})
	require.Error(t, err)
	assert.ErrorContains(t, describeError(err), "invalid input")
}

func TestAdminRequestFromFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().AddFlagSet(createAdminCmd.Flags())
		return cmd
	}

	t.Run("password from environment", func(t *testing.T) {
		t.Setenv("STOCKCTL_ADMIN_PASSWORD", "desdeelentorno")
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Set("email", "admin@forneria.cl"))
		req, err := adminRequestFromFlags(cmd)
		require.NoError(t, err)
		assert.Equal(t, "desdeelentorno", req.Password)
		assert.Equal(t, "admin@forneria.cl", req.Email)
	})

	t.Run("missing password", func(t *testing.T) {
		t.Setenv("STOCKCTL_ADMIN_PASSWORD", "")
		cmd := &cobra.Command{}
		cmd.Flags().String("email", "", "")
		cmd.Flags().String("rut", "", "")
		cmd.Flags().String("first-name", "", "")
		cmd.Flags().String("last-name", "", "")
		cmd.Flags().String("password", "", "")
		_, err := adminRequestFromFlags(cmd)
		assert.ErrorContains(t, err, "password")
	})
}

func TestExport(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	f, err := loadSeedFixture(seedData)
	require.NoError(t, err)
	_, err = a.seed(ctx, f, false, time.Now())
	require.NoError(t, err)

	file, err := a.exports.ExportProducts(ctx, reportapp.FormatCSV)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("\ufeff")))
	assert.Contains(t, string(file.Data), "Marraqueta")
	assert.Contains(t, file.Filename, ".csv")
}

func TestExportCmd_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"export", "products", "--format", "pdf"}, "unsupported format"},
		{"unknown dataset", []string{"export", "suppliers"}, "invalid argument"},
		{"missing dataset", []string{"export"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			rootCmd.SetArgs(tt.args)
			err := rootCmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	source := newTestApp(t)
	ctx := context.Background()
	f, err := loadSeedFixture(seedData)
	require.NoError(t, err)
	_, err = source.seed(ctx, f, false, time.Now())
	require.NoError(t, err)

	file, err := source.exports.ExportProducts(ctx, reportapp.FormatCSV)
	require.NoError(t, err)

	target := newTestApp(t)
	res, err := target.imports.Import(ctx, bytes.NewReader(file.Data), importapp.ImportOptions{CreateCategories: true})
	require.NoError(t, err)
	assert.Zero(t, res.ErrorRows, res.Errors)
	assert.Equal(t, len(f.Products), res.ImportedRows)
	assert.Len(t, res.CreatedCategories, len(f.Categories))
}
