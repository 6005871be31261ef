package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	shop := NewDomainGroup("shop", "/shop")
	shop.GET("/products", func(c *gin.Context) { c.String(http.StatusOK, "products") })
	cart := NewDomainGroup("cart", "/cart")
	cart.GET("", func(c *gin.Context) { c.String(http.StatusOK, "cart") })

	r.Register(shop).Register(cart)
	assert.Len(t, r.registrars, 2)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/shop/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "products", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/cart")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cart", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Header("X-Api", "v1")
		c.Next()
	})

	g := NewDomainGroup("orders", "/orders")
	g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.Register(g).Setup()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "v1", serve(engine, http.MethodGet, "/api/v1/orders").Header().Get("X-Api"))
	assert.Empty(t, serve(engine, http.MethodGet, "/health").Header().Get("X-Api"), "router middleware stays inside /api")
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("admin", "/admin")
		assert.Equal(t, "admin", g.Name())
		assert.Equal(t, "/admin", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		g := NewDomainGroup("suppliers", "/suppliers").
			GET("", ok).
			POST("", ok).
			PUT("/:id", ok).
			PATCH("/:id", ok).
			DELETE("/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method string
			path   string
		}{
			{http.MethodGet, "/api/v1/suppliers"},
			{http.MethodPost, "/api/v1/suppliers"},
			{http.MethodPut, "/api/v1/suppliers/42"},
			{http.MethodPatch, "/api/v1/suppliers/42"},
			{http.MethodDelete, "/api/v1/suppliers/42"},
		}
		for _, tt := range tests {
			assert.Equal(t, http.StatusOK, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("group middleware reaches subgroups", func(t *testing.T) {
		engine := gin.New()
		admin := NewDomainGroup("admin", "/admin").Use(func(c *gin.Context) {
			c.Header("X-Staff", "checked")
			c.Next()
		})
		admin.Group("categories", "/categories").GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "categories")
		})
		admin.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/admin/categories")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "categories", w.Body.String())
		assert.Equal(t, "checked", w.Header().Get("X-Staff"))
	})
}

func TestDomainGroupPaths(t *testing.T) {
	ok := func(c *gin.Context) {}
	admin := NewDomainGroup("admin", "/admin")
	admin.GET("/dashboard", ok)
	admin.Group("products", "/products").GET("", ok).DELETE("/:id", ok)

	assert.Equal(t, []string{
		"GET /admin/dashboard",
		"GET /admin/products",
		"DELETE /admin/products/:id",
	}, admin.Paths())
	assert.Equal(t, "/api/v1", NewRouter(gin.New()).Prefix())
}
