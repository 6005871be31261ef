package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/infrastructure/metrics"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/handler"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers groups every handler served by the API
type Handlers struct {
	Auth         *handler.AuthHandler
	Account      *handler.AccountHandler
	Shop         *handler.ShopHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Product      *handler.ProductHandler
	Category     *handler.CategoryHandler
	Nutrition    *handler.NutritionHandler
	ExpiryRule   *handler.ExpiryRuleHandler
	Supplier     *handler.SupplierHandler
	User         *handler.UserHandler
	Notification *handler.NotificationHandler
	Report       *handler.ReportHandler
	Import       *handler.ImportHandler
	Health       *handler.HealthHandler
}

// Deps are the collaborators needed to build the engine
type Deps struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
	Metrics    *metrics.Metrics // nil leaves /metrics unmounted
	Handlers   Handlers
}

// NewEngine builds the gin engine with the middleware chain and every route.
// The returned stop func releases the rate limiters.
func NewEngine(deps Deps) (*gin.Engine, func()) {
	cfg := deps.Config
	log := deps.Logger
	h := deps.Handlers

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id must exist before the logger runs,
	// and tracing wraps everything that follows it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORS(middleware.CORSFromConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Telemetry.Enabled {
		engine.Use(
			middleware.Tracing(cfg.Telemetry.ServiceName),
			middleware.SpanAttributes(),
			middleware.SpanErrorMarker(),
		)
	}
	if deps.Metrics != nil {
		engine.Use(middleware.Metrics(deps.Metrics))
		engine.GET(metricsPath(cfg), gin.WrapH(deps.Metrics.Handler()))
	}

	var stops []func()
	stop := func() {
		for _, s := range stops {
			s()
		}
	}

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	authCfg := middleware.AuthConfig{
		JWTService: deps.JWTService,
		Blacklist:  deps.Blacklist,
		Logger:     log,
	}
	requireAuth := middleware.Auth(authCfg)
	optionalAuth := middleware.OptionalAuth(authCfg)
	cartSession := middleware.CartSession(cfg.Cart)
	staffOnly := middleware.RequireStaff()
	adminOnly := middleware.RequireAdmin()

	r := NewRouter(engine, WithAPIVersion("v1"))

	// Auth is resolved before the general limiter so signed-in users get their own bucket
	r.Use(optionalAuth)
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		stops = append(stops, limiter.Stop)
		r.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		stops = append(stops, limiter.Stop)
		authLimit = middleware.AuthRateLimit(limiter)
	}
	credentials := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if authLimit == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{authLimit, next}
	}
	authRoutes.POST("/register", credentials(h.Auth.Register)...)
	authRoutes.POST("/login", credentials(h.Auth.Login)...)
	authRoutes.POST("/refresh", credentials(h.Auth.Refresh)...)
	authRoutes.POST("/logout", requireAuth, h.Auth.Logout)

	meRoutes := NewDomainGroup("account", "/me").Use(requireAuth)
	meRoutes.GET("", h.Account.Me)
	meRoutes.PUT("", h.Account.UpdateProfile)
	meRoutes.POST("/avatar", h.Account.UploadAvatar)

	shopRoutes := NewDomainGroup("shop", "/shop")
	shopRoutes.GET("/products", h.Shop.Browse)
	shopRoutes.GET("/products/:id", h.Shop.Product)
	shopRoutes.GET("/categories", h.Shop.Categories)

	cartRoutes := NewDomainGroup("cart", "/cart").Use(cartSession)
	cartRoutes.GET("", h.Cart.View)
	cartRoutes.POST("", h.Cart.Add)
	cartRoutes.DELETE("", h.Cart.Clear)
	cartRoutes.PUT("/items/:product_id", h.Cart.SetQuantity)
	cartRoutes.DELETE("/items/:product_id", h.Cart.Remove)

	orderRoutes := NewDomainGroup("order", "/orders").Use(requireAuth, cartSession)
	orderRoutes.POST("", h.Order.Place)
	orderRoutes.GET("", h.Order.ListMine)
	orderRoutes.GET("/:id", h.Order.Get)
	orderRoutes.POST("/:id/cancel", h.Order.Cancel)

	notificationRoutes := NewDomainGroup("notification", "/notifications").Use(requireAuth, staffOnly)
	notificationRoutes.GET("", h.Notification.List)
	notificationRoutes.GET("/unread-count", h.Notification.UnreadCount)
	notificationRoutes.POST("/read-all", h.Notification.MarkAllRead)
	notificationRoutes.POST("/:id/read", h.Notification.MarkRead)

	adminRoutes := NewDomainGroup("admin", "/admin").Use(requireAuth, staffOnly)
	adminRoutes.GET("/dashboard", h.Report.Dashboard)

	products := adminRoutes.Group("products", "/products")
	products.GET("", h.Product.List)
	products.POST("", h.Product.Create)
	products.GET("/expiring", h.Product.Expiring)
	products.GET("/low-stock", h.Product.LowStock)
	products.GET("/:id", h.Product.Get)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.PUT("/:id/stock", h.Product.AdjustStock)
	products.GET("/:id/expiry-rules", h.Product.ExpiryRules)

	categories := adminRoutes.Group("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.POST("", h.Category.Create)
	categories.GET("/:id", h.Category.Get)
	categories.PUT("/:id", h.Category.Update)
	categories.DELETE("/:id", h.Category.Delete)

	nutrition := adminRoutes.Group("nutrition", "/nutrition")
	nutrition.GET("", h.Nutrition.List)
	nutrition.POST("", h.Nutrition.Create)
	nutrition.GET("/:id", h.Nutrition.Get)
	nutrition.PUT("/:id", h.Nutrition.Update)
	nutrition.DELETE("/:id", h.Nutrition.Delete)

	rules := adminRoutes.Group("expiry-rules", "/expiry-rules")
	rules.GET("", h.ExpiryRule.List)
	rules.POST("", h.ExpiryRule.Create)
	rules.GET("/:id", h.ExpiryRule.Get)
	rules.PUT("/:id", h.ExpiryRule.Update)
	rules.DELETE("/:id", h.ExpiryRule.Delete)
	rules.PUT("/:id/products/:product_id", h.ExpiryRule.Attach)
	rules.DELETE("/:id/products/:product_id", h.ExpiryRule.Detach)

	suppliers := adminRoutes.Group("suppliers", "/suppliers")
	suppliers.GET("", h.Supplier.List)
	suppliers.POST("", h.Supplier.Create)
	suppliers.GET("/:id", h.Supplier.Get)
	suppliers.PUT("/:id", h.Supplier.Update)
	suppliers.DELETE("/:id", h.Supplier.Delete)

	orders := adminRoutes.Group("orders", "/orders")
	orders.GET("", h.Order.ListAll)
	orders.GET("/:id", h.Order.Get)
	orders.PUT("/:id/status", h.Order.UpdateStatus)

	users := adminRoutes.Group("users", "/users")
	users.GET("", h.User.List)
	users.PUT("/:id/role", adminOnly, h.User.AssignRole)
	users.PUT("/:id/active", adminOnly, h.User.SetActive)
	adminRoutes.GET("/roles", h.User.Roles)

	exports := adminRoutes.Group("exports", "/exports")
	exports.GET("/products", h.Report.ExportProducts)
	exports.GET("/orders", h.Report.ExportOrders)

	imports := adminRoutes.Group("imports", "/imports")
	imports.POST("/products", h.Import.Products)

	groups := []*DomainGroup{authRoutes, meRoutes, shopRoutes, cartRoutes, orderRoutes, notificationRoutes, adminRoutes}
	for _, g := range groups {
		r.Register(g)
		log.Debug("Routes registered",
			zap.String("group", g.Name()),
			zap.String("prefix", r.Prefix()),
			zap.Strings("routes", g.Paths()),
		)
	}
	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	return engine, stop
}

func metricsPath(cfg *config.Config) string {
	if cfg.Metrics.Path == "" {
		return "/metrics"
	}
	return cfg.Metrics.Path
}
