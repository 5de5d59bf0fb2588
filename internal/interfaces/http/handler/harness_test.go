package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/shopfront/backend/internal/application/catalog"
	appidentity "github.com/shopfront/backend/internal/application/identity"
	appordering "github.com/shopfront/backend/internal/application/ordering"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testAPI is the full handler stack over a private in-memory database
type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	db     *persistence.Database
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := persistence.Open(sqlite.Open(dsn), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.DB.AutoMigrate(models.All()...))

	accounts := persistence.NewGormAccountRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-0123456789abcdef",
		RefreshSecret:          "handler-test-refresh-0123456789abcdef",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "shopfront-test",
		MaxRefreshCount:        3,
	})
	authService := appidentity.NewAuthService(accounts, jwtService, auth.NewInMemoryTokenBlacklist(), nil)
	productService := appcatalog.NewProductService(products, accounts, txScope, nil)
	placement := appordering.NewPlacementService(txScope, 5*time.Second, nil)
	queries := appordering.NewQueryService(orders, nil)

	authH := NewAuthHandler(authService)
	productH := NewProductHandler(productService)
	orderH := NewOrderHandler(placement, queries)
	systemH := NewSystemHandler(db, "shopfront", "test")

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/health", systemH.Health)
	r.GET("/system/info", systemH.GetSystemInfo)

	authG := r.Group("/auth")
	authG.POST("/register", authH.Register)
	authG.POST("/login", authH.Login)
	authG.POST("/refresh", authH.RefreshToken)
	authG.POST("/logout", middleware.RequireAuth(authService, nil), authH.Logout)
	authG.GET("/me", middleware.RequireAuth(authService, nil), authH.Me)

	r.GET("/catalog/products", middleware.OptionalAuth(authService), productH.List)
	catalogG := r.Group("/catalog/products", middleware.RequireAuth(authService, nil))
	catalogG.GET("/:id", productH.Get)
	catalogG.POST("", productH.Create)
	catalogG.PATCH("/:id", productH.Update)
	catalogG.DELETE("/:id", productH.Delete)

	ordersG := r.Group("/orders", middleware.RequireAuth(authService, nil))
	ordersG.POST("", orderH.Place)
	ordersG.GET("", orderH.List)

	return &testAPI{t: t, engine: r, db: db}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// signup registers an account and returns its access token
func (a *testAPI) signup(username, role string) string {
	a.t.Helper()

	w := a.do(http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: username, Password: "secret123", Role: role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/auth/login", "", LoginRequest{Username: username, Password: "secret123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Data LoginResponse `json:"data"`
	}
	decode(a.t, w, &login)
	return login.Data.Token.AccessToken
}

// signupAdmin creates an admin directly in storage, since admins cannot
// self-register, and logs in as them
func (a *testAPI) signupAdmin(username string) string {
	a.t.Helper()

	admin, err := identity.NewAccount(username, "secret123", "", identity.RoleAdmin)
	require.NoError(a.t, err)
	require.NoError(a.t, persistence.NewGormAccountRepository(a.db.DB).Create(context.Background(), admin))

	w := a.do(http.MethodPost, "/auth/login", "", LoginRequest{Username: username, Password: "secret123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Data LoginResponse `json:"data"`
	}
	decode(a.t, w, &login)
	return login.Data.Token.AccessToken
}

func (a *testAPI) createProduct(token, name, price string, stock int) ProductResponse {
	a.t.Helper()

	w := a.do(http.MethodPost, "/catalog/products", token, map[string]any{
		"name": name, "price": price, "stock": stock,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data ProductResponse `json:"data"`
	}
	decode(a.t, w, &resp)
	return resp.Data
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	decode(t, w, &resp)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
