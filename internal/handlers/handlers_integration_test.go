package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventoritoko/internal/backend"
	"inventoritoko/internal/handlers"
	"inventoritoko/internal/middleware"
	"inventoritoko/internal/models"
	"inventoritoko/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) (*fiber.App, *backend.AccountService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	accounts := backend.NewAccountService(
		repositories.NewGORMUserRepository(db),
		repositories.NewGORMPasswordResetRepository(db),
		nil, "test_jwt_secret", nil)
	store := backend.NewStoreService(
		repositories.NewGORMProductRepository(db),
		repositories.NewGORMCartRepository(db),
		repositories.NewGORMTransactionRepository(db),
		nil, nil)
	require.NoError(t, store.Seed(backend.DefaultProducts()))

	app := fiber.New()
	handlers.NewAuthHandler(accounts, nil).RegisterRoutes(app)
	handlers.NewInventoryHandler(store, nil).RegisterRoutes(app, middleware.AuthRequired(accounts, nil))
	return app, accounts
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func registerAndLogin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Username: "testuser", Email: email, Password: "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email: email, Password: "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login models.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &login))
	require.NotNil(t, login.LoginResult)
	return login.LoginResult.Token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, accounts := setupApp(t)

	user := models.RegisterRequest{Username: "testuser", Email: "test@example.com", Password: "password123"}
	resp, raw := doJSON(t, app, http.MethodPost, "/auth/register", "", user)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp models.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &registerResp))
	assert.Equal(t, "User registered successfully", registerResp.Message)
	assert.False(t, registerResp.Error)

	// Duplicate registration
	resp, _ = doJSON(t, app, http.MethodPost, "/auth/register", "", user)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "test@example.com", Password: "password123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp models.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &loginResp))
	require.NotNil(t, loginResp.LoginResult)
	assert.Equal(t, "testuser", loginResp.LoginResult.Name)
	assert.NotEmpty(t, loginResp.LoginResult.Token)

	claims, err := accounts.ValidateToken(loginResp.LoginResult.Token)
	assert.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])
	assert.Contains(t, claims, "user_id")

	resp, _ = doJSON(t, app, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "test@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	app, _ := setupApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]string{"username": "ab", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "Validation failed", errResp.Message)
	assert.Contains(t, errResp.Detail, "Field 'Username' failed on the 'min' tag")
	assert.Contains(t, errResp.Detail, "Field 'Email' failed on the 'email' tag")
	assert.Contains(t, errResp.Detail, "Field 'Password' failed on the 'required' tag")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestForgotAndResetPassword(t *testing.T) {
	app, _ := setupApp(t)
	registerAndLogin(t, app, "reset@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/auth/forgotPassword", "", models.ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodPost, "/auth/forgotPassword", "", models.ForgotPasswordRequest{Email: "reset@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var forgot models.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &forgot))
	require.Contains(t, forgot.Message, "Reset token: ")
	token := forgot.Message[len("Reset token: "):]

	mismatch := models.ResetPasswordRequest{Email: "reset@example.com", Token: token, NewPassword: "newpass123", ConfirmPassword: "other123"}
	resp, _ = doJSON(t, app, http.MethodPost, "/auth/resetPassword", "", mismatch)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ok := models.ResetPasswordRequest{Email: "reset@example.com", Token: token, NewPassword: "newpass123", ConfirmPassword: "newpass123"}
	resp, _ = doJSON(t, app, http.MethodPost, "/auth/resetPassword", "", ok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/auth/resetPassword", "", ok)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "reset@example.com", Password: "newpass123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProductEndpointsArePublic(t *testing.T) {
	app, _ := setupApp(t)

	resp, raw := doJSON(t, app, http.MethodGet, "/inventory/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	require.NoError(t, json.Unmarshal(raw, &products))
	assert.Len(t, products, len(backend.DefaultProducts()))

	resp, raw = doJSON(t, app, http.MethodGet, "/inventory/products/1", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var product models.Product
	require.NoError(t, json.Unmarshal(raw, &product))
	assert.Equal(t, "Beras Premium 5kg", product.Name)

	resp, _ = doJSON(t, app, http.MethodGet, "/inventory/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/inventory/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedEndpointsWithoutAuth(t *testing.T) {
	app, _ := setupApp(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/inventory/cart"},
		{http.MethodPost, "/inventory/cart"},
		{http.MethodPut, "/inventory/cart/1"},
		{http.MethodDelete, "/inventory/cart/1"},
		{http.MethodDelete, "/inventory/cart"},
		{http.MethodPost, "/inventory/checkout"},
		{http.MethodPost, "/inventory/direct-checkout"},
		{http.MethodGet, "/inventory/history"},
	} {
		resp, _ := doJSON(t, app, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	resp, _ := doJSON(t, app, http.MethodGet, "/inventory/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartCheckoutAndHistory(t *testing.T) {
	app, _ := setupApp(t)
	token := registerAndLogin(t, app, "buyer@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/inventory/cart", token, models.AddToCartRequest{ProductID: 1, Quantity: 2})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/inventory/cart", token, models.AddToCartRequest{ProductID: 3, Quantity: 1})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodPost, "/inventory/cart", token, models.AddToCartRequest{ProductID: 5, Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var stockErr models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &stockErr))
	assert.Equal(t, "Stok tidak cukup", stockErr.Message)
	assert.NotEmpty(t, stockErr.Detail)

	resp, _ = doJSON(t, app, http.MethodPut, "/inventory/cart/3", token, models.UpdateCartQuantityRequest{Quantity: 3})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPut, "/inventory/cart/2", token, models.UpdateCartQuantityRequest{Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/inventory/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cart []models.CartItem
	require.NoError(t, json.Unmarshal(raw, &cart))
	require.Len(t, cart, 2)
	assert.Equal(t, 3, cart[1].Quantity)
	require.NotNil(t, cart[1].Product)

	resp, raw = doJSON(t, app, http.MethodPost, "/inventory/checkout", token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var receipt models.CheckoutResponse
	require.NoError(t, json.Unmarshal(raw, &receipt))
	require.NotNil(t, receipt.TotalPrice)
	assert.Equal(t, 201000.0, *receipt.TotalPrice)

	resp, _ = doJSON(t, app, http.MethodPost, "/inventory/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/inventory/direct-checkout", token, models.DirectCheckoutRequest{ProductID: 2, Quantity: 1})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/inventory/history", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Minyak Goreng 2L", rows[0]["productName"])
	assert.Equal(t, "36500.00", rows[0]["itemPrice"])
	assert.Equal(t, "201000.00", rows[1]["transactionTotalPrice"])
	assert.Nil(t, rows[1]["productImage"])
}

func TestCartDeleteAndClear(t *testing.T) {
	app, _ := setupApp(t)
	token := registerAndLogin(t, app, "clear@example.com")

	doJSON(t, app, http.MethodPost, "/inventory/cart", token, models.AddToCartRequest{ProductID: 1, Quantity: 1})
	doJSON(t, app, http.MethodPost, "/inventory/cart", token, models.AddToCartRequest{ProductID: 2, Quantity: 1})

	resp, _ := doJSON(t, app, http.MethodDelete, "/inventory/cart/1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, "/inventory/cart/1", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/inventory/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw := doJSON(t, app, http.MethodGet, "/inventory/cart", token, nil)
	assert.JSONEq(t, "[]", string(raw))
}
