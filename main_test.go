package main

import (
	"bytes"
	"fmt"
	"net"
	"path/filepath"
	"testing"

	"inventoritoko/internal/config"
	"inventoritoko/internal/stub"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t        *testing.T
	settings map[string]string
}

// newHarness starts a seeded stub backend and points the CLI at it with a
// private token store.
func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := stub.New(stub.Options{
		Config: config.StubConfig{
			DBDriver:  "sqlite",
			DBDSN:     fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			JWTSecret: "test_jwt_secret",
		},
		Seed: true,
	})
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Listener(ln)
	t.Cleanup(func() {
		srv.Shutdown()
		srv.Close()
	})

	return &harness{t: t, settings: map[string]string{
		"API_BASE_URL":     "http://" + ln.Addr().String(),
		"TOKEN_DB_PATH":    filepath.Join(t.TempDir(), "auth_prefs.db"),
		"DISPLAY_TIMEZONE": "UTC",
		"LOG_LEVEL":        "fatal",
	}}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	v := viper.New()
	for k, val := range h.settings {
		v.Set(k, val)
	}
	var out bytes.Buffer
	c := newCLI(v, &out)
	root := c.root()
	root.SetArgs(args)
	err := root.Execute()
	c.Close()
	return out.String(), err
}

func TestStorefrontEndToEnd(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("products")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] Beras Premium 5kg  Rp75.000,00  (stok 40)")

	_, err = h.run("cart")
	require.Error(t, err)
	assert.Equal(t, "Authorization header is required", err.Error())

	_, err = h.run("register", "budi", "budi@example.com", "rahasia123")
	require.NoError(t, err)
	_, err = h.run("register", "budi", "budi@example.com", "rahasia123")
	require.Error(t, err)
	assert.Equal(t, "Email sudah terdaftar", err.Error())

	_, err = h.run("login", "budi@example.com", "salah")
	require.Error(t, err)
	_, err = h.run("login", "budi@example.com", "rahasia123")
	require.NoError(t, err)

	out, err = h.run("cart", "add", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Produk ditambahkan ke keranjang")
	assert.Contains(t, out, "[1] Beras Premium 5kg  Qty: 2 x Rp75.000,00 = Rp150.000,00")
	assert.Contains(t, out, "Total: Rp150.000,00")

	_, err = h.run("cart", "add", "5", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stok tidak cukup. Detail: ")

	out, err = h.run("checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Checkout berhasil")
	assert.Contains(t, out, "Total: Rp150.000,00")

	// quantity below one is clamped
	out, err = h.run("buy", "3", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Membeli 1 x Gula Pasir 1kg")

	out, err = h.run("history", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Gula Pasir 1kg  Qty: 1 x Rp17.000,00  Rp17.000,00")
	assert.Contains(t, out, "Beras Premium 5kg  Qty: 2 x Rp75.000,00  Rp150.000,00")
	assert.Contains(t, out, "Transaksi: 2  Item: 2")

	out, err = h.run("history", "--csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Beras Premium 5kg")

	out, err = h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = h.run("cart")
	assert.Error(t, err)
}

func TestArgumentErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("cart", "add", "x", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product-id must be a number")

	_, err = h.run("product")
	assert.Error(t, err)

	_, err = h.run("product", "999")
	require.Error(t, err)
	assert.Equal(t, "Data tidak ditemukan. Detail: product with ID 999: record not found", err.Error())
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"10", 10, false},
		{"010", 10, false},
		{"08", 8, false},
		{"000", 0, false},
		{"+3", 3, false},
		{"-2", -2, false},
		{" 7 ", 7, false},
		{"0x1f", 0, true},
		{"0b11", 0, true},
		{"1e3", 0, true},
		{"1_000", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := intArg([]string{tt.raw}, 0, "id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeadingZeroIDIsDecimal(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("product", "010")
	require.Error(t, err)
	assert.Equal(t, "Data tidak ditemukan. Detail: product with ID 10: record not found", err.Error())

	out, err := h.run("product", "03")
	require.NoError(t, err)
	assert.Contains(t, out, "Gula Pasir 1kg")
}

func TestForgotPasswordWithoutMail(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("register", "budi", "budi@example.com", "rahasia123")
	require.NoError(t, err)

	out, err := h.run("forgot-password", "budi@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset token: ")

	_, err = h.run("forgot-password", "siapa@example.com")
	require.Error(t, err)
	assert.Equal(t, "Email tidak terdaftar", err.Error())
}
