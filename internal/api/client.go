// Package api is the REST client for the inventoritoko storefront API.
package api

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"inventoritoko/internal/models"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token. An empty token sends the request
// unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// Config is everything a Client needs; there is no package-level client.
type Config struct {
	BaseURL string
	Tokens  TokenSource
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client talks to the storefront API. It is safe for concurrent use.
type Client struct {
	base    string
	tokens  TokenSource
	timeout time.Duration
	logger  *zap.Logger
	http    *fiber.Client
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute http(s)", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		base:    strings.TrimSuffix(u.String(), "/") + "/",
		tokens:  cfg.Tokens,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		http: &fiber.Client{
			JSONEncoder: codec.Marshal,
			JSONDecoder: codec.Unmarshal,
		},
	}, nil
}

// BaseURL returns the normalized base address, always ending in a slash.
func (c *Client) BaseURL() string { return c.base }

// Register creates an account.
func (c *Client) Register(req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(fiber.MethodPost, "auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(fiber.MethodPost, "auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks for a reset token by mail.
func (c *Client) ForgotPassword(req models.ForgotPasswordRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(fiber.MethodPost, "auth/forgotPassword", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password with a reset token.
func (c *Client) ResetPassword(req models.ResetPasswordRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(fiber.MethodPost, "auth/resetPassword", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Products lists the catalog.
func (c *Client) Products() ([]models.Product, error) {
	out := make([]models.Product, 0)
	if err := c.do(fiber.MethodGet, "inventory/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product fetches one product.
func (c *Client) Product(id int) (*models.Product, error) {
	var out models.Product
	if err := c.do(fiber.MethodGet, "inventory/products/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cart lists the caller's cart.
func (c *Client) Cart() ([]models.CartItem, error) {
	out := make([]models.CartItem, 0)
	if err := c.do(fiber.MethodGet, "inventory/cart", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddToCart adds quantity of a product to the cart.
func (c *Client) AddToCart(req models.AddToCartRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.do(fiber.MethodPost, "inventory/cart", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCartQuantity sets the quantity of a cart line.
func (c *Client) UpdateCartQuantity(productID int, req models.UpdateCartQuantityRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.do(fiber.MethodPut, "inventory/cart/"+strconv.Itoa(productID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCartItem removes a product from the cart.
func (c *Client) DeleteCartItem(productID int) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.do(fiber.MethodDelete, "inventory/cart/"+strconv.Itoa(productID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearCart empties the cart.
func (c *Client) ClearCart() (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.do(fiber.MethodDelete, "inventory/cart", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout buys the whole cart.
func (c *Client) Checkout() (*models.CheckoutResponse, error) {
	var out models.CheckoutResponse
	if err := c.do(fiber.MethodPost, "inventory/checkout", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DirectCheckout buys a single product, bypassing the cart.
func (c *Client) DirectCheckout(req models.DirectCheckoutRequest) (*models.CheckoutResponse, error) {
	var out models.CheckoutResponse
	if err := c.do(fiber.MethodPost, "inventory/direct-checkout", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurchaseHistory returns the raw history body for the streaming decoder.
func (c *Client) PurchaseHistory() ([]byte, error) {
	return c.send(fiber.MethodGet, "inventory/history", nil)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	raw, err := c.send(method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := codec.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

// send performs one request. The token is read exactly once per request.
func (c *Client) send(method, path string, body interface{}) ([]byte, error) {
	var agent *fiber.Agent
	target := c.base + path
	switch method {
	case fiber.MethodGet:
		agent = c.http.Get(target)
	case fiber.MethodPost:
		agent = c.http.Post(target)
	case fiber.MethodPut:
		agent = c.http.Put(target)
	case fiber.MethodDelete:
		agent = c.http.Delete(target)
	default:
		return nil, errors.Errorf("unsupported method %s", method)
	}
	agent.Timeout(c.timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			c.logger.Warn("token lookup failed, sending unauthenticated", zap.String("path", path), zap.Error(err))
		} else if token != "" {
			agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	if body != nil {
		agent.JSON(body)
	}

	started := time.Now()
	status, resp, errs := agent.Bytes()
	if len(errs) > 0 {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Errors("errors", errs))
		return nil, errors.WithStack(&TransportError{Method: method, Path: path, Err: errs[0]})
	}
	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("took", time.Since(started)),
	)
	if status < 200 || status > 299 {
		return nil, errors.WithStack(&ResponseError{Method: method, Path: path, StatusCode: status, Body: resp})
	}
	return resp, nil
}
