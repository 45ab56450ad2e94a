package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"inventoritoko/internal/format"
	"inventoritoko/internal/history"
	"inventoritoko/internal/models"
	"inventoritoko/internal/services"
	"inventoritoko/internal/stub"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "inventoritoko",
		Short:         "Inventori Toko storefront client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (yaml, json, toml or .env)")

	root.AddCommand(
		c.registerCmd(), c.loginCmd(), c.logoutCmd(),
		c.forgotPasswordCmd(), c.resetPasswordCmd(),
		c.productsCmd(), c.productCmd(),
		c.cartCmd(), c.checkoutCmd(), c.buyCmd(),
		c.historyCmd(), c.stubCmd(),
	)
	return root
}

// withSession wraps a RunE so the services are wired first.
func (c *cli) withSession(run func(args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		if err := c.session(); err != nil {
			return err
		}
		return run(args)
	}
}

var decimalArg = regexp.MustCompile(`^[+-]?[0-9]+$`)

// intArg reads a base 10 integer. Leading zeros are stripped first because
// cast would otherwise read them as octal.
func intArg(args []string, i int, name string) (int, error) {
	raw := strings.TrimSpace(args[i])
	if !decimalArg.MatchString(raw) {
		return 0, fmt.Errorf("%s must be a number, got %q", name, args[i])
	}
	sign := ""
	if raw[0] == '+' || raw[0] == '-' {
		sign, raw = raw[:1], raw[1:]
	}
	if raw = strings.TrimLeft(raw, "0"); raw == "" {
		raw = "0"
	}
	n, err := cast.ToIntE(sign + raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, args[i])
	}
	return n, nil
}

// authFeedback prints a finished flow and acknowledges it.
func (c *cli) authFeedback(flow services.AuthFlow) error {
	state := c.auth.State(flow)
	c.auth.Clear(flow)
	if state.Status == services.AuthError {
		return errors.New(state.Message)
	}
	fmt.Fprintln(c.out, state.Message)
	return nil
}

func (c *cli) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <email> <password>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(3),
		RunE: c.withSession(func(args []string) error {
			c.auth.Register(args[0], args[1], args[2])
			return c.authFeedback(services.FlowRegister)
		}),
	}
}

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(2),
		RunE: c.withSession(func(args []string) error {
			c.auth.Login(args[0], args[1])
			return c.authFeedback(services.FlowLogin)
		}),
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func([]string) error {
			if err := c.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		}),
	}
}

func (c *cli) forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset token",
		Args:  cobra.ExactArgs(1),
		RunE: c.withSession(func(args []string) error {
			c.auth.ForgotPassword(args[0])
			return c.authFeedback(services.FlowForgotPassword)
		}),
	}
}

func (c *cli) resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email> <token> <new-password> <confirm-password>",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(4),
		RunE: c.withSession(func(args []string) error {
			c.auth.ResetPassword(args[0], args[1], args[2], args[3])
			return c.authFeedback(services.FlowResetPassword)
		}),
	}
}

func (c *cli) catalogFailure() error {
	msg, _ := c.catalog.Error()
	c.catalog.ClearError()
	return errors.New(msg)
}

func (c *cli) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func([]string) error {
			if !c.catalog.FetchProducts() {
				return c.catalogFailure()
			}
			for _, p := range c.catalog.Products() {
				fmt.Fprintf(c.out, "[%d] %s  %s  (stok %d)\n", p.ID, p.Name, format.Currency(p.Price), p.Stock)
			}
			return nil
		}),
	}
}

func (c *cli) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: c.withSession(func(args []string) error {
			id, err := intArg(args, 0, "id")
			if err != nil {
				return err
			}
			if !c.catalog.FetchProduct(id) {
				return c.catalogFailure()
			}
			c.printProduct(c.catalog.Selected())
			return nil
		}),
	}
}

func (c *cli) printProduct(p *models.Product) {
	fmt.Fprintf(c.out, "%s\n", p.Name)
	fmt.Fprintf(c.out, "Harga: %s\n", format.Currency(p.Price))
	fmt.Fprintf(c.out, "Stok: %d\n", p.Stock)
	if p.Description != nil && *p.Description != "" {
		fmt.Fprintf(c.out, "%s\n", *p.Description)
	}
	if p.Image != nil && *p.Image != "" {
		fmt.Fprintf(c.out, "Gambar: %s\n", c.presenter.ImageURL(models.Some(*p.Image)))
	}
}

// cartFeedback prints the outcome of an action and acknowledges it.
func (c *cli) cartFeedback(action services.CartAction, success string) error {
	ok, _ := c.cart.Result(action)
	c.cart.ClearResult(action)
	if !ok {
		msg, _ := c.cart.Error()
		c.cart.ClearError()
		return errors.New(msg)
	}
	fmt.Fprintln(c.out, success)
	return nil
}

func (c *cli) printCart() {
	items := c.cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(c.out, "Keranjang kosong")
		return
	}
	for _, item := range items {
		name := fmt.Sprintf("produk #%d", item.ProductID)
		price := "-"
		if item.Product != nil {
			name = item.Product.Name
			price = format.Currency(item.Product.Price)
		}
		fmt.Fprintf(c.out, "[%d] %s  Qty: %d x %s = %s\n",
			item.ProductID, name, item.Quantity, price, format.Currency(item.Subtotal()))
	}
	fmt.Fprintf(c.out, "Total: %s\n", format.Currency(c.cart.Total()))
}

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func([]string) error {
			if !c.cart.FetchCart() {
				msg, _ := c.cart.Error()
				c.cart.ClearError()
				return errors.New(msg)
			}
			c.printCart()
			return nil
		}),
	}

	add := &cobra.Command{
		Use:   "add <product-id> <quantity>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(2),
		RunE: c.withSession(func(args []string) error {
			id, err := intArg(args, 0, "product-id")
			if err != nil {
				return err
			}
			qty, err := intArg(args, 1, "quantity")
			if err != nil {
				return err
			}
			c.cart.AddToCart(id, qty)
			if err := c.cartFeedback(services.ActionAddToCart, "Produk ditambahkan ke keranjang"); err != nil {
				return err
			}
			c.printCart()
			return nil
		}),
	}

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: c.withSession(func(args []string) error {
			id, err := intArg(args, 0, "product-id")
			if err != nil {
				return err
			}
			qty, err := intArg(args, 1, "quantity")
			if err != nil {
				return err
			}
			c.cart.UpdateQuantity(id, qty)
			if err := c.cartFeedback(services.ActionUpdateQuantity, "Jumlah diperbarui"); err != nil {
				return err
			}
			c.printCart()
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: c.withSession(func(args []string) error {
			id, err := intArg(args, 0, "product-id")
			if err != nil {
				return err
			}
			c.cart.DeleteItem(id)
			if err := c.cartFeedback(services.ActionDeleteItem, "Produk dihapus dari keranjang"); err != nil {
				return err
			}
			c.printCart()
			return nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func([]string) error {
			c.cart.ClearCart()
			return c.cartFeedback(services.ActionClearCart, "Keranjang dikosongkan")
		}),
	}

	cmd.AddCommand(add, update, del, clearCmd)
	return cmd
}

func (c *cli) printReceipt() {
	receipt := c.cart.LastCheckout()
	if receipt == nil {
		return
	}
	if receipt.TransactionID != nil {
		fmt.Fprintf(c.out, "Transaksi #%d\n", *receipt.TransactionID)
	}
	if receipt.TotalPrice != nil {
		fmt.Fprintf(c.out, "Total: %s\n", format.CurrencyFloat(*receipt.TotalPrice))
	}
}

func (c *cli) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Buy everything in the cart",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func([]string) error {
			c.cart.Checkout()
			if err := c.cartFeedback(services.ActionCheckout, "Checkout berhasil"); err != nil {
				return err
			}
			c.printReceipt()
			return nil
		}),
	}
}

func (c *cli) buyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <product-id> [quantity]",
		Short: "Buy one product directly",
		Args:  cobra.RangeArgs(1, 2),
		RunE: c.withSession(func(args []string) error {
			id, err := intArg(args, 0, "product-id")
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				if qty, err = intArg(args, 1, "quantity"); err != nil {
					return err
				}
			}
			if !c.catalog.FetchProduct(id) {
				return c.catalogFailure()
			}
			c.catalog.SetDirectCheckoutQuantity(qty)
			product, n := c.catalog.DirectCheckout()
			c.cart.DirectCheckout(product.ID, n)
			if err := c.cartFeedback(services.ActionDirectCheckout, fmt.Sprintf("Membeli %d x %s", n, product.Name)); err != nil {
				return err
			}
			c.printReceipt()
			return nil
		}),
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var asCSV, summary bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show purchase history",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func([]string) error {
			if !c.history.FetchHistory() {
				msg, _ := c.history.Error()
				c.history.ClearError()
				return errors.New(msg)
			}
			if asCSV {
				return history.WriteCSV(c.out, c.history.Items())
			}
			txs := c.history.Transactions()
			if len(txs) == 0 {
				fmt.Fprintln(c.out, "Belum ada riwayat pembelian")
				return nil
			}
			for _, tx := range c.presenter.Transactions(txs) {
				fmt.Fprintf(c.out, "Transaksi #%d  %s  %s\n", tx.ID, tx.Date, tx.Total)
				for _, item := range tx.Items {
					fmt.Fprintf(c.out, "  %s  %s  %s\n", item.ProductName, item.QuantityLine, item.Subtotal)
				}
			}
			if summary {
				s := history.Summarize(txs)
				fmt.Fprintf(c.out, "Transaksi: %d  Item: %d\n", s.Transactions, s.LineItems)
				fmt.Fprintf(c.out, "Total: %s  Rata-rata: %s  Median: %s\n",
					format.Currency(s.Total), format.Currency(s.Average), format.Currency(s.Median))
				if s.Unparsed > 0 {
					fmt.Fprintf(c.out, "Total tidak terbaca: %d\n", s.Unparsed)
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write rows as CSV")
	cmd.Flags().BoolVar(&summary, "summary", false, "append spend statistics")
	return cmd
}

func (c *cli) stubCmd() *cobra.Command {
	var consume, noSeed bool
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run the local stub API server",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := c.load(); err != nil {
				return err
			}
			srv, err := stub.New(stub.Options{
				Config:           c.cfg.Stub,
				Logger:           c.logger.Named("stub"),
				Seed:             !noSeed,
				ConsumeCheckouts: consume,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			serveErr := make(chan error, 1)
			go func() { serveErr <- srv.Listen(c.cfg.Stub.Addr) }()

			fmt.Fprintf(c.out, "Stub backend listening on %s\n", c.cfg.Stub.Addr)
			select {
			case err := <-serveErr:
				return err
			case <-quit:
			}
			c.logger.Info("shutting down stub backend")
			if err := srv.Shutdown(); err != nil {
				c.logger.Error("error during shutdown", zap.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&consume, "consume", false, "log checkout events read back from RabbitMQ")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "start with an empty catalog")
	return cmd
}
