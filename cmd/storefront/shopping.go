package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/storefront/storefront/internal/catalog"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/pricing"
	"github.com/storefront/storefront/internal/service"
)

var (
	searchFilter   catalog.Filter
	featured       int
	listCategories bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List or search products",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := catalog.Default()
		out := cmd.OutOrStdout()
		switch {
		case listCategories:
			for _, category := range c.Categories() {
				fmt.Fprintln(out, category)
			}
		case featured > 0:
			printProducts(out, c.Featured(featured))
		default:
			printProducts(out, c.Search(searchFilter))
		}
		return nil
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE:  withApp(runCartShow),
}

var cartAddCmd = &cobra.Command{
	Use:   "add [product-id] [quantity]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  withApp(runCartAdd),
}

var cartSetCmd = &cobra.Command{
	Use:   "set [product-id] [quantity]",
	Short: "Set the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runCartSet),
}

var cartChangeCmd = &cobra.Command{
	Use:   "change [product-id] [delta]",
	Short: "Adjust the quantity of a cart line; a result below one removes it",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runCartChange),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove [product-id]",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runCartRemove),
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE:  withApp(runCartClear),
}

var discountCmd = &cobra.Command{
	Use:   "discount [code]",
	Short: "Apply a discount code, or list the codes without one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runDiscount),
}

var discountRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the applied discount",
	RunE:  withApp(runDiscountRemove),
}

var checkoutReq service.CheckoutRequest

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from the cart",
	RunE:  withApp(runCheckout),
}

var ordersStatus string

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List the orders of the logged-in user",
	RunE:  withApp(runOrders),
}

var ordersFrom, ordersTo string

var orderShowCmd = &cobra.Command{
	Use:   "show [order-id]",
	Short: "Show an order",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runOrderShow),
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel [order-id]",
	Short: "Cancel a pending order",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runOrderCancel),
}

var orderReorderCmd = &cobra.Command{
	Use:   "reorder [order-id]",
	Short: "Copy the lines of an order back into the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runOrderReorder),
}

func init() {
	cf := catalogCmd.Flags()
	cf.StringVar(&searchFilter.Term, "search", "", "match name or description")
	cf.StringVar(&searchFilter.Category, "category", "", "category")
	cf.Int64Var(&searchFilter.MinPrice, "min-price", 0, "minimum price")
	cf.Int64Var(&searchFilter.MaxPrice, "max-price", 0, "maximum price, 0 for none")
	cf.IntVar(&featured, "featured", 0, "show only the first n products")
	cf.BoolVar(&listCategories, "categories", false, "list the categories")

	cartCmd.AddCommand(cartAddCmd, cartSetCmd, cartChangeCmd, cartRemoveCmd, cartClearCmd)
	discountCmd.AddCommand(discountRemoveCmd)

	kf := checkoutCmd.Flags()
	kf.StringVar(&checkoutReq.Delivery.Name, "name", "", "recipient name")
	kf.StringVar(&checkoutReq.Delivery.Phone, "phone", "", "recipient phone")
	kf.StringVar(&checkoutReq.Delivery.Address, "address", "", "delivery address")
	kf.StringVar(&checkoutReq.PaymentMethod, "payment", model.PaymentCOD, "payment method: cod, bank or momo")

	of := ordersCmd.Flags()
	of.StringVar(&ordersStatus, "status", "", "only orders with this status")
	of.StringVar(&ordersFrom, "from", "", "first order day, YYYY-MM-DD")
	of.StringVar(&ordersTo, "to", "", "last order day, YYYY-MM-DD")
	ordersCmd.AddCommand(orderShowCmd, orderCancelCmd, orderReorderCmd)

	rootCmd.AddCommand(catalogCmd, cartCmd, discountCmd, checkoutCmd, ordersCmd)
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return n, nil
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return &t, nil
}

func runCartShow(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	items, err := a.shop.Cart.Items(ctx)
	if err != nil {
		return err
	}
	summary, err := a.shop.Cart.Summary(ctx)
	if err != nil {
		return err
	}
	printCart(cmd.OutOrStdout(), items, summary)
	return nil
}

func runCartAdd(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}
	qty := 1
	if len(args) == 2 {
		if qty, err = parseQuantity(args[1]); err != nil {
			return err
		}
	}

	line, err := a.shop.Cart.AddItem(ctx, id, qty)
	if err != nil {
		return err
	}
	count, err := a.shop.Cart.ItemCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s x%d in cart (%d items)\n", line.Name, line.Quantity, count)
	return nil
}

func runCartSet(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	if err := a.shop.Cart.SetQuantity(ctx, id, qty); err != nil {
		return err
	}
	return runCartShow(ctx, cmd, a, nil)
}

func runCartChange(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}
	delta, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	if err := a.shop.Cart.ChangeQuantity(ctx, id, delta); err != nil {
		return err
	}
	return runCartShow(ctx, cmd, a, nil)
}

func runCartRemove(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}
	if err := a.shop.Cart.RemoveItem(ctx, id); err != nil {
		return err
	}
	return runCartShow(ctx, cmd, a, nil)
}

func runCartClear(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	if err := a.shop.Cart.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
	return nil
}

func runDiscount(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, code := range a.shop.Discounts.Codes() {
			d, _ := a.shop.Discounts.Lookup(code)
			fmt.Fprintf(out, "%-8s %3d%%  from %s\n", d.Code, d.Percent, pricing.FormatVND(d.MinOrder))
		}
		return nil
	}

	d, err := a.shop.Cart.ApplyDiscount(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "applied %s (%d%%)\n", d.Code, d.Percent)
	return nil
}

func runDiscountRemove(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	if err := a.shop.Cart.RemoveDiscount(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "discount removed")
	return nil
}

func runCheckout(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	return a.shop.Guard.Do(service.FormCheckout, func() error {
		order, err := a.shop.Checkout(ctx, checkoutReq)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "order %s placed, total %s\n", order.ID, pricing.FormatVND(order.Total))
		return nil
	})
}

func runOrders(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	current, err := a.shop.Users.CurrentUser(ctx)
	if err != nil {
		return err
	}

	filter := service.OrderFilter{Status: model.OrderStatus(ordersStatus)}
	if filter.Status != "" && !filter.Status.Valid() {
		return fmt.Errorf("unknown order status %q", ordersStatus)
	}
	if filter.From, err = parseDay(ordersFrom); err != nil {
		return err
	}
	if filter.To, err = parseDay(ordersTo); err != nil {
		return err
	}

	orders, err := a.shop.Orders.ListForUser(ctx, current.UserID, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(orders) == 0 {
		fmt.Fprintln(out, "no orders")
		return nil
	}
	for i := range orders {
		o := &orders[i]
		fmt.Fprintf(out, "%s  %s  %-9s  %d items  %s\n",
			o.ID, o.OrderDate.Format("2006-01-02 15:04"), o.Status, o.ItemCount(), pricing.FormatVND(o.Total))
	}
	return nil
}

func runOrderShow(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	order, err := a.shop.Orders.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printOrder(cmd.OutOrStdout(), order)
	return nil
}

func runOrderCancel(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	order, err := a.shop.Orders.Cancel(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "order %s cancelled\n", order.ID)
	return nil
}

func runOrderReorder(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	n, err := a.shop.Orders.Reorder(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d lines added to cart\n", n)
	return nil
}

func printProducts(out io.Writer, products []model.Product) {
	for i := range products {
		p := &products[i]
		line := fmt.Sprintf("%3d  %-40s %12s", p.ID, p.Name, pricing.FormatVND(p.Price))
		if pct := p.DiscountPercent(); pct > 0 {
			line += fmt.Sprintf("  -%d%%", pct)
		}
		fmt.Fprintln(out, line)
	}
}

func printCart(out io.Writer, items []model.CartItem, s pricing.Summary) {
	if len(items) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return
	}
	for i := range items {
		it := &items[i]
		fmt.Fprintf(out, "%3d  %-40s %3d x %12s = %12s\n",
			it.ID, it.Name, it.Quantity, pricing.FormatVND(it.Price), pricing.FormatVND(it.LineTotal()))
	}
	printSummary(out, s)
}

func printSummary(out io.Writer, s pricing.Summary) {
	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintf(out, "subtotal   %s\n", pricing.FormatVND(s.Subtotal))
	if s.FreeShipping {
		fmt.Fprintln(out, "shipping   free")
	} else {
		fmt.Fprintf(out, "shipping   %s\n", pricing.FormatVND(s.ShippingFee))
	}
	if s.Discount != nil {
		fmt.Fprintf(out, "discount   -%s (%s)\n", pricing.FormatVND(s.DiscountAmount), s.Discount.Code)
	}
	fmt.Fprintf(out, "total      %s\n", pricing.FormatVND(s.Total))
}

func printOrder(out io.Writer, o *model.Order) {
	fmt.Fprintf(out, "order %s  %s  %s\n", o.ID, o.OrderDate.Format("2006-01-02 15:04"), o.Status)
	fmt.Fprintf(out, "ship to %s, %s, %s (%s)\n", o.DeliveryInfo.Name, o.DeliveryInfo.Phone, o.DeliveryInfo.Address, o.PaymentMethod)
	printCart(out, o.Items, pricing.Summary{
		Subtotal:       o.Subtotal,
		ShippingFee:    o.ShippingFee,
		FreeShipping:   o.ShippingFee == 0,
		Discount:       o.Discount,
		DiscountAmount: o.DiscountAmount,
		Total:          o.Total,
	})
}
