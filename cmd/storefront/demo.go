package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/pricing"
	"github.com/storefront/storefront/internal/service"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a register, shop and checkout scenario against the session",
	RunE:  withApp(runDemo),
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	out := cmd.OutOrStdout()
	shop := a.shop

	step := func(format string, args ...interface{}) {
		fmt.Fprintf(out, "==> "+format+"\n", args...)
	}

	step("register demo_user")
	_, err := shop.Users.Register(ctx, service.RegisterRequest{
		FirstName: "Nguyen",
		LastName:  "An",
		Username:  "demo_user",
		Email:     "demo@example.com",
		Phone:     "0901234567",
		Password:  "Password1",
	})
	if err != nil && !isDuplicate(err) {
		return err
	}

	step("login")
	current, err := shop.Users.Login(ctx, "demo_user", "Password1", false)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "welcome, %s\n", current.DisplayName())

	step("add products 1 and 2 (x2)")
	if err := shop.Cart.Clear(ctx); err != nil {
		return err
	}
	if _, err := shop.Cart.AddItem(ctx, 1, 1); err != nil {
		return err
	}
	if _, err := shop.Cart.AddItem(ctx, 2, 2); err != nil {
		return err
	}

	step("apply SAVE10")
	if _, err := shop.Cart.ApplyDiscount(ctx, "save10"); err != nil {
		return err
	}
	items, err := shop.Cart.Items(ctx)
	if err != nil {
		return err
	}
	summary, err := shop.Cart.Summary(ctx)
	if err != nil {
		return err
	}
	printCart(out, items, summary)

	step("checkout")
	order, err := shop.Checkout(ctx, service.CheckoutRequest{
		Delivery: model.DeliveryInfo{
			Name:    "Nguyen An",
			Phone:   "0901234567",
			Address: "12 Le Loi, District 1, Ho Chi Minh City",
		},
		PaymentMethod: model.PaymentCOD,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "order %s placed, total %s\n", order.ID, pricing.FormatVND(order.Total))

	step("cancel and reorder")
	if _, err := shop.Orders.Cancel(ctx, order.ID); err != nil {
		return err
	}
	n, err := shop.Orders.Reorder(ctx, order.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d lines back in cart\n", n)

	orders, err := shop.Orders.ListForUser(ctx, current.UserID, service.OrderFilter{})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d orders on record for %s\n", len(orders), current.Username)
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, service.ErrDuplicateUsername) || errors.Is(err, service.ErrDuplicateEmail)
}
