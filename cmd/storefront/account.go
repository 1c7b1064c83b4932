package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/service"
)

var (
	registerReq service.RegisterRequest
	rememberMe  bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  withApp(runRegister),
}

var loginCmd = &cobra.Command{
	Use:   "login [username] [password]",
	Short: "Log in to the session",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the session",
	RunE:  withApp(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  withApp(runWhoami),
}

var (
	profileFirstName string
	profileLastName  string
	profileEmail     string
	profilePhone     string
	profileAddress   string
	profileBirthDate string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the profile of the logged-in user",
	RunE:  withApp(runProfile),
}

var passwordCmd = &cobra.Command{
	Use:   "password [current] [new]",
	Short: "Change the password of the logged-in user",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runPassword),
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Deactivate the logged-in account",
	RunE:  withApp(runDeactivate),
}

func init() {
	f := registerCmd.Flags()
	f.StringVar(&registerReq.FirstName, "first-name", "", "first name")
	f.StringVar(&registerReq.LastName, "last-name", "", "last name")
	f.StringVar(&registerReq.Username, "username", "", "username")
	f.StringVar(&registerReq.Email, "email", "", "email address")
	f.StringVar(&registerReq.Phone, "phone", "", "phone number")
	f.StringVar(&registerReq.Password, "password", "", "password")
	f.StringVar(&registerReq.BirthDate, "birth-date", "", "birth date")
	f.StringVar(&registerReq.Address, "address", "", "address")

	loginCmd.Flags().BoolVar(&rememberMe, "remember", false, "remember the login")

	pf := profileCmd.Flags()
	pf.StringVar(&profileFirstName, "first-name", "", "first name")
	pf.StringVar(&profileLastName, "last-name", "", "last name")
	pf.StringVar(&profileEmail, "email", "", "email address")
	pf.StringVar(&profilePhone, "phone", "", "phone number")
	pf.StringVar(&profileAddress, "address", "", "address")
	pf.StringVar(&profileBirthDate, "birth-date", "", "birth date")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, profileCmd, passwordCmd, deactivateCmd)
}

func runRegister(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	return a.shop.Guard.Do(service.FormRegister, func() error {
		user, err := a.shop.Users.Register(ctx, registerReq)
		if err != nil {
			return err
		}
		strength := auth.StrengthLabel(auth.EstimatePasswordStrength(registerReq.Password))
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s), password strength: %s\n", user.Username, user.ID, strength)
		return nil
	})
}

func runLogin(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	return a.shop.Guard.Do(service.FormLogin, func() error {
		current, err := a.shop.Users.Login(ctx, args[0], args[1], rememberMe)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "welcome, %s\n", current.DisplayName())
		return nil
	})
}

func runLogout(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	if err := a.shop.Users.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "logged out")
	return nil
}

func runWhoami(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	current, err := a.shop.Users.CurrentUser(ctx)
	if err != nil {
		return err
	}
	printCurrentUser(cmd, current)
	return nil
}

func runProfile(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	current, err := a.shop.Users.CurrentUser(ctx)
	if err != nil {
		return err
	}

	var update service.ProfileUpdate
	flags := cmd.Flags()
	if flags.Changed("first-name") {
		update.FirstName = &profileFirstName
	}
	if flags.Changed("last-name") {
		update.LastName = &profileLastName
	}
	if flags.Changed("email") {
		update.Email = &profileEmail
	}
	if flags.Changed("phone") {
		update.Phone = &profilePhone
	}
	if flags.Changed("address") {
		update.Address = &profileAddress
	}
	if flags.Changed("birth-date") {
		update.BirthDate = &profileBirthDate
	}

	return a.shop.Guard.Do(service.FormProfile, func() error {
		user, err := a.shop.Users.UpdateProfile(ctx, current.UserID, update)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile of %s updated\n", user.FullName())
		return nil
	})
}

func runPassword(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	current, err := a.shop.Users.CurrentUser(ctx)
	if err != nil {
		return err
	}

	return a.shop.Guard.Do(service.FormPassword, func() error {
		if err := a.shop.Users.ChangePassword(ctx, current.UserID, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "password changed")
		return nil
	})
}

func runDeactivate(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	current, err := a.shop.Users.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := a.shop.Users.Deactivate(ctx, current.UserID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "account %s deactivated\n", current.Username)
	return nil
}

func printCurrentUser(cmd *cobra.Command, u *model.CurrentUser) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", u.DisplayName(), u.Username)
	fmt.Fprintf(out, "  id:     %s\n", u.UserID)
	fmt.Fprintf(out, "  email:  %s\n", u.Email)
	fmt.Fprintf(out, "  login:  %s\n", u.LoginTime.Format("2006-01-02 15:04"))
}
