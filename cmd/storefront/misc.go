package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/service"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the configured storage backend",
	RunE:  withApp(runHealth),
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the settings of the logged-in user",
	RunE:  withApp(runSettings),
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	RunE:  withApp(runSettingsReset),
}

var contactForm service.ContactForm

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a message through the contact form",
	RunE:  withApp(runContact),
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the contact messages of the session",
	RunE:  withApp(runContactList),
}

func init() {
	sf := settingsCmd.Flags()
	sf.Bool("email-notifications", false, "email notifications")
	sf.Bool("sms-notifications", false, "SMS notifications")
	sf.Bool("promotion-notifications", false, "promotion notifications")
	sf.Bool("two-factor-auth", false, "two factor authentication")
	sf.Bool("login-notifications", false, "login notifications")
	settingsCmd.AddCommand(settingsResetCmd)

	cf := contactCmd.Flags()
	cf.StringVar(&contactForm.Name, "name", "", "your name, defaults to the logged-in user")
	cf.StringVar(&contactForm.Email, "email", "", "your email, defaults to the logged-in user")
	cf.StringVar(&contactForm.Phone, "phone", "", "your phone, defaults to the logged-in user")
	cf.StringVar(&contactForm.Subject, "subject", "", "subject")
	cf.StringVar(&contactForm.Message, "message", "", "message")
	contactCmd.AddCommand(contactListCmd)

	rootCmd.AddCommand(healthCmd, settingsCmd, contactCmd)
}

func runHealth(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "backend: %s\n", a.cfg.Store.Backend)

	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed int
	for _, name := range names {
		if err := a.checks[name](ctx); err != nil {
			failed++
			fmt.Fprintf(out, "%-16s unhealthy: %v\n", name, err)
			continue
		}
		fmt.Fprintf(out, "%-16s ok\n", name)
	}
	if failed > 0 {
		return fmt.Errorf("%d health checks failed", failed)
	}
	return nil
}

func runSettings(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	current, err := a.shop.Users.CurrentUser(ctx)
	if err != nil {
		return err
	}

	settings, err := a.shop.Settings.Get(ctx, current.UserID)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := false
	for name, field := range map[string]*bool{
		"email-notifications":     &settings.EmailNotifications,
		"sms-notifications":       &settings.SMSNotifications,
		"promotion-notifications": &settings.PromotionNotifications,
		"two-factor-auth":         &settings.TwoFactorAuth,
		"login-notifications":     &settings.LoginNotifications,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *field, err = flags.GetBool(name); err != nil {
			return err
		}
		changed = true
	}

	if changed {
		if err := a.shop.Settings.Update(ctx, current.UserID, settings); err != nil {
			return err
		}
	}
	printSettings(cmd, settings)
	return nil
}

func runSettingsReset(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	current, err := a.shop.Users.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := a.shop.Settings.Reset(ctx, current.UserID); err != nil {
		return err
	}
	printSettings(cmd, model.DefaultUserSettings())
	return nil
}

func runContact(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	form, err := a.shop.Contact.Prefill(ctx)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("name") || form.Name == "" {
		form.Name = contactForm.Name
	}
	if flags.Changed("email") || form.Email == "" {
		form.Email = contactForm.Email
	}
	if flags.Changed("phone") || form.Phone == "" {
		form.Phone = contactForm.Phone
	}
	form.Subject = contactForm.Subject
	form.Message = contactForm.Message

	return a.shop.Guard.Do(service.FormContact, func() error {
		msg, err := a.shop.Contact.Submit(ctx, form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "message %s received, thank you %s\n", msg.ID, msg.Name)
		return nil
	})
}

func runContactList(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	messages, err := a.shop.Contact.List(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, m := range messages {
		fmt.Fprintf(out, "%s  %s  %s <%s>: %s\n", m.ID, m.SentAt.Format("2006-01-02 15:04"), m.Name, m.Email, m.Subject)
	}
	return nil
}

func printSettings(cmd *cobra.Command, s model.UserSettings) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "email notifications:     %v\n", s.EmailNotifications)
	fmt.Fprintf(out, "sms notifications:       %v\n", s.SMSNotifications)
	fmt.Fprintf(out, "promotion notifications: %v\n", s.PromotionNotifications)
	fmt.Fprintf(out, "two factor auth:         %v\n", s.TwoFactorAuth)
	fmt.Fprintf(out, "login notifications:     %v\n", s.LoginNotifications)
}
