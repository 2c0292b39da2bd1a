package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/storefront-go/internal/model"
	"github.com/tonimelisma/storefront-go/internal/storefront"
)

func newCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer"},
		Short:   "Manage customer accounts (admin)",
	}

	cmd.AddCommand(newCustomersLsCmd())
	cmd.AddCommand(newCustomersUpdateCmd())
	cmd.AddCommand(newCustomersRmCmd())

	return cmd
}

func newCustomersLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List customer accounts",
		Args:  cobra.NoArgs,
		RunE:  runCustomersLs,
	}

	cmd.Flags().Int("page", 0, "page number (0-based)")
	cmd.Flags().Int("page-size", 20, "accounts per page")
	cmd.Flags().String("email", "", "filter by email")

	return cmd
}

func runCustomersLs(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	if err := sess.requireAdmin(); err != nil {
		return err
	}

	var q storefront.UserQuery

	q.Page, _ = cmd.Flags().GetInt("page")
	q.PageSize, _ = cmd.Flags().GetInt("page-size")
	q.Email, _ = cmd.Flags().GetString("email")

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	page, err := sess.API.Users.List(ctx, q)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if flagJSON {
		return printJSON(w, page)
	}

	rows := make([][]string, 0, len(page.Content))

	for i := range page.Content {
		u := &page.Content[i]

		tier := ""
		if u.MemberTier != nil {
			tier = string(*u.MemberTier)
		}

		status := "active"
		if !u.IsActive {
			status = "disabled"
		}

		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			fullName(u.FirstName, u.LastName),
			u.Email,
			string(u.Role),
			tier,
			status,
			relativeTime(u.CreatedOn),
		})
	}

	printTable(w, []string{"ID", "NAME", "EMAIL", "ROLE", "TIER", "STATUS", "JOINED"}, rows)
	statusf("Page %d of %d (%d accounts)\n", page.Page+1, page.TotalPages, page.TotalElements)

	return nil
}

func newCustomersUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a customer account",
		Args:  cobra.ExactArgs(1),
		RunE:  runCustomersUpdate,
	}

	f := cmd.Flags()
	f.String("email", "", "account email (required)")
	f.String("first-name", "", "first name (required)")
	f.String("last-name", "", "last name (required)")
	f.String("phone", "", "phone number")
	f.String("address", "", "postal address")
	f.Bool("active", true, "whether the account can sign in")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")

	return cmd
}

func runCustomersUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	f := cmd.Flags()

	var form model.CustomerForm

	form.Email, _ = f.GetString("email")
	form.FirstName, _ = f.GetString("first-name")
	form.LastName, _ = f.GetString("last-name")

	if f.Changed("phone") {
		phone, _ := f.GetString("phone")
		form.PhoneNumber = &phone
	}

	if f.Changed("address") {
		address, _ := f.GetString("address")
		form.Address = &address
	}

	if f.Changed("active") {
		active, _ := f.GetBool("active")
		form.IsActive = &active
	}

	sess, err := openSession()
	if err != nil {
		return err
	}

	if err := sess.requireAdmin(); err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	if err := sess.API.Users.UpdateByAdmin(ctx, id, form); err != nil {
		return err
	}

	statusf("Updated account %d.\n", id)

	return nil
}

func newCustomersRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a customer account",
		Args:  cobra.ExactArgs(1),
		RunE:  runCustomersRm,
	}
}

func runCustomersRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}

	if err := sess.requireAdmin(); err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	if err := sess.API.Users.Delete(ctx, id); err != nil {
		return err
	}

	statusf("Deleted account %d.\n", id)

	return nil
}
