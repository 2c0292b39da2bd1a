package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/storefront-go/internal/model"
)

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Browse and manage product categories",
	}

	cmd.AddCommand(newCategoriesTreeCmd())
	cmd.AddCommand(newCategoriesLsCmd())
	cmd.AddCommand(newCategoriesGetCmd())
	cmd.AddCommand(newCategoriesCreateCmd())
	cmd.AddCommand(newCategoriesUpdateCmd())
	cmd.AddCommand(newCategoriesRmCmd())

	return cmd
}

func newCategoriesTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the full category hierarchy",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesTree,
	}
}

func runCategoriesTree(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	tree, err := sess.API.Categories.Tree(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if flagJSON {
		return printJSON(w, tree)
	}

	printCategoryTree(w, tree, 0)

	return nil
}

func printCategoryTree(w io.Writer, nodes []model.CategoryTree, depth int) {
	for i := range nodes {
		n := &nodes[i]
		fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), n.Name, n.ID)
		printCategoryTree(w, n.SubCategories, depth+1)
	}
}

func newCategoriesLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List top-level categories, or the children of --parent",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesLs,
	}

	cmd.Flags().Int64("parent", 0, "list the children of this category")

	return cmd
}

func runCategoriesLs(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	var list []model.Category

	if cmd.Flags().Changed("parent") {
		parent, _ := cmd.Flags().GetInt64("parent")
		list, err = sess.API.Categories.Children(ctx, parent)
	} else {
		list, err = sess.API.Categories.Parents(ctx)
	}

	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if flagJSON {
		return printJSON(w, list)
	}

	rows := make([][]string, 0, len(list))
	for i := range list {
		c := &list[i]
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, deref(c.Description)})
	}

	printTable(w, []string{"ID", "NAME", "DESCRIPTION"}, rows)

	return nil
}

func newCategoriesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoriesGet,
	}
}

func runCategoriesGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	c, err := sess.API.Categories.Get(ctx, id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if flagJSON {
		return printJSON(w, c)
	}

	fmt.Fprintf(w, "%s (%d)\n", c.Name, c.ID)

	if c.ParentID != nil {
		fmt.Fprintf(w, "Parent: %d\n", *c.ParentID)
	}

	if d := deref(c.Description); d != "" {
		fmt.Fprintln(w, d)
	}

	return nil
}

func addCategoryFormFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "category name")
	cmd.Flags().String("description", "", "category description")
	cmd.Flags().Int64("parent", 0, "parent category ID (omit for a top-level category)")
}

func categoryFormFromFlags(cmd *cobra.Command) model.CategoryForm {
	f := cmd.Flags()

	var form model.CategoryForm

	form.Name, _ = f.GetString("name")

	if f.Changed("description") {
		d, _ := f.GetString("description")
		form.Description = &d
	}

	if f.Changed("parent") {
		p, _ := f.GetInt64("parent")
		form.ParentID = &p
	}

	return form
}

func newCategoriesCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a category (admin)",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesCreate,
	}

	addCategoryFormFlags(cmd)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runCategoriesCreate(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	if err := sess.requireAdmin(); err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	c, err := sess.API.Categories.Create(ctx, categoryFormFromFlags(cmd))
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), c)
	}

	statusf("Created category %d (%s).\n", c.ID, c.Name)

	return nil
}

func newCategoriesUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or move a category (admin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoriesUpdate,
	}

	addCategoryFormFlags(cmd)

	return cmd
}

func runCategoriesUpdate(cmd *cobra.Command, args []string) error {
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

	current, err := sess.API.Categories.Get(ctx, id)
	if err != nil {
		return err
	}

	form := categoryFormFromFlags(cmd)

	if !cmd.Flags().Changed("name") {
		form.Name = current.Name
	}

	if form.Description == nil {
		form.Description = current.Description
	}

	if form.ParentID == nil {
		form.ParentID = current.ParentID
	}

	c, err := sess.API.Categories.Update(ctx, id, form)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), c)
	}

	statusf("Updated category %d.\n", id)

	return nil
}

func newCategoriesRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a category (admin)",
		Long: "Delete a category. The server refuses when the category still has\n" +
			"subcategories or products; --force removes them too.",
		Args: cobra.ExactArgs(1),
		RunE: runCategoriesRm,
	}

	cmd.Flags().Bool("force", false, "also delete subcategories and products")

	return cmd
}

func runCategoriesRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")

	sess, err := openSession()
	if err != nil {
		return err
	}

	if err := sess.requireAdmin(); err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	if force {
		err = sess.API.Categories.ForceDelete(ctx, id)
	} else {
		err = sess.API.Categories.Delete(ctx, id)
	}

	if err != nil {
		return err
	}

	statusf("Deleted category %d.\n", id)

	return nil
}
