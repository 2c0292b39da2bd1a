package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/storefront-go/internal/model"
	"github.com/tonimelisma/storefront-go/internal/storefront"
)

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse and manage the product catalog",
	}

	cmd.AddCommand(newProductsLsCmd())
	cmd.AddCommand(newProductsGetCmd())
	cmd.AddCommand(newProductsCreateCmd())
	cmd.AddCommand(newProductsUpdateCmd())
	cmd.AddCommand(newProductsRmCmd())
	cmd.AddCommand(newProductsFeatureCmd())

	return cmd
}

func newProductsLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE:  runProductsLs,
	}

	f := cmd.Flags()
	f.Int("page", 0, "page number (0-based)")
	f.Int("page-size", 20, "products per page")
	f.String("name", "", "filter by name")
	f.String("category", "", "filter by category ID")
	f.Bool("featured", false, "only featured products")
	f.Float64("min-price", 0, "minimum price")
	f.Float64("max-price", 0, "maximum price")
	f.Int("rating", 0, "minimum average rating (1-5)")
	f.String("sort", "", "sort field, e.g. price or avgRating")
	f.Bool("desc", false, "sort descending")

	return cmd
}

// productQueryFromFlags builds a query from the ls flags. Price and
// featured filters are only sent when given explicitly.
func productQueryFromFlags(cmd *cobra.Command) storefront.ProductQuery {
	f := cmd.Flags()

	var q storefront.ProductQuery

	q.Page, _ = f.GetInt("page")
	q.PageSize, _ = f.GetInt("page-size")
	q.Name, _ = f.GetString("name")
	q.CategoryID, _ = f.GetString("category")
	q.Rating, _ = f.GetInt("rating")
	q.SortBy, _ = f.GetString("sort")

	if f.Changed("featured") {
		featured, _ := f.GetBool("featured")
		q.Featured = &featured
	}

	if f.Changed("min-price") {
		v, _ := f.GetFloat64("min-price")
		q.MinPrice = &v
	}

	if f.Changed("max-price") {
		v, _ := f.GetFloat64("max-price")
		q.MaxPrice = &v
	}

	if q.SortBy != "" {
		q.SortDir = storefront.SortAsc

		if desc, _ := f.GetBool("desc"); desc {
			q.SortDir = storefront.SortDesc
		}
	}

	return q
}

func runProductsLs(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	page, err := sess.API.Products.List(ctx, productQueryFromFlags(cmd))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if flagJSON {
		return printJSON(w, page)
	}

	if len(page.Content) == 0 {
		statusf("No products found.\n")

		return nil
	}

	printProducts(w, page.Content)
	statusf("Page %d of %d (%d products)\n", page.Page+1, page.TotalPages, page.TotalElements)

	return nil
}

func printProducts(w io.Writer, products []model.Product) {
	rows := make([][]string, 0, len(products))

	for i := range products {
		p := &products[i]

		var flags []string
		if p.Featured {
			flags = append(flags, "featured")
		}

		if !p.IsActive {
			flags = append(flags, "inactive")
		}

		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			formatPrice(p.Price),
			formatRating(p.AvgRating, p.RatingCount),
			strings.Join(flags, ","),
		})
	}

	printTable(w, []string{"ID", "NAME", "PRICE", "RATING", ""}, rows)
}

func newProductsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a product and its reviews",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsGet,
	}
}

func runProductsGet(cmd *cobra.Command, args []string) error {
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

	p, err := sess.API.Products.Get(ctx, id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if flagJSON {
		return printJSON(w, p)
	}

	fmt.Fprintf(w, "%s  %s\n", p.Name, formatPrice(p.Price))
	fmt.Fprintf(w, "Category: %s\n", p.Category.Name)
	fmt.Fprintf(w, "In stock: %d\n", p.Quantity)
	fmt.Fprintf(w, "Rating:   %s\n", formatRating(p.AvgRating, p.RatingCount))

	if p.Featured {
		fmt.Fprintln(w, "Featured")
	}

	if p.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.Description)
	}

	if len(p.Ratings) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reviews")

	rows := make([][]string, 0, len(p.Ratings))
	for i := range p.Ratings {
		r := &p.Ratings[i]
		rows = append(rows, []string{
			strconv.Itoa(r.Score),
			fullName(r.Customer.FirstName, r.Customer.LastName),
			relativeTime(r.CreatedOn),
			deref(r.Comment),
		})
	}

	printTable(w, []string{"SCORE", "BY", "WHEN", "COMMENT"}, rows)

	return nil
}

func addProductFormFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "product name")
	f.Float64("price", 0, "unit price")
	f.String("description", "", "product description")
	f.Int("quantity", 0, "units in stock")
	f.String("category", "", "category ID")
	f.String("image-url", "", "image URL")
	f.Bool("featured", false, "feature the product on the home page")
	f.Bool("inactive", false, "hide the product from the catalog")
}

func productFormFromFlags(cmd *cobra.Command) model.ProductForm {
	f := cmd.Flags()

	var form model.ProductForm

	form.Name, _ = f.GetString("name")
	form.Price, _ = f.GetFloat64("price")
	form.Description, _ = f.GetString("description")
	form.Quantity, _ = f.GetInt("quantity")
	form.CategoryID, _ = f.GetString("category")
	form.ImageURL, _ = f.GetString("image-url")
	form.Featured, _ = f.GetBool("featured")

	inactive, _ := f.GetBool("inactive")
	form.IsActive = !inactive

	return form
}

func newProductsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product (admin)",
		Args:  cobra.NoArgs,
		RunE:  runProductsCreate,
	}

	addProductFormFlags(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runProductsCreate(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	if err := sess.requireAdmin(); err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	p, err := sess.API.Products.Create(ctx, productFormFromFlags(cmd))
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), p)
	}

	statusf("Created product %d (%s).\n", p.ID, p.Name)

	return nil
}

func newProductsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product (admin)",
		Long: "Replace a product. Flags that are not given keep the product's\n" +
			"current values.",
		Args: cobra.ExactArgs(1),
		RunE: runProductsUpdate,
	}

	addProductFormFlags(cmd)

	return cmd
}

func runProductsUpdate(cmd *cobra.Command, args []string) error {
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

	current, err := sess.API.Products.Get(ctx, id)
	if err != nil {
		return err
	}

	form := mergeProductForm(current, productFormFromFlags(cmd), cmd)

	p, err := sess.API.Products.Update(ctx, id, form)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), p)
	}

	statusf("Updated product %d.\n", p.ID)

	return nil
}

// mergeProductForm starts from the current product and applies only the
// flags the user set.
func mergeProductForm(current *model.ProductDetail, flags model.ProductForm, cmd *cobra.Command) model.ProductForm {
	form := model.ProductForm{
		Name:        current.Name,
		Price:       current.Price,
		Description: current.Description,
		Quantity:    current.Quantity,
		CategoryID:  strconv.FormatInt(current.Category.ID, 10),
		ImageURL:    deref(current.ImageURL),
		Featured:    current.Featured,
		IsActive:    current.IsActive,
	}

	f := cmd.Flags()

	if f.Changed("name") {
		form.Name = flags.Name
	}

	if f.Changed("price") {
		form.Price = flags.Price
	}

	if f.Changed("description") {
		form.Description = flags.Description
	}

	if f.Changed("quantity") {
		form.Quantity = flags.Quantity
	}

	if f.Changed("category") {
		form.CategoryID = flags.CategoryID
	}

	if f.Changed("image-url") {
		form.ImageURL = flags.ImageURL
	}

	if f.Changed("featured") {
		form.Featured = flags.Featured
	}

	if f.Changed("inactive") {
		form.IsActive = flags.IsActive
	}

	return form
}

func newProductsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a product (admin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsRm,
	}
}

func runProductsRm(cmd *cobra.Command, args []string) error {
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

	if err := sess.API.Products.Delete(ctx, id); err != nil {
		return err
	}

	statusf("Deleted product %d.\n", id)

	return nil
}

func newProductsFeatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature <id>",
		Short: "Feature a product on the home page (admin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsFeature,
	}

	cmd.Flags().Bool("off", false, "remove the product from the featured list")

	return cmd
}

func runProductsFeature(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	off, _ := cmd.Flags().GetBool("off")

	sess, err := openSession()
	if err != nil {
		return err
	}

	if err := sess.requireAdmin(); err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	p, err := sess.API.Products.SetFeatured(ctx, id, !off)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), p)
	}

	if !off {
		statusf("Product %d is featured.\n", id)
	} else {
		statusf("Product %d is no longer featured.\n", id)
	}

	return nil
}

// parseID parses a positive numeric resource ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q: must be a positive integer", arg)
	}

	return id, nil
}
