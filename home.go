package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/storefront-go/internal/model"
	"github.com/tonimelisma/storefront-go/internal/storefront"
)

func newHomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show featured products and top-level categories",
		Args:  cobra.NoArgs,
		RunE:  runHome,
	}
}

// homeOutput is the JSON schema for `home --json`.
type homeOutput struct {
	Featured   []model.Product  `json:"featured"`
	Categories []model.Category `json:"categories"`
}

func runHome(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	var (
		featured   *model.Page[model.Product]
		categories []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		featured, err = sess.API.Products.List(gctx, storefront.FeaturedQuery())

		return err
	})

	g.Go(func() error {
		var err error
		categories, err = sess.API.Categories.Parents(gctx)

		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if flagJSON {
		return printJSON(w, homeOutput{Featured: featured.Content, Categories: categories})
	}

	fmt.Fprintln(w, "Featured products")
	printProducts(w, featured.Content)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Categories")

	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name})
	}

	printTable(w, []string{"ID", "NAME"}, rows)

	return nil
}
