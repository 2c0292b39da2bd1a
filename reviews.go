package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/storefront-go/internal/model"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review products",
	}

	cmd.AddCommand(newReviewAddCmd())

	return cmd
}

func newReviewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Rate a product from 1 to 5",
		Args:  cobra.ExactArgs(1),
		RunE:  runReviewAdd,
	}

	cmd.Flags().Int("score", 0, "score from 1 to 5 (required)")
	cmd.Flags().String("comment", "", "review text")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func runReviewAdd(cmd *cobra.Command, args []string) error {
	productID, err := parseID(args[0])
	if err != nil {
		return err
	}

	score, _ := cmd.Flags().GetInt("score")
	if score < 1 || score > 5 {
		return fmt.Errorf("invalid score %d: must be between 1 and 5", score)
	}

	comment, _ := cmd.Flags().GetString("comment")

	sess, err := openSession()
	if err != nil {
		return err
	}

	customerID, _, ok := sess.Store.Identity()
	if !ok {
		return errNotLoggedIn
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	rating, err := sess.API.Ratings.Create(ctx, model.RatingForm{
		Comment:    comment,
		Score:      score,
		ProductID:  strconv.FormatInt(productID, 10),
		CustomerID: customerID,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), rating)
	}

	statusf("Thanks for your review of product %d.\n", productID)

	return nil
}
