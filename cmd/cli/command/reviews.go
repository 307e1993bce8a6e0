package command

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Read and write reviews of a title",
}

var listReviewsCmd = &cobra.Command{
	Use:   "list [title-id]",
	Short: "List reviews of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListReviews(ctx, titleID, page)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No reviews yet.")
			return nil
		}

		for _, r := range result.Data {
			color.Cyan("[%d] %s scored %d/10 on %s", r.ID, r.Author, r.Score, r.PubDate.Format("2006-01-02"))
			fmt.Println(r.Text)
			fmt.Println(strings.Repeat("-", 50))
		}
		fmt.Printf("Page %d of %d\n", result.Page, result.TotalPages)
		return nil
	},
}

var addReviewCmd = &cobra.Command{
	Use:   "add [title-id]",
	Short: "Review a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		text, _ := cmd.Flags().GetString("text")
		score, _ := cmd.Flags().GetInt("score")

		c, err := authedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		review, err := c.AddReview(ctx, titleID, text, score)
		if err != nil {
			return fmt.Errorf("failed to add review: %w", err)
		}
		color.Green("✓ Review %d posted", review.ID)
		return nil
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id]",
	Short: "Delete a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		reviewID, err := parseID(args[1], "review")
		if err != nil {
			return err
		}

		c, err := authedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := c.DeleteReview(ctx, titleID, reviewID); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		color.Green("✓ Review %d deleted", reviewID)
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Read and write comments on a review",
}

var listCommentsCmd = &cobra.Command{
	Use:   "list [title-id] [review-id]",
	Short: "List comments on a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		reviewID, err := parseID(args[1], "review")
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListComments(ctx, titleID, reviewID, page)
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		for _, cm := range result.Data {
			color.HiBlack("[%d] %s, %s", cm.ID, cm.Author, cm.PubDate.Format("2006-01-02 15:04"))
			fmt.Println(cm.Text)
		}
		return nil
	},
}

var addCommentCmd = &cobra.Command{
	Use:   "add [title-id] [review-id]",
	Short: "Comment on a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		reviewID, err := parseID(args[1], "review")
		if err != nil {
			return err
		}
		text, _ := cmd.Flags().GetString("text")

		c, err := authedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		comment, err := c.AddComment(ctx, titleID, reviewID, text)
		if err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}
		color.Green("✓ Comment %d posted", comment.ID)
		return nil
	},
}

func init() {
	reviewsCmd.AddCommand(listReviewsCmd, addReviewCmd, deleteReviewCmd)
	commentsCmd.AddCommand(listCommentsCmd, addCommentCmd)

	listReviewsCmd.Flags().Int("page", 1, "Page number")
	listCommentsCmd.Flags().Int("page", 1, "Page number")

	addReviewCmd.Flags().StringP("text", "t", "", "Review text")
	addReviewCmd.Flags().IntP("score", "s", 0, "Score from 1 to 10")
	_ = addReviewCmd.MarkFlagRequired("text")
	_ = addReviewCmd.MarkFlagRequired("score")

	addCommentCmd.Flags().StringP("text", "t", "", "Comment text")
	_ = addCommentCmd.MarkFlagRequired("text")
}
