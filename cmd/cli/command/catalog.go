package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListCategories(ctx, page)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		for _, c := range result.Data {
			printEntry(c.Name, c.Slug)
		}
		fmt.Printf("Page %d of %d\n", result.Page, result.TotalPages)
		return nil
	},
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List genres",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListGenres(ctx, page)
		if err != nil {
			return fmt.Errorf("failed to list genres: %w", err)
		}
		for _, g := range result.Data {
			printEntry(g.Name, g.Slug)
		}
		fmt.Printf("Page %d of %d\n", result.Page, result.TotalPages)
		return nil
	},
}

func printEntry(name, slug string) {
	fmt.Printf("%-30s %s\n", name, color.HiBlackString(slug))
}

func init() {
	categoriesCmd.Flags().Int("page", 1, "Page number")
	genresCmd.Flags().Int("page", 1, "Page number")
}
