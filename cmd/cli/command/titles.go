package command

import (
	"fmt"
	"strconv"
	"strings"

	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Browse titles",
}

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter client.TitleFilter
		filter.Name, _ = cmd.Flags().GetString("name")
		filter.Year, _ = cmd.Flags().GetInt("year")
		filter.Category, _ = cmd.Flags().GetString("category")
		filter.Genre, _ = cmd.Flags().GetString("genre")
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListTitles(ctx, filter, page)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}

		if len(result.Data) == 0 {
			fmt.Println("No titles found.")
			return nil
		}

		fmt.Printf("Found %d titles (page %d of %d):\n\n", result.Total, result.Page, result.TotalPages)
		for _, w := range result.Data {
			printTitle(w)
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

var getTitleCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "title")
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		w, err := newClient().GetTitle(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get title: %w", err)
		}
		printTitle(*w)
		if w.Description != nil && *w.Description != "" {
			fmt.Printf("\n%s\n", *w.Description)
		}
		return nil
	},
}

func printTitle(w dto.WorkResponse) {
	color.Cyan("[%d] %s (%d)", w.ID, w.Name, w.Year)
	if w.Rating != nil {
		color.Yellow("Rating: %d/10", *w.Rating)
	} else {
		fmt.Println("Rating: not rated yet")
	}
	if w.Category != nil {
		fmt.Printf("Category: %s\n", w.Category.Name)
	}
	if len(w.Genre) > 0 {
		names := make([]string, 0, len(w.Genre))
		for _, g := range w.Genre {
			names = append(names, g.Name)
		}
		fmt.Printf("Genres: %s\n", strings.Join(names, ", "))
	}
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %q", what, raw)
	}
	return id, nil
}

func init() {
	titlesCmd.AddCommand(listTitlesCmd, getTitleCmd)

	listTitlesCmd.Flags().String("name", "", "Substring of the title name")
	listTitlesCmd.Flags().Int("year", 0, "Release year")
	listTitlesCmd.Flags().String("category", "", "Category slug")
	listTitlesCmd.Flags().String("genre", "", "Genre slug")
	listTitlesCmd.Flags().Int("page", 1, "Page number")
}
