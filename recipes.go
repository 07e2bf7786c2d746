package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"flavourkitchen/config"
	"flavourkitchen/discovery"
	"flavourkitchen/logger"
	"flavourkitchen/models"
)

type recipesFlags struct {
	category string
	query    string
	fixtures string
	json     bool
}

func newRecipesCmd(envFile *string) *cobra.Command {
	var flags recipesFlags
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List recipes, optionally filtered by category and text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecipes(cmd.Context(), cmd.OutOrStdout(), *envFile, flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.category, "category", "", "Category slug to filter by")
	f.StringVarP(&flags.query, "query", "q", "", "Text to search for in title, description and ingredients")
	f.StringVar(&flags.fixtures, "fixtures", "", "Read content from a JSON fixtures file instead of the CMS")
	f.BoolVar(&flags.json, "json", false, "Print JSON instead of a table")
	return cmd
}

func runRecipes(ctx context.Context, out io.Writer, envFile string, flags recipesFlags) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(os.Stderr, logger.Config{Level: "WARN", Format: cfg.LogFormat})

	repo, closeRepo, err := openRepository(ctx, cfg, flags.fixtures, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	recipes, err := repo.ListRecipes(ctx)
	if err != nil {
		return &exitErr{code: 2, msg: err.Error()}
	}
	categories, err := repo.ListCategories(ctx)
	if err != nil {
		return &exitErr{code: 2, msg: err.Error()}
	}
	return printRecipes(out, recipes, categories, flags)
}

func printRecipes(out io.Writer, recipes []models.Recipe, categories []models.Category, flags recipesFlags) error {
	sel := discovery.Selector{Category: flags.category, Query: flags.query}
	filtered := discovery.Filter(recipes, sel)
	summary := discovery.Summarize(len(recipes), filtered, categories, sel)

	if flags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Recipes []models.Recipe   `json:"recipes"`
			Summary discovery.Summary `json:"summary"`
		}{filtered, summary})
	}

	if summary.Empty() {
		_, err := fmt.Fprintln(out, "No recipes found")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE\tCATEGORY\tSERVINGS")
	for _, r := range filtered {
		category := ""
		if r.Metadata.Category != nil {
			category = r.Metadata.Category.Title
		}
		servings := ""
		if n := r.ServingCount(); n > 0 {
			servings = fmt.Sprint(n)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Slug, r.Title, category, servings)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, summary.String())
	return err
}
