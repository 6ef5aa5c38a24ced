package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/ecorank/internal/cli"
	"github.com/hyperjump/ecorank/internal/models"
)

var scoreCmd = &cobra.Command{
	Use:   "score <link> [link...]",
	Short: "Score links in-process without a server",
	Long: `Runs the scoring pipeline locally against the configured inference provider.
Links are added one at a time, exactly as the server would, and the final
product list is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		c, err := initializeComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Logger.Sync()

		var products []models.ScoredProduct
		for _, link := range args {
			products, err = c.Pipeline.AddLink(cmd.Context(), link)
			if err != nil {
				return fmt.Errorf("score %s: %w", link, err)
			}
		}
		return cli.WriteProducts(cmd.OutOrStdout(), products, format)
	},
}
