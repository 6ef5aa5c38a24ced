package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/ecorank/internal/cli"
	"github.com/hyperjump/ecorank/internal/models"
)

var exportFile string

var addCmd = &cobra.Command{
	Use:   "add <link> [link...]",
	Short: "Add product links to the running server's session",
	Long: `Adds each link in order. Each addition rescores every link in the session,
so the printed list is the result after the last link.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		c := cli.NewClient(serverURL, httpTimeout)
		var products []models.ScoredProduct
		for _, link := range args {
			products, err = c.AddLink(link)
			if err != nil {
				return fmt.Errorf("add %s: %w", link, err)
			}
		}
		return cli.WriteProducts(cmd.OutOrStdout(), products, format)
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Print the current product list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		products, err := cli.NewClient(serverURL, httpTimeout).Products()
		if err != nil {
			return err
		}
		return cli.WriteProducts(cmd.OutOrStdout(), products, format)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the server's session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := cli.NewClient(serverURL, httpTimeout).Reset()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and backend status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		st, err := cli.NewClient(serverURL, httpTimeout).Status()
		if err != nil {
			return err
		}
		return cli.WriteStatus(cmd.OutOrStdout(), st, format)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the product list as an XLSX report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(exportFile)
		if err != nil {
			return err
		}
		if err := cli.NewClient(serverURL, httpTimeout).Export(f); err != nil {
			f.Close()
			_ = os.Remove(exportFile)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportFile)
		return nil
	},
}
