// Package main is the ecorank CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/ecorank/internal/config"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/ecorank/config.yaml"
	defaultServerURL  = "http://localhost:5000"
)

var (
	configPath   string
	debugFlag    bool
	serverURL    string
	outputFormat string
	httpTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "ecorank",
	Short: "Rank products by estimated carbon footprint",
	Long: `ecorank scores product links with a text-generation service and reports each
product's sustainability index as a deviation from the group median.

Every added link rescores the whole session, so the list always reflects
all links submitted so far.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ecorank version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	for _, c := range []*cobra.Command{addCmd, productsCmd, resetCmd, statusCmd, exportCmd} {
		c.Flags().StringVar(&serverURL, "server", defaultServerURL, "ecorank server URL")
		c.Flags().DurationVar(&httpTimeout, "timeout", 5*time.Minute, "HTTP request timeout")
	}
	for _, c := range []*cobra.Command{addCmd, productsCmd, statusCmd, scoreCmd} {
		c.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, compact or json")
	}
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "ecorank-products.xlsx", "output file")

	rootCmd.AddCommand(serverCmd, addCmd, productsCmd, resetCmd, statusCmd, exportCmd, scoreCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// When the default path does not exist either, defaults plus environment are used
// and the returned path is empty.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return config.FromEnv(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
