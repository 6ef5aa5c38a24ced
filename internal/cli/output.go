// Package cli provides output formatting and an HTTP client for the ecorank CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hyperjump/ecorank/internal/models"
	"github.com/hyperjump/ecorank/pkg/utils"
)

// OutputFormat is the format for product list output.
type OutputFormat string

const (
	// OutputText is a human-readable table (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per product.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates s as an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
}

// WriteProducts writes products to w in the given format, in submission order.
func WriteProducts(w io.Writer, products []models.ScoredProduct, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if products == nil {
			products = []models.ScoredProduct{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	case OutputCompact:
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n", p.Name, p.RawIndex, formatPercentage(p), p.URL)
		}
		return nil
	default:
		return writeProductsText(w, products)
	}
}

func writeProductsText(w io.Writer, products []models.ScoredProduct) error {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products scored yet.")
		return nil
	}
	fmt.Fprintf(w, "\n%d product(s)\n\n", len(products))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPRODUCT\tINDEX\tVS MEDIAN\tURL")
	for i, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%s\n", i+1, p.Name, p.RawIndex, formatPercentage(p), utils.Truncate(p.URL, 60))
	}
	return tw.Flush()
}

func formatPercentage(p models.ScoredProduct) string {
	if !p.HasPercentage() {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *p.Percentage)
}

// WriteStatus writes a status response to w.
func WriteStatus(w io.Writer, st *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	fmt.Fprintf(w, "Session:  %s\n", st.SessionID)
	fmt.Fprintf(w, "Links:    %d\n", st.Links)
	fmt.Fprintf(w, "Products: %d\n", st.Products)
	fmt.Fprintf(w, "Provider: %s (%s)\n", st.Provider, st.Model)
	fmt.Fprintf(w, "Prompt:   %s\n", st.PromptSource)
	return nil
}
