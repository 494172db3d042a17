package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/salesflow/internal/cli"
	"github.com/Veraticus/salesflow/internal/extract"
	"github.com/Veraticus/salesflow/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [message text]",
		Short: "Show what the extractors find in a message",
		Long: `Run the units and revenue extractors on a single message and print the
values together with the rule that produced each one.`,
		Example: `  salesflow extract "units=7 R27,401"
  salesflow extract --currency-markers r,zar "sold 3 for zar 1 200"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().StringSlice("currency-markers", nil, "currency symbols that may precede an amount (default: configured markers)")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	markers, _ := cmd.Flags().GetStringSlice("currency-markers")
	if len(markers) == 0 {
		markers = viper.GetStringSlice("processing.currency_markers")
	}

	amount, err := extract.NewAmountExtractor(markers...)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderExtraction(text, extract.DefaultQuantityExtractor(), amount))
	return err
}

// renderExtraction formats the extraction result for one message.
func renderExtraction(text string, units *extract.QuantityExtractor, amount *extract.AmountExtractor) string {
	var b strings.Builder

	um, unitsOK := units.Match(text)
	am, amountOK := amount.Match(text)

	b.WriteString(cli.LabelStyle.Render("text") + strconv.Quote(text) + "\n")
	if unitsOK {
		b.WriteString(cli.LabelStyle.Render("units_sold") + strconv.Itoa(um.Units) + cli.SubtleStyle.Render("  ("+um.Rule+")") + "\n")
	} else {
		b.WriteString(cli.LabelStyle.Render("units_sold") + cli.WarningStyle.Render("not found") + "\n")
	}
	if amountOK {
		b.WriteString(cli.LabelStyle.Render("revenue") + strconv.FormatFloat(am.Amount, 'f', -1, 64) + cli.SubtleStyle.Render("  ("+am.Rule+")") + "\n")
	} else {
		b.WriteString(cli.LabelStyle.Render("revenue") + cli.WarningStyle.Render("not found") + "\n")
	}

	var (
		unitsPtr   *int
		revenuePtr *float64
	)
	if unitsOK {
		unitsPtr = &um.Units
	}
	if amountOK {
		revenuePtr = &am.Amount
	}
	b.WriteString(cli.LabelStyle.Render("parse_status") + string(model.ParseStatusFor(unitsPtr, revenuePtr)))

	return b.String()
}
