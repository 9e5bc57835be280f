package cli

import (
	"github.com/spf13/cobra"

	"ibancheck/internal/iban/country"
)

func countriesCmd(_ *rootOptions) *cobra.Command {
	var output string

	c := &cobra.Command{
		Use:   "countries",
		Short: "List supported countries and their IBAN lengths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			return renderCountries(cmd.OutOrStdout(), format, country.All())
		},
	}

	c.Flags().StringVarP(&output, "output", "o", string(formatText), "output format: text, json or yaml")
	return c
}
