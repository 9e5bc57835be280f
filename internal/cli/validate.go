package cli

import (
	"bufio"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"ibancheck/internal/iban"
	"ibancheck/internal/iban/country"
	"ibancheck/internal/iban/service"
)

// maxLineBytes bounds a single stdin line.
const maxLineBytes = 1 << 20

func validateCmd(root *rootOptions) *cobra.Command {
	var output string
	var workers int
	var strict bool

	c := &cobra.Command{
		Use:   "validate [IBAN...]",
		Short: "Validate IBANs given as arguments or one per line on stdin",
		Long: `Validate checks each candidate for allowed characters, a known country
code, the country's IBAN length and the MOD 97-10 checksum.

With no arguments, or a single "-", candidates are read from stdin one per
line. Input is not normalised: strip spaces and fix case before piping.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}

			candidates := args
			if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
				candidates, err = readCandidates(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}
			if len(candidates) == 0 {
				return fmt.Errorf("no IBANs to validate")
			}

			svc := service.New(iban.Default(), country.Default(),
				service.WithLogger(root.logger()),
				service.WithWorkers(workers),
				service.WithMaxBatch(len(candidates)),
			)
			verdicts, err := svc.Validate(cmd.Context(), candidates)
			if err != nil {
				return err
			}

			if err := renderVerdicts(cmd.OutOrStdout(), format, verdicts); err != nil {
				return err
			}

			if strict {
				for _, v := range verdicts {
					if !v.Valid() {
						return &ExitError{Code: 1}
					}
				}
			}
			return nil
		},
	}

	c.Flags().StringVarP(&output, "output", "o", string(formatText), "output format: text, json or yaml")
	c.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "goroutines evaluating one batch")
	c.Flags().BoolVar(&strict, "strict", false, "exit with status 1 if any IBAN is invalid")
	return c
}

// readCandidates returns one candidate per line with only the line terminator
// removed. Empty lines are skipped.
func readCandidates(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var out []string
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}
