package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"ibancheck/internal/iban"
	"ibancheck/internal/iban/country"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

var (
	passMark = color.New(color.FgGreen)
	failMark = color.New(color.FgRed)
	dim      = color.New(color.Faint)
)

func renderVerdicts(w io.Writer, format outputFormat, verdicts []iban.Verdict) error {
	switch format {
	case formatJSON:
		return writeJSON(w, map[string]any{"verdicts": verdicts})
	case formatYAML:
		return writeYAML(w, map[string]any{"verdicts": verdicts})
	}

	for _, v := range verdicts {
		if v.Valid() {
			_, _ = fmt.Fprintf(w, "%s  %s\n", passMark.Sprint("VALID  "), v.IBAN)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
			failMark.Sprint("INVALID"), v.IBAN, dim.Sprintf("(%s)", checks(v)))
	}
	return nil
}

// checks lists every check with its outcome, e.g. "alnum ok, country ok,
// length FAIL, mod97 FAIL".
func checks(v iban.Verdict) string {
	mark := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "FAIL"
	}
	return fmt.Sprintf("alnum %s, country %s, length %s, mod97 %s",
		mark(v.IsAlphanumeric), mark(v.IsValidCountry), mark(v.IsCorrectLength), mark(v.IsDivisibleBy97))
}

func renderCountries(w io.Writer, format outputFormat, countries []country.Country) error {
	switch format {
	case formatJSON:
		return writeJSON(w, map[string]any{"countries": countries})
	case formatYAML:
		return writeYAML(w, map[string]any{"countries": countries})
	}

	_, _ = fmt.Fprintln(w, dim.Sprint("CODE  LENGTH"))
	for _, c := range countries {
		_, _ = fmt.Fprintf(w, "%-4s  %6d\n", c.Code, c.Length)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
