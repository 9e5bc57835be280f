package iban

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers IBAN validation and country listing steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ibanSteps{tc: tc}

	ctx.Step(`^I validate the IBANs:$`, steps.validateBatch)
	ctx.Step(`^I validate the IBAN "([^"]*)"$`, steps.validateOne)
	ctx.Step(`^I list the supported countries$`, steps.listCountries)

	ctx.Step(`^the response should contain (\d+) verdicts?$`, steps.responseShouldContainVerdicts)
	ctx.Step(`^verdict (\d+) should be valid$`, steps.verdictShouldBeValid)
	ctx.Step(`^verdict (\d+) should have "([^"]*)" set to (true|false)$`, steps.verdictFieldShouldBe)
	ctx.Step(`^the verdict should have "([^"]*)" set to (true|false)$`, steps.singleVerdictFieldShouldBe)
	ctx.Step(`^the country list should contain "([^"]*)" with length (\d+)$`, steps.countryListShouldContain)
}

type verdict map[string]interface{}

type ibanSteps struct {
	tc TestContext
}

func (s *ibanSteps) validateBatch(_ context.Context, table *godog.Table) error {
	ibans := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if len(row.Cells) == 0 {
			continue
		}
		ibans = append(ibans, row.Cells[0].Value)
	}
	return s.tc.POST("/v1/iban/validate", map[string]interface{}{"ibans": ibans})
}

func (s *ibanSteps) validateOne(_ context.Context, candidate string) error {
	return s.tc.GET("/v1/iban/validate/"+url.PathEscape(candidate), nil)
}

func (s *ibanSteps) listCountries(_ context.Context) error {
	return s.tc.GET("/v1/iban/countries", nil)
}

func (s *ibanSteps) verdicts() ([]verdict, error) {
	var body struct {
		Verdicts []verdict `json:"verdicts"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return nil, fmt.Errorf("decode verdicts: %w", err)
	}
	return body.Verdicts, nil
}

// verdictAt takes a 1-based position as written in the feature files.
func (s *ibanSteps) verdictAt(n int) (verdict, error) {
	all, err := s.verdicts()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(all) {
		return nil, fmt.Errorf("verdict %d out of range (have %d)", n, len(all))
	}
	return all[n-1], nil
}

func (s *ibanSteps) responseShouldContainVerdicts(_ context.Context, n int) error {
	all, err := s.verdicts()
	if err != nil {
		return err
	}
	if len(all) != n {
		return fmt.Errorf("expected %d verdicts, got %d", n, len(all))
	}
	return nil
}

func (s *ibanSteps) verdictShouldBeValid(_ context.Context, n int) error {
	v, err := s.verdictAt(n)
	if err != nil {
		return err
	}
	for _, field := range []string{"isAlphanumeric", "isValidCountry", "isCorrectLength", "isDivisibleBy97"} {
		if v[field] != true {
			return fmt.Errorf("verdict %d: expected %s=true, got %v", n, field, v[field])
		}
	}
	return nil
}

func (s *ibanSteps) verdictFieldShouldBe(_ context.Context, n int, field, expected string) error {
	v, err := s.verdictAt(n)
	if err != nil {
		return err
	}
	return checkBool(v, field, expected)
}

func (s *ibanSteps) singleVerdictFieldShouldBe(_ context.Context, field, expected string) error {
	var v verdict
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &v); err != nil {
		return fmt.Errorf("decode verdict: %w", err)
	}
	return checkBool(v, field, expected)
}

func (s *ibanSteps) countryListShouldContain(_ context.Context, code string, length int) error {
	var body struct {
		Countries []struct {
			Code   string `json:"code"`
			Length int    `json:"length"`
		} `json:"countries"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("decode countries: %w", err)
	}
	for _, c := range body.Countries {
		if c.Code == code {
			if c.Length != length {
				return fmt.Errorf("country %s: expected length %d, got %d", code, length, c.Length)
			}
			return nil
		}
	}
	return fmt.Errorf("country %s not listed", code)
}

func checkBool(v verdict, field, expected string) error {
	got, ok := v[field].(bool)
	if !ok {
		return fmt.Errorf("verdict has no boolean field %q", field)
	}
	if fmt.Sprint(got) != expected {
		return fmt.Errorf("expected %s=%s, got %t", field, expected, got)
	}
	return nil
}
