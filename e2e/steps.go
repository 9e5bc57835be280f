package e2e

import (
	"github.com/cucumber/godog"

	"ibancheck/e2e/steps/common"
	"ibancheck/e2e/steps/iban"
	"ibancheck/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and assertions
	common.RegisterSteps(ctx, tc)

	// Validation and country listing
	iban.RegisterSteps(ctx, tc)

	// Rate limiting and the audit trail it leaves
	ratelimit.RegisterSteps(ctx, tc)
}
