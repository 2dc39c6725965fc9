package e2e

import (
	"github.com/cucumber/godog"

	"xcmkit/e2e/steps/common"
	"xcmkit/e2e/steps/directive"
	"xcmkit/e2e/steps/registry"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and assertions
	common.RegisterSteps(ctx, tc)

	directive.RegisterSteps(ctx, tc)
	registry.RegisterSteps(ctx, tc)
}
