package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the feature files against XCMKIT_E2E_BASE_URL.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("XCMKIT_E2E_BASE_URL")
	if baseURL == "" {
		t.Skip("XCMKIT_E2E_BASE_URL not set")
	}
	tc := NewTestContext(baseURL, os.Getenv("XCMKIT_E2E_ADMIN_TOKEN"))

	suite := godog.TestSuite{
		Name: "xcmkit",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(sc, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Tags:     os.Getenv("XCMKIT_E2E_TAGS"),
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("e2e scenarios failed")
	}
}
