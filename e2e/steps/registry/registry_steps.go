package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	AdminPOST(path string, body any) error
	POST(path string, body any) error
	GetLastResponseBody() []byte
	HasAdminToken() bool
}

// RegisterSteps registers chain registry steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	ctx.Step(`^I look up chain "([^"]*)"$`, steps.lookupChain)
	ctx.Step(`^the chain should list foreign asset "([^"]*)"$`, steps.shouldListForeignAsset)
	ctx.Step(`^an admin caches foreign asset "([^"]*)" on "([^"]*)" at:$`, steps.adminCaches)
	ctx.Step(`^an anonymous caller caches foreign asset "([^"]*)" on "([^"]*)" at:$`, steps.anonymousCaches)
}

type registrySteps struct {
	tc TestContext
}

func (s *registrySteps) lookupChain(ctx context.Context, specName string) error {
	return s.tc.GET("/v1/registry/chains/"+specName, nil)
}

func (s *registrySteps) shouldListForeignAsset(ctx context.Context, symbol string) error {
	var chain struct {
		ForeignAssets []struct {
			Symbol string `json:"symbol"`
		} `json:"foreignAssets"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &chain); err != nil {
		return err
	}
	for _, fa := range chain.ForeignAssets {
		if fa.Symbol == symbol {
			return nil
		}
	}
	return fmt.Errorf("foreign asset %s not listed", symbol)
}

func body(symbol, specName string, doc *godog.DocString) map[string]any {
	return map[string]any{
		"specName": specName,
		"symbol":   symbol,
		"location": json.RawMessage(doc.Content),
	}
}

func (s *registrySteps) adminCaches(ctx context.Context, symbol, specName string, doc *godog.DocString) error {
	if !s.tc.HasAdminToken() {
		return godog.ErrPending
	}
	return s.tc.AdminPOST("/admin/registry/foreign-assets", body(symbol, specName, doc))
}

func (s *registrySteps) anonymousCaches(ctx context.Context, symbol, specName string, doc *godog.DocString) error {
	return s.tc.POST("/admin/registry/foreign-assets", body(symbol, specName, doc))
}
