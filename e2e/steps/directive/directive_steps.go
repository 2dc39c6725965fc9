package directive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	Request() map[string]any
}

// RegisterSteps registers directive construction steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &directiveSteps{tc: tc}

	ctx.Step(`^a transfer from "([^"]*)" to "([^"]*)" for recipient "([^"]*)"$`, steps.transfer)
	ctx.Step(`^assets "([^"]*)" with amounts "([^"]*)"$`, steps.assets)
	ctx.Step(`^amounts "([^"]*)"$`, steps.amounts)
	ctx.Step(`^XCM version (\d+)$`, steps.version)
	ctx.Step(`^fees paid with "([^"]*)"$`, steps.payFeeWith)
	ctx.Step(`^I build the directive$`, steps.build)
	ctx.Step(`^I encode the directive$`, steps.encode)
	ctx.Step(`^I classify "([^"]*)" to "([^"]*)"$`, steps.classify)
	ctx.Step(`^the dest should equal:$`, steps.destShouldEqual)
	ctx.Step(`^the call args should start with "([^"]*)"$`, steps.callArgsPrefix)
}

type directiveSteps struct {
	tc TestContext
}

func split(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return []string{}
	}
	parts := strings.Split(csv, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (s *directiveSteps) options() map[string]any {
	return s.tc.Request()["options"].(map[string]any)
}

func (s *directiveSteps) transfer(ctx context.Context, origin, dest, recipient string) error {
	req := s.tc.Request()
	req["origin"] = origin
	req["destination"] = dest
	req["recipient"] = recipient
	return nil
}

func (s *directiveSteps) assets(ctx context.Context, assets, amounts string) error {
	s.tc.Request()["assets"] = split(assets)
	return s.amounts(ctx, amounts)
}

func (s *directiveSteps) amounts(ctx context.Context, amounts string) error {
	s.tc.Request()["amounts"] = split(amounts)
	return nil
}

func (s *directiveSteps) version(ctx context.Context, v int) error {
	s.options()["xcmVersion"] = v
	return nil
}

func (s *directiveSteps) payFeeWith(ctx context.Context, asset string) error {
	s.options()["payFeeWith"] = asset
	return nil
}

func (s *directiveSteps) build(ctx context.Context) error {
	return s.tc.POST("/v1/directives", s.tc.Request())
}

func (s *directiveSteps) encode(ctx context.Context) error {
	return s.tc.POST("/v1/directives/encode", s.tc.Request())
}

func (s *directiveSteps) classify(ctx context.Context, origin, dest string) error {
	q := url.Values{"origin": {origin}, "dest": {dest}}
	return s.tc.GET("/v1/directions?"+q.Encode(), nil)
}

func (s *directiveSteps) destShouldEqual(ctx context.Context, doc *godog.DocString) error {
	got, err := s.tc.GetResponseField("dest")
	if err != nil {
		return err
	}
	var want any
	if err := json.Unmarshal([]byte(doc.Content), &want); err != nil {
		return fmt.Errorf("expected dest is not JSON: %w", err)
	}
	gotRaw, _ := json.Marshal(got)
	wantRaw, _ := json.Marshal(want)
	if string(gotRaw) != string(wantRaw) {
		return fmt.Errorf("dest mismatch:\n got  %s\n want %s", gotRaw, wantRaw)
	}
	return nil
}

func (s *directiveSteps) callArgsPrefix(ctx context.Context, prefix string) error {
	v, err := s.tc.GetResponseField("callArgs")
	if err != nil {
		return err
	}
	if str, _ := v.(string); !strings.HasPrefix(str, prefix) {
		return fmt.Errorf("call args %v do not start with %s", v, prefix)
	}
	return nil
}
