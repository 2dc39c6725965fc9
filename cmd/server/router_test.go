package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"xcmkit/internal/directive"
	"xcmkit/internal/platform/metrics"
	ratemw "xcmkit/internal/ratelimit/middleware"
	ratemodels "xcmkit/internal/ratelimit/models"
	"xcmkit/internal/ratelimit/store/bucket"
	"xcmkit/internal/registry"
	"xcmkit/internal/resolver"
	audit "xcmkit/pkg/platform/audit"
	"xcmkit/pkg/platform/audit/publisher"
	auditmemory "xcmkit/pkg/platform/audit/store/memory"
	"xcmkit/pkg/platform/middleware/admin"
	"xcmkit/pkg/platform/middleware/request"
	"xcmkit/pkg/testutil"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

type RouterSuite struct {
	suite.Suite
	auditStore *auditmemory.InMemoryStore
	deps       routerDeps
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	reg, err := registry.NewDefault()
	s.Require().NoError(err)
	s.auditStore = auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(s.auditStore)
	promReg := prometheus.NewRegistry()

	s.deps = routerDeps{
		logger:      slog.New(slog.DiscardHandler),
		gatherer:    promReg,
		httpMetrics: metrics.New(promReg),
		directives:  directive.NewService(reg, resolver.New(reg), directive.WithAuditor(pub)),
		registry:    reg,
		auditor:     pub,
		adminSecret: secret,
	}
}

func (s *RouterSuite) TestHealthz() {
	rr := testutil.DoRequest(newRouter(s.deps), testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	s.Equal(http.StatusOK, rr.Code)
	testutil.AssertJSONContains(s.T(), rr, "status", "ok")
	s.NotEmpty(rr.Header().Get(request.HeaderRequestID))

	s.deps.checks = map[string]healthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}
	rr = testutil.DoRequest(newRouter(s.deps), testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	s.Equal(http.StatusServiceUnavailable, rr.Code)
	testutil.AssertJSONContains(s.T(), rr, "status", "degraded")
}

func (s *RouterSuite) TestBuildDirectiveAndMetrics() {
	router := newRouter(s.deps)
	body := map[string]any{
		"origin":      "statemine",
		"destination": "2000",
		"recipient":   "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		"assets":      []string{"1"},
		"amounts":     []string{"100"},
		"options":     map[string]any{"xcmVersion": 2},
	}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/directives", body))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	events, err := s.auditStore.ListByAction(context.Background(), audit.EventDirectiveBuilt)
	s.Require().NoError(err)
	s.Len(events, 1)

	rr = testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	s.Require().Equal(http.StatusOK, rr.Code)
	raw, err := io.ReadAll(rr.Body)
	s.Require().NoError(err)
	s.True(strings.Contains(string(raw), `xcmkit_http_requests_total{method="POST",route="/v1/directives",status="200"} 1`))
}

func (s *RouterSuite) TestAdminRoutes() {
	body := map[string]any{
		"specName": "statemint",
		"symbol":   "GLMR",
		"location": map[string]any{"parents": 1, "interior": map[string]any{"X1": []any{map[string]any{"Parachain": 2004}}}},
	}

	rr := testutil.DoRequest(newRouter(s.deps), testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registry/foreign-assets", body))
	s.Equal(http.StatusUnauthorized, rr.Code)

	token, err := admin.IssueToken(secret, "ops", time.Hour, time.Now())
	s.Require().NoError(err)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registry/foreign-assets", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = testutil.DoRequest(newRouter(s.deps), req)
	s.Equal(http.StatusCreated, rr.Code, rr.Body.String())

	events, err := s.auditStore.ListByAction(context.Background(), audit.EventForeignAssetCached)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *RouterSuite) TestDirectiveRoutesAreRateLimited() {
	s.deps.limiter = ratemw.New(bucket.NewInMemoryBucketStore(), map[ratemodels.Class]ratemodels.Limit{
		ratemodels.ClassDirective: {Requests: 1, Window: time.Minute},
	}, nil)
	router := newRouter(s.deps)

	classify := "/v1/directions?origin=statemine&dest=2000"
	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, classify))
	s.Equal(http.StatusOK, rr.Code)
	rr = testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, classify))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limited")

	rr = testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/registry/chains/statemine"))
	s.Equal(http.StatusOK, rr.Code)
}

func (s *RouterSuite) TestRateLimitKeysOnPeerUnlessProxied() {
	classify := "/v1/directions?origin=statemine&dest=2000"
	send := func(router http.Handler, remote, forwarded string) int {
		req := testutil.NewRequest(s.T(), http.MethodGet, classify)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", forwarded)
		return testutil.DoRequest(router, req).Code
	}
	limited := func() http.Handler {
		s.deps.limiter = ratemw.New(bucket.NewInMemoryBucketStore(), map[ratemodels.Class]ratemodels.Limit{
			ratemodels.ClassDirective: {Requests: 1, Window: time.Minute},
		}, nil)
		return newRouter(s.deps)
	}

	s.Run("rotating forwarded headers from a direct peer", func() {
		router := limited()
		s.Equal(http.StatusOK, send(router, "198.51.100.9:4000", "203.0.113.1"))
		s.Equal(http.StatusTooManyRequests, send(router, "198.51.100.9:4001", "203.0.113.2"))
	})

	s.Run("forwarded clients behind a trusted proxy", func() {
		proxies, err := request.ParseTrustedProxies([]string{"10.0.0.0/8"})
		s.Require().NoError(err)
		s.deps.proxies = proxies
		router := limited()
		s.Equal(http.StatusOK, send(router, "10.0.0.5:4000", "203.0.113.1"))
		s.Equal(http.StatusOK, send(router, "10.0.0.5:4000", "203.0.113.2"))
		s.Equal(http.StatusTooManyRequests, send(router, "10.0.0.6:4000", "203.0.113.1"))
	})
}

func (s *RouterSuite) TestAdminRoutesDisabledWithoutSecret() {
	s.deps.adminSecret = nil
	rr := testutil.DoRequest(newRouter(s.deps), testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registry/foreign-assets", map[string]any{}))
	s.Equal(http.StatusNotFound, rr.Code)
}
