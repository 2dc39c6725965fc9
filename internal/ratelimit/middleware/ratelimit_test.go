package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"xcmkit/internal/ratelimit/metrics"
	"xcmkit/internal/ratelimit/models"
	"xcmkit/internal/ratelimit/store/bucket"
	"xcmkit/pkg/requestcontext"
	"xcmkit/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (models.Result, error) {
	return models.Result{}, errors.New("redis down")
}

type RateLimitSuite struct {
	suite.Suite
	limits map[models.Class]models.Limit
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.limits = map[models.Class]models.Limit{
		models.ClassDirective: {Requests: 2, Window: time.Minute},
	}
}

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func fromIP(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/directives", nil)
	return req.WithContext(requestcontext.WithClientIP(req.Context(), ip))
}

func (s *RateLimitSuite) TestRejectsOverLimit() {
	mw := New(bucket.NewInMemoryBucketStore(), s.limits, nil, WithMetrics(metrics.New(prometheus.NewRegistry())))
	h := mw.Limit(models.ClassDirective)(ok())

	for i := 0; i < 2; i++ {
		rr := testutil.DoRequest(h, fromIP("10.0.0.1"))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("2", rr.Header().Get(headerLimit))
	}

	rr := testutil.DoRequest(h, fromIP("10.0.0.1"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limited")
	s.Equal("0", rr.Header().Get(headerRemaining))
	s.NotEmpty(rr.Header().Get(headerRetryAfter))

	rr = testutil.DoRequest(h, fromIP("10.0.0.2"))
	s.Equal(http.StatusOK, rr.Code)
}

func (s *RateLimitSuite) TestUnconfiguredClassPassesThrough() {
	mw := New(bucket.NewInMemoryBucketStore(), s.limits, nil)
	h := mw.Limit(models.ClassRegistry)(ok())
	for i := 0; i < 5; i++ {
		rr := testutil.DoRequest(h, fromIP("10.0.0.1"))
		s.Equal(http.StatusOK, rr.Code)
		s.Empty(rr.Header().Get(headerLimit))
	}
}

func (s *RateLimitSuite) TestDisabled() {
	mw := New(bucket.NewInMemoryBucketStore(), s.limits, nil, WithDisabled(true))
	h := mw.Limit(models.ClassDirective)(ok())
	for i := 0; i < 5; i++ {
		s.Equal(http.StatusOK, testutil.DoRequest(h, fromIP("10.0.0.1")).Code)
	}
}

func (s *RateLimitSuite) TestStoreFailureFailsOpen() {
	mw := New(failingStore{}, s.limits, nil)
	rr := testutil.DoRequest(mw.Limit(models.ClassDirective)(ok()), fromIP("10.0.0.1"))
	s.Equal(http.StatusOK, rr.Code)
}
