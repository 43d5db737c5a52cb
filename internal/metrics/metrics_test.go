package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"postforlife/internal/reaction"
)

func TestObserveReaction(t *testing.T) {
	before := testutil.ToFloat64(reactionsApplied.WithLabelValues("post", "added"))

	ObserveReaction("post", reaction.Added)
	ObserveReaction("post", reaction.Added)

	assert.Equal(t, before+2, testutil.ToFloat64(reactionsApplied.WithLabelValues("post", "added")))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/post/", "200"))

	ObserveRequest("GET", "/api/post/", http.StatusOK, 15*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/post/", "200")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	ObserveReaction("comment", reaction.Removed)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "postforlife_reactions_applied_total")
}
