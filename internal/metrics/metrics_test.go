package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAccessDecision(t *testing.T) {
	before := testutil.ToFloat64(AccessDecisions.WithLabelValues("test.op", "deny"))
	RecordAccessDecision("test.op", false)
	after := testutil.ToFloat64(AccessDecisions.WithLabelValues("test.op", "deny"))
	assert.Equal(t, before+1, after)
}

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(ImageCacheLookups.WithLabelValues("hit"))
	RecordCacheLookup("hit")
	assert.Equal(t, before+1, testutil.ToFloat64(ImageCacheLookups.WithLabelValues("hit")))
}

func TestRecordHTTPRequest(t *testing.T) {
	series := HTTPRequests.WithLabelValues("GET", "/tags/{title}", "404")
	before := testutil.ToFloat64(series)
	RecordHTTPRequest("GET", "/tags/{title}", 404)
	assert.Equal(t, before+1, testutil.ToFloat64(series))
}
