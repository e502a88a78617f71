package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(ClientCacheHits.WithLabelValues("test.family"))
	RecordCacheLookup("test.family", true)
	RecordCacheLookup("test.family", false)
	assert.Equal(t, before+1, testutil.ToFloat64(ClientCacheHits.WithLabelValues("test.family")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ClientCacheMisses.WithLabelValues("test.family")), 1.0)
}

func TestRecordHTTPRequest(t *testing.T) {
	RecordHTTPRequest("GET", "/api/movies", "200", 15*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/movies", "200")), 1.0)
}

func TestRecordOutcome(t *testing.T) {
	before := testutil.ToFloat64(OperationOutcomes.WithLabelValues("mylist.add", "completed"))
	RecordOutcome("mylist.add", "completed")
	assert.Equal(t, before+1, testutil.ToFloat64(OperationOutcomes.WithLabelValues("mylist.add", "completed")))
}
