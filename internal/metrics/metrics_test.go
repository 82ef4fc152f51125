package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordUpstream(t *testing.T) {
	okBefore := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("chat", "ok"))
	errBefore := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("chat", "error"))

	RecordUpstream("chat", nil, 0.2)
	RecordUpstream("chat", errors.New("boom"), 0.1)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("chat", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("chat", "error")))
}

func TestRecordJobCreatedDefaultsModelLabel(t *testing.T) {
	before := testutil.ToFloat64(JobsCreatedTotal.WithLabelValues("unknown"))
	RecordJobCreated("")
	assert.Equal(t, before+1, testutil.ToFloat64(JobsCreatedTotal.WithLabelValues("unknown")))
}

func TestRecordPersistFailure(t *testing.T) {
	before := testutil.ToFloat64(JobPersistFailuresTotal)
	RecordPersistFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(JobPersistFailuresTotal))
}
