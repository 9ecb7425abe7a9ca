package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordUpload(t *testing.T) {
	before := testutil.ToFloat64(UploadsTotal.WithLabelValues("upload", "success"))
	RecordUpload("upload", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(UploadsTotal.WithLabelValues("upload", "success")))
}

func TestRecordDatasetRows(t *testing.T) {
	RecordDatasetRows(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(DatasetRows))
}

func TestRecordComputation(t *testing.T) {
	before := testutil.ToFloat64(ComputationsTotal.WithLabelValues(ModeTable))
	RecordComputation(ModeTable, 3)
	assert.Equal(t, before+3, testutil.ToFloat64(ComputationsTotal.WithLabelValues(ModeTable)))
}

func TestRecordRequest(t *testing.T) {
	RecordRequest("GET", "/healthz", "200", 5*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration, "qoe_http_request_duration_seconds"))
}
