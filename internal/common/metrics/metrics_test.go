package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackJob(t *testing.T) {
	done := TrackJob("metrics-test-ok")
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsActive.WithLabelValues("metrics-test-ok")))
	done("")
	assert.Equal(t, float64(0), testutil.ToFloat64(WorkerJobsActive.WithLabelValues("metrics-test-ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test-ok")))

	TrackJob("metrics-test-fail")("COACH_NOT_FOUND")
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test-fail", "COACH_NOT_FOUND")))
}

func TestCacheResult(t *testing.T) {
	before := testutil.ToFloat64(ProfileCacheLookups.WithLabelValues("metrics-test", "hit"))
	CacheResult("metrics-test", true)
	CacheResult("metrics-test", false)
	assert.Equal(t, before+1, testutil.ToFloat64(ProfileCacheLookups.WithLabelValues("metrics-test", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ProfileCacheLookups.WithLabelValues("metrics-test", "miss")))
}
