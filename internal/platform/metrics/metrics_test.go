package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := NewHTTP(prometheus.NewRegistry())
	m.ObserveRequest("POST", "/as/callback", 200, 10*time.Millisecond)
	m.ObserveRequest("POST", "/as/callback", 200, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "/as/callback", "200")))

	var nilMetrics *HTTP
	assert.NotPanics(t, func() { nilMetrics.ObserveRequest("GET", "/", 200, 0) })
}
