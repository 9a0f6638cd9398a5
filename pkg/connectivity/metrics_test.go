package connectivity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetricsCreatesInstruments(t *testing.T) {
	require.NoError(t, initMetrics())
	assert.NotNil(t, searchLatency)
	assert.NotNil(t, searchTotal)
	assert.NotNil(t, searchTasks)
	assert.NotNil(t, linksCreated)
	assert.NotNil(t, netsRewritten)
	assert.NotNil(t, clusterLatency)

	assert.NotPanics(t, func() {
		recordSearchMetrics(context.Background(), time.Millisecond, 12, 3, false)
		recordSearchMetrics(context.Background(), time.Millisecond, 4, 0, true)
	})
}
