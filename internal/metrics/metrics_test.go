package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.Turn("en", "conversational", 2*time.Millisecond)
	c.Turn("en", "conversational", time.Millisecond)
	c.Turn("fa", "template", time.Millisecond)
	c.Intent("time")
	c.Failure(FailurePersistence)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.turns.WithLabelValues("en", "conversational")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.turns.WithLabelValues("fa", "template")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.intents.WithLabelValues("time")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues(FailurePersistence)))

	n, err := testutil.GatherAndCount(reg, "assistant_turns_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Turn("en", "template", time.Second)
		c.Intent("greeting")
		c.Failure(FailurePanic)
	})
}
