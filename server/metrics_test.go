package server

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/nebularoute/osc"
)

func TestMetricsQueueDepthTracksSchedule(t *testing.T) {
	var sched Schedule
	m := NewMetrics(nil, &sched)

	var out dto.Metric
	require.NoError(t, m.queueDepth.Write(&out))
	require.Equal(t, 0.0, out.GetGauge().GetValue())

	sched.Insert(osc.Timetag{Sec: 1}, "/a", &osc.Message{Pattern: "/a"})
	out = dto.Metric{}
	require.NoError(t, m.queueDepth.Write(&out))
	require.Equal(t, 1.0, out.GetGauge().GetValue())
}

func TestMetricsRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	var sched Schedule
	NewMetrics(reg, &sched)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 4)
}
