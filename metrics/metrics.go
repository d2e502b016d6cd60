// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exports densification statistics of a Gaussian set
// as prometheus metrics.
package metrics

import (
	"slices"

	"cogentcore.org/gsplat/gaussian"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "gsplat"

// Metrics implements [gaussian.Reporter] with prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	primitives prometheus.Gauge
	cycles     prometheus.Counter
	added      *prometheus.CounterVec
	pruned     prometheus.Counter
	loss       prometheus.Gauge
	iteration  prometheus.Gauge
}

// New returns new metrics registered on a new registry.
func New() *Metrics {
	return NewWith(prometheus.NewRegistry())
}

// NewWith returns new metrics registered on the given registry.
func NewWith(reg *prometheus.Registry) *Metrics {
	m := &Metrics{Registry: reg}
	f := promauto.With(reg)
	m.primitives = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "primitives",
		Help:      "Number of Gaussian primitives after the last densification cycle",
	})
	m.cycles = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "densify_cycles_total",
		Help:      "Number of densify and prune cycles",
	})
	m.added = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "densified_primitives_total",
		Help:      "Number of primitives added by densification, by operation",
	}, []string{"op"})
	m.pruned = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pruned_primitives_total",
		Help:      "Number of primitives removed by pruning",
	})
	m.loss = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "loss",
		Help:      "Training loss of the last iteration",
	})
	m.iteration = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "iteration",
		Help:      "Last completed training iteration",
	})
	return m
}

// Report records the given densification report.
func (m *Metrics) Report(r *gaussian.DensifyReport) {
	m.cycles.Inc()
	m.added.WithLabelValues("clone").Add(float64(r.Cloned))
	m.added.WithLabelValues("split").Add(float64(r.Children))
	m.pruned.Add(float64(r.Pruned))
	m.primitives.Set(float64(r.After))
}

// SetPrimitives sets the primitive count gauge.
func (m *Metrics) SetPrimitives(n int) {
	m.primitives.Set(float64(n))
}

// Iteration records the loss of a completed training iteration.
func (m *Metrics) Iteration(iter int, loss float32) {
	m.iteration.Set(float64(iter))
	m.loss.Set(float64(loss))
}

// Values gathers the current metrics as a map from metric name,
// with label values appended after a colon, to value.
func (m *Metrics) Values() (map[string]float64, error) {
	mfs, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}
	vals := map[string]float64{}
	for _, mf := range mfs {
		for _, mt := range mf.GetMetric() {
			vals[metricKey(mf.GetName(), mt)] = metricValue(mf.GetType(), mt)
		}
	}
	return vals, nil
}

func metricKey(name string, mt *dto.Metric) string {
	lps := mt.GetLabel()
	if len(lps) == 0 {
		return name
	}
	lvs := make([]string, len(lps))
	for i, lp := range lps {
		lvs[i] = lp.GetValue()
	}
	slices.Sort(lvs)
	for _, lv := range lvs {
		name += ":" + lv
	}
	return name
}

func metricValue(typ dto.MetricType, mt *dto.Metric) float64 {
	switch typ {
	case dto.MetricType_COUNTER:
		return mt.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return mt.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return mt.GetUntyped().GetValue()
	}
	return 0
}
