/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics exposes optional Prometheus counters for query and
// heartbeat activity. Nothing in connection, query or supervisor requires
// a Collector — a nil Collector is a valid no-op.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the counters one Connection's Query Channel updates as
// it runs. Register it on a *prometheus.Registry to fold it into a host
// application's own metrics surface.
type Collector struct {
	QueriesSubmitted *prometheus.CounterVec
	Heartbeats       prometheus.Counter
}

// NewCollector builds a Collector and registers it on reg. If reg is nil,
// prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		QueriesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prologmqi",
			Name:      "queries_total",
			Help:      "Queries submitted by outcome (success, failure, cancelled, timeout).",
		}, []string{"outcome"}),
		Heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prologmqi",
			Name:      "heartbeats_total",
			Help:      "Heartbeat markers consumed while waiting on a query's answer.",
		}),
	}

	reg.MustRegister(c.QueriesSubmitted, c.Heartbeats)
	return c
}

// Outcome labels for QueriesSubmitted.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeCancelled = "cancelled"
	OutcomeTimeout   = "timeout"
)

// RecordOutcome increments the QueriesSubmitted counter for outcome. Safe
// to call on a nil *Collector (no-op), so callers don't need a separate
// nil check at every call site.
func (c *Collector) RecordOutcome(outcome string) {
	if c == nil {
		return
	}
	c.QueriesSubmitted.WithLabelValues(outcome).Inc()
}

// RecordHeartbeat increments the Heartbeats counter. Safe on a nil *Collector.
func (c *Collector) RecordHeartbeat() {
	if c == nil {
		return
	}
	c.Heartbeats.Inc()
}
