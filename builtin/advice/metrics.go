/*
 * Copyright 2025 The WeaveGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package advice

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weavego/weavego/api/types"
	"github.com/weavego/weavego/utils/maps"
)

// MetricsAspect measures matched calls with prometheus: an invocation
// counter, a failure counter and a duration histogram, all labeled by target
// and method. It wraps the call as around advice so the measured span covers
// the whole downstream chain.
// MetricsAspect 用 prometheus 度量匹配的调用：调用计数、失败计数与耗时直方图，
// 均按 target 和 method 打标签。它以 around 增强包裹调用，度量区间覆盖整个下游链。
type MetricsAspect struct {
	// Registerer receives the collectors, defaulting to the prometheus
	// default registerer. Tests inject their own registry here.
	Registerer prometheus.Registerer

	config      metricsConfig
	invocations *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

type metricsConfig struct {
	// Namespace prefixes the metric names.
	Namespace string `mapstructure:"namespace"`
}

var _ types.AroundAspect = (*MetricsAspect)(nil)

func (a *MetricsAspect) Type() string {
	return "metrics"
}

func (a *MetricsAspect) New() types.Aspect {
	return &MetricsAspect{}
}

func (a *MetricsAspect) Order() int {
	return 100
}

func (a *MetricsAspect) Init(_ types.Config, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &a.config); err != nil {
		return err
	}
	if a.Registerer == nil {
		a.Registerer = prometheus.DefaultRegisterer
	}
	labels := []string{"target", "method"}
	a.invocations = a.registerCounter(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: a.config.Namespace,
		Name:      "weavego_invocations_total",
		Help:      "Total intercepted invocations.",
	}, labels))
	a.failures = a.registerCounter(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: a.config.Namespace,
		Name:      "weavego_invocation_failures_total",
		Help:      "Total intercepted invocations that returned an error.",
	}, labels))
	a.duration = a.registerHistogram(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: a.config.Namespace,
		Name:      "weavego_invocation_duration_seconds",
		Help:      "Duration of intercepted invocations.",
	}, labels))
	return nil
}

// registerCounter registers the collector, reusing an already registered
// collector from a previous instance of the same scope.
func (a *MetricsAspect) registerCounter(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := a.Registerer.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}

func (a *MetricsAspect) registerHistogram(h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := a.Registerer.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}
	return h
}

func (a *MetricsAspect) Around(pjp types.ProceedingJoinPoint, _ types.JoinPointMatch) (interface{}, error) {
	sig := pjp.Signature()
	labels := prometheus.Labels{"target": sig.TargetType, "method": sig.Method}
	a.invocations.With(labels).Inc()

	start := time.Now()
	result, err := pjp.Proceed()
	a.duration.With(labels).Observe(time.Since(start).Seconds())
	if err != nil {
		a.failures.With(labels).Inc()
	}
	return result, err
}
