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

package engine

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weavego/weavego/api/types"
)

// countingAspect counts constructions and initializations.
type countingAspect struct {
	constructed *int32
	initialized *int32
	order       int
}

func (a *countingAspect) Type() string { return "counting" }
func (a *countingAspect) New() types.Aspect {
	return &countingAspect{constructed: a.constructed, initialized: a.initialized, order: a.order}
}
func (a *countingAspect) Order() int { return a.order }
func (a *countingAspect) Init(types.Config, types.Configuration) error {
	if a.initialized != nil {
		atomic.AddInt32(a.initialized, 1)
	}
	return nil
}
func (a *countingAspect) Before(types.JoinPoint, types.JoinPointMatch) error { return nil }

var _ types.BeforeAspect = (*countingAspect)(nil)

func newCountingDef(name string, singleton bool, policy types.InstantiationPolicy,
	constructed, initialized *int32) types.ComponentDefinition {
	return types.ComponentDefinition{
		Name:      name,
		Singleton: singleton,
		Policy:    policy,
		Factory: func() interface{} {
			if constructed != nil {
				atomic.AddInt32(constructed, 1)
			}
			return &countingAspect{constructed: constructed, initialized: initialized}
		},
	}
}

func TestBuildAdvisorsScanOnce(t *testing.T) {
	registry := NewScopeRegistry()
	assert.Nil(t, registry.Register(newCountingDef("audit", true, "", nil, nil)))
	// a component without aspect metadata is skipped, not an error
	assert.Nil(t, registry.Register(types.ComponentDefinition{
		Name:    "plain",
		Factory: func() interface{} { return "not an aspect" },
	}))

	b := NewAdvisorBuilder(types.NewConfig(), "orders", registry)
	advisors, err := b.BuildAdvisors()
	assert.Nil(t, err)
	assert.Equal(t, 1, len(advisors))
	assert.Equal(t, "audit", advisors[0].AspectName)

	again, err := b.BuildAdvisors()
	assert.Nil(t, err)
	assert.Equal(t, 1, len(again))
	assert.Equal(t, int64(1), b.ScanCount())
}

func TestBuildAdvisorsSingletonInitOnce(t *testing.T) {
	var constructed, initialized int32
	registry := NewScopeRegistry()
	assert.Nil(t, registry.Register(newCountingDef("audit", true, types.PolicySingleton, &constructed, &initialized)))

	b := NewAdvisorBuilder(types.NewConfig(), "orders", registry)
	for i := 0; i < 5; i++ {
		_, err := b.BuildAdvisors()
		assert.Nil(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&constructed))
	assert.Equal(t, int32(1), atomic.LoadInt32(&initialized))
}

func TestBuildAdvisorsPerInvocationFreshInstances(t *testing.T) {
	var constructed, initialized int32
	registry := NewScopeRegistry()
	assert.Nil(t, registry.Register(newCountingDef("audit", false, types.PolicyPerInvocation, &constructed, &initialized)))

	b := NewAdvisorBuilder(types.NewConfig(), "orders", registry)
	_, err := b.BuildAdvisors()
	assert.Nil(t, err)
	_, err = b.BuildAdvisors()
	assert.Nil(t, err)

	assert.True(t, b.HasPerInvocation())
	assert.Equal(t, int64(1), b.ScanCount())
	// the scan probes once, then each resolution constructs and initializes
	// its own instance
	assert.Equal(t, int32(3), atomic.LoadInt32(&constructed))
	assert.Equal(t, int32(2), atomic.LoadInt32(&initialized))
}

func TestBuildAdvisorsPolicyMismatch(t *testing.T) {
	t.Run("singletonPolicyOnPrototype", func(t *testing.T) {
		registry := NewScopeRegistry()
		assert.Nil(t, registry.Register(newCountingDef("audit", false, types.PolicySingleton, nil, nil)))
		b := NewAdvisorBuilder(types.NewConfig(), "orders", registry)
		_, err := b.BuildAdvisors()
		assert.NotNil(t, err)
		assert.True(t, types.IsConfigurationError(err))
	})

	t.Run("perInvocationPolicyOnSingleton", func(t *testing.T) {
		registry := NewScopeRegistry()
		assert.Nil(t, registry.Register(newCountingDef("audit", true, types.PolicyPerInvocation, nil, nil)))
		b := NewAdvisorBuilder(types.NewConfig(), "orders", registry)
		_, err := b.BuildAdvisors()
		assert.NotNil(t, err)
		assert.True(t, types.IsConfigurationError(err))
	})
}

func TestBuildAdvisorsInvalidPointcut(t *testing.T) {
	registry := NewScopeRegistry()
	def := newCountingDef("audit", true, "", nil, nil)
	def.Expression = "method ==" // truncated expression
	assert.Nil(t, registry.Register(def))

	b := NewAdvisorBuilder(types.NewConfig(), "orders", registry)
	_, err := b.BuildAdvisors()
	assert.NotNil(t, err)
	assert.True(t, types.IsConfigurationError(err))
}

func TestBuildAdvisorsEmptyScope(t *testing.T) {
	b := NewAdvisorBuilder(types.NewConfig(), "orders", NewScopeRegistry())
	advisors, err := b.BuildAdvisors()
	assert.Nil(t, err)
	assert.Nil(t, advisors)

	// the empty result is recorded, not rescanned, even under load
	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := b.BuildAdvisors()
			assert.Nil(t, err)
			assert.Nil(t, out)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), b.ScanCount())
}

func TestBuildAdvisorsEligibility(t *testing.T) {
	registry := NewScopeRegistry()
	assert.Nil(t, registry.Register(newCountingDef("audit", true, "", nil, nil)))
	assert.Nil(t, registry.Register(newCountingDef("excluded", true, "", nil, nil)))

	b := NewAdvisorBuilder(types.NewConfig(), "orders", registry)
	b.SetEligibility(func(name string) bool { return name != "excluded" })

	advisors, err := b.BuildAdvisors()
	assert.Nil(t, err)
	assert.Equal(t, 1, len(advisors))
	assert.Equal(t, "audit", advisors[0].AspectName)
}

func TestBuildAdvisorsConcurrentFirstCall(t *testing.T) {
	var constructed int32
	registry := NewScopeRegistry()
	assert.Nil(t, registry.Register(newCountingDef("audit", true, "", &constructed, nil)))

	var resolvedEvents int32
	config := types.NewConfig(types.WithOnComponentRegistered(func(event types.ComponentEvent) {
		if event.Kind == types.EventAdvisorsResolved {
			atomic.AddInt32(&resolvedEvents, 1)
		}
	}))
	b := NewAdvisorBuilder(config, "orders", registry)

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			advisors, err := b.BuildAdvisors()
			assert.Nil(t, err)
			assert.Equal(t, 1, len(advisors))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), b.ScanCount())
	assert.Equal(t, int32(1), atomic.LoadInt32(&constructed))
	assert.Equal(t, int32(1), atomic.LoadInt32(&resolvedEvents))
}
