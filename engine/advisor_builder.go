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

	"github.com/weavego/weavego/api/types"
)

// AdvisorBuilder scans the candidate components of one scope for aspect
// metadata and builds Advisors from them, memoizing the result per aspect
// name. Singleton-policy aspects are fully pre-resolved and their advisor
// lists cached; per-invocation aspects cache only the instance factory and
// re-resolve a fresh advisor list on every access.
//
// The scan runs at most once per builder lifetime: the aspect-name list is
// double-checked, first outside the build lock and again under it, so
// concurrent first callers neither duplicate work nor observe torn state.
// Once populated, the name list and cached advisor lists are immutable and
// read without synchronization.
//
// AdvisorBuilder 扫描一个作用域的候选组件以发现切面元数据并构建增强器，
// 结果按切面名称记忆化。单例策略切面完全预解析并缓存增强器列表；
// 按调用策略切面只缓存实例工厂，每次访问重新解析新的增强器列表。
// 扫描在构建器生命周期内至多执行一次：切面名称列表采用双重检查，
// 先在构建锁外检查，再在锁内复查，并发的首批调用者既不会重复工作也不会看到
// 撕裂状态。填充完成后名称列表与缓存的增强器列表不可变，读取无需同步。
type AdvisorBuilder struct {
	config   types.Config
	scope    string
	registry types.ComponentRegistry
	eligible func(name string) bool

	mu          sync.Mutex
	aspectNames atomic.Value // []string; absent until the first scan completes
	// advisorsCache caches resolved advisor lists of singleton-policy
	// aspects, keyed by aspect name.
	advisorsCache sync.Map
	// factoryCache caches the instance factories of per-invocation aspects,
	// keyed by aspect name.
	factoryCache sync.Map
	// pointcuts caches compiled pointcut programs, keyed by aspect name.
	// Pointcuts are immutable and shared across per-invocation re-resolutions.
	pointcuts sync.Map

	scanCount    int64
	resolvedOnce sync.Once
}

// NewAdvisorBuilder creates a builder for the given scope over the given
// component registry.
func NewAdvisorBuilder(config types.Config, scope string, registry types.ComponentRegistry) *AdvisorBuilder {
	return &AdvisorBuilder{
		config:   config,
		scope:    scope,
		registry: registry,
	}
}

// SetEligibility installs a hook that may exclude candidate components from
// the scan. It must be set before the first BuildAdvisors call.
func (b *AdvisorBuilder) SetEligibility(fn func(name string) bool) {
	b.eligible = fn
}

// HasPerInvocation reports whether the scope resolved any per-invocation
// aspects. Call sites use it to decide whether resolved advisor lists may be
// cached or must be re-derived per call.
func (b *AdvisorBuilder) HasPerInvocation() bool {
	has := false
	b.factoryCache.Range(func(_, _ interface{}) bool {
		has = true
		return false
	})
	return has
}

// ScanCount returns how many full scans have run. For a fixed scope this
// stays at 1 after the first resolution.
func (b *AdvisorBuilder) ScanCount() int64 {
	return atomic.LoadInt64(&b.scanCount)
}

// BuildAdvisors resolves the ordered advisor list of the scope.
// The result preserves the discovery order of aspect names as first
// computed; precedence sorting among advisors is a matcher-level concern.
// BuildAdvisors 解析作用域的有序增强器列表。结果保持首次计算时切面名称的发现顺序；
// 增强器之间的优先级排序是匹配层的事。
func (b *AdvisorBuilder) BuildAdvisors() ([]types.Advisor, error) {
	names, resolved := b.resolvedNames()
	if !resolved {
		b.mu.Lock()
		// re-check under the lock: another caller may have finished first
		names, resolved = b.resolvedNames()
		if !resolved {
			advisors, err := b.scanLocked()
			b.mu.Unlock()
			if err != nil {
				// no advisors for this run; the next call rescans
				return nil, err
			}
			b.notifyResolved()
			return advisors, nil
		}
		b.mu.Unlock()
	}

	if len(names) == 0 {
		return nil, nil
	}
	var advisors []types.Advisor
	for _, name := range names {
		if v, ok := b.advisorsCache.Load(name); ok {
			advisors = append(advisors, v.([]types.Advisor)...)
			continue
		}
		if f, ok := b.factoryCache.Load(name); ok {
			list, err := resolveFactoryAdvisors(f.(types.AspectInstanceFactory), b.pointcutOf(name))
			if err != nil {
				return nil, err
			}
			advisors = append(advisors, list...)
		}
	}
	return advisors, nil
}

// scanLocked enumerates all candidate components once, caches per-aspect
// state and records the discovered aspect names. Caller holds b.mu.
func (b *AdvisorBuilder) scanLocked() ([]types.Advisor, error) {
	atomic.AddInt64(&b.scanCount, 1)

	var advisors []types.Advisor
	aspectNames := make([]string, 0)
	for _, name := range b.registry.Names() {
		if !b.isEligible(name) {
			continue
		}
		def, ok := b.registry.Get(name)
		if !ok {
			continue
		}
		probe := def.Factory()
		aspect, isAspect := probe.(types.Aspect)
		if !isAspect {
			// candidate without aspect metadata
			continue
		}
		aspectNames = append(aspectNames, name)

		policy := def.Policy
		if policy == "" {
			policy = types.PolicySingleton
		}
		pointcut, err := b.compilePointcut(name, def)
		if err != nil {
			return nil, err
		}
		definition := types.AspectDefinition{Name: name, Policy: policy, Order: def.Order}

		if policy == types.PolicySingleton {
			if !def.Singleton {
				return nil, types.NewConfigurationError(name,
					"aspect instantiation model is singleton, but the backing component lifecycle is not singleton")
			}
			configuration := def.Configuration
			if configuration == nil {
				configuration = make(types.Configuration)
			}
			if err := aspect.Init(b.config, configuration); err != nil {
				return nil, err
			}
			list := buildAdvisors(definition, aspect, pointcut)
			b.advisorsCache.Store(name, list)
			advisors = append(advisors, list...)
		} else {
			if def.Singleton {
				return nil, types.NewConfigurationError(name,
					"backing component is a singleton, but aspect instantiation model is not singleton")
			}
			factory := &perInvocationInstanceFactory{definition: definition, config: b.config, component: def}
			b.factoryCache.Store(name, factory)
			list, err := resolveFactoryAdvisors(factory, pointcut)
			if err != nil {
				return nil, err
			}
			advisors = append(advisors, list...)
		}
	}

	// record the discovered names, even if empty, so future calls take the
	// fast path
	b.aspectNames.Store(aspectNames)
	return advisors, nil
}

// compilePointcut compiles the component's pointcut expression once and
// caches the immutable program for later re-resolutions. A nil result means
// the aspect decides its own pointcut (or matches everything).
func (b *AdvisorBuilder) compilePointcut(name string, def types.ComponentDefinition) (types.Pointcut, error) {
	if def.Expression == "" {
		return nil, nil
	}
	pc, err := NewExpressionPointcut(def.Expression, b.config.Properties)
	if err != nil {
		return nil, types.NewConfigurationError(name, err.Error())
	}
	b.pointcuts.Store(name, pc)
	return pc, nil
}

func (b *AdvisorBuilder) pointcutOf(name string) types.Pointcut {
	if v, ok := b.pointcuts.Load(name); ok {
		return v.(types.Pointcut)
	}
	return nil
}

func (b *AdvisorBuilder) resolvedNames() ([]string, bool) {
	v := b.aspectNames.Load()
	if v == nil {
		return nil, false
	}
	return v.([]string), true
}

func (b *AdvisorBuilder) isEligible(name string) bool {
	if b.eligible == nil {
		return true
	}
	return b.eligible(name)
}

// notifyResolved emits the component notification for the first successful
// advisor-cache population of the scope.
func (b *AdvisorBuilder) notifyResolved() {
	b.resolvedOnce.Do(func() {
		if b.config.OnComponentRegistered != nil {
			b.config.OnComponentRegistered(types.ComponentEvent{
				Scope: b.scope,
				Kind:  types.EventAdvisorsResolved,
			})
		}
	})
}
