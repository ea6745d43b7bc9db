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

// Package engine implements the weavego interception engine: capability
// escalation, component registration, advisor resolution and chain execution
// for one aspect scope.
// engine 包实现 weavego 拦截引擎：单个切面作用域的能力升级、组件注册、
// 增强器解析与链执行。
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/weavego/weavego/api/types"
)

// AspectEngine manages one aspect scope: its DSL definition, the installed
// interception capability, the component registry and the advisor cache. It
// is the factory of proxies for that scope.
// AspectEngine 管理一个切面作用域：DSL 定义、已安装的拦截能力、组件注册表与
// 增强器缓存。它是该作用域代理的工厂。
type AspectEngine struct {
	id           string
	config       types.Config
	def          *types.ScopeDSL
	capabilities *CapabilityRegistry
	installed    *Installed

	mu       sync.RWMutex
	registry *ScopeRegistry
	builder  *AdvisorBuilder
	stopped  bool
}

// AspectEngineOption is a functional option reconfiguring a new engine.
type AspectEngineOption func(*AspectEngine) error

// WithConfig sets the engine configuration.
func WithConfig(config types.Config) AspectEngineOption {
	return func(e *AspectEngine) error {
		e.config = config
		return nil
	}
}

// WithDefaultAspectRegistry sets the aspect registry only when the
// configuration left it unset. The root package appends it so explicit
// WithConfig registries always win.
func WithDefaultAspectRegistry(registry types.AspectRegistry) AspectEngineOption {
	return func(e *AspectEngine) error {
		if e.config.AspectRegistry == nil {
			e.config.AspectRegistry = registry
		}
		return nil
	}
}

// WithCapabilityRegistry shares an existing capability registry across
// engines, so escalations from several scopes land in one place.
func WithCapabilityRegistry(registry *CapabilityRegistry) AspectEngineOption {
	return func(e *AspectEngine) error {
		e.capabilities = registry
		return nil
	}
}

// NewAspectEngine creates an engine from a scope DSL document. The id
// argument wins over the DSL scope id; an empty id falls back to the DSL.
// NewAspectEngine 从作用域 DSL 文档创建引擎。id 参数优先于 DSL 作用域 id；
// id 为空时回退到 DSL。
func NewAspectEngine(id string, dsl []byte, opts ...AspectEngineOption) (*AspectEngine, error) {
	e := &AspectEngine{
		id:       id,
		config:   types.NewConfig(),
		registry: NewScopeRegistry(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.config.Parser == nil {
		e.config.Parser = &JsonParser{}
	}
	if e.capabilities == nil {
		e.capabilities = NewCapabilityRegistry(e.config)
	}

	if len(dsl) > 0 {
		def, err := e.config.Parser.DecodeScope(dsl)
		if err != nil {
			return nil, fmt.Errorf("decode scope dsl: %w", err)
		}
		e.def = def
	} else {
		e.def = &types.ScopeDSL{}
	}
	if e.id == "" {
		e.id = e.def.AspectScope.Id
	}
	if e.id == "" {
		return nil, errors.New("the aspect scope id can not be empty")
	}

	e.installCapability()
	if err := e.registerDslAspects(); err != nil {
		return nil, err
	}
	e.builder = NewAdvisorBuilder(e.config, e.id, e.registry)
	return e, nil
}

// Id returns the scope identity of this engine.
func (e *AspectEngine) Id() string { return e.id }

// Definition returns the parsed scope DSL document.
func (e *AspectEngine) Definition() *types.ScopeDSL { return e.def }

// Config returns the engine configuration.
func (e *AspectEngine) Config() types.Config { return e.config }

// Capabilities returns the capability registry this engine escalates in.
func (e *AspectEngine) Capabilities() *CapabilityRegistry { return e.capabilities }

// Installed returns the registration slot of this scope's capability.
func (e *AspectEngine) Installed() *Installed { return e.installed }

// installCapability registers the baseline capability of the scope and
// applies the DSL escalation flags.
func (e *AspectEngine) installCapability() {
	e.installed = e.capabilities.Request(e.id, types.CapabilityInterface)
	if e.def.AspectScope.ForceFullCapability {
		e.installed = e.capabilities.ForceFullCapability(e.id)
	}
	if e.def.AspectScope.ExposeActiveInvocation {
		e.capabilities.ExposeActiveInvocation(e.id)
	}
}

// registerDslAspects turns every DSL aspect declaration into a component
// definition backed by the aspect type registry. Unknown types fail fast at
// engine construction, not at first resolution.
// registerDslAspects 把每个 DSL 切面声明转为由切面类型注册器支撑的组件定义。
// 未知类型在引擎构造时立即失败，而不是首次解析时。
func (e *AspectEngine) registerDslAspects() error {
	if len(e.def.Aspects) == 0 {
		return nil
	}
	aspectRegistry := e.config.AspectRegistry
	if aspectRegistry == nil {
		return errors.New("the dsl declares aspects but no aspect registry is configured")
	}
	for _, item := range e.def.Aspects {
		item := item
		// validate the type eagerly
		if _, err := aspectRegistry.NewAspect(item.Type); err != nil {
			return types.NewConfigurationError(item.Name, err.Error())
		}
		singleton := item.Lifecycle != types.LifecyclePrototype
		def := types.ComponentDefinition{
			Name:          item.Name,
			Singleton:     singleton,
			Policy:        item.Instantiation,
			Expression:    item.Pointcut,
			Order:         item.Order,
			Configuration: item.Configuration,
			Factory: func() interface{} {
				aspect, err := aspectRegistry.NewAspect(item.Type)
				if err != nil {
					return nil
				}
				return aspect
			},
		}
		if err := e.registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterComponent adds a candidate component to the scope. Components
// registered after the first advisor resolution are not visible until Reload.
// RegisterComponent 向作用域添加候选组件。首次增强器解析之后注册的组件在
// Reload 之前不可见。
func (e *AspectEngine) RegisterComponent(def types.ComponentDefinition) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.stopped {
		return errors.New("the aspect engine is stopped")
	}
	return e.registry.Register(def)
}

// ResolveAdvisors resolves the ordered advisor list of the scope through the
// advisor cache.
func (e *AspectEngine) ResolveAdvisors() ([]types.Advisor, error) {
	e.mu.RLock()
	builder := e.builder
	e.mu.RUnlock()
	return builder.BuildAdvisors()
}

// AdvisorBuilder returns the advisor cache of the scope.
func (e *AspectEngine) AdvisorBuilder() *AdvisorBuilder {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.builder
}

// NewProxy wraps a target object with the interception capability installed
// for this scope.
// NewProxy 用本作用域已安装的拦截能力包装目标对象。
func (e *AspectEngine) NewProxy(target interface{}) (*Proxy, error) {
	e.mu.RLock()
	builder := e.builder
	stopped := e.stopped
	e.mu.RUnlock()
	if stopped {
		return nil, errors.New("the aspect engine is stopped")
	}
	return NewProxy(e.config, e.id, target,
		e.installed.Capability(), e.installed.ExposeInvocation(), builder)
}

// Reload replaces the scope DSL document and resets the advisor cache.
// Proxies created before Reload keep the old resolution; create new proxies
// to pick up the reloaded scope.
// Reload 替换作用域 DSL 文档并重置增强器缓存。Reload 之前创建的代理保持旧的
// 解析结果；需要创建新代理以使用重载后的作用域。
func (e *AspectEngine) Reload(dsl []byte) error {
	def, err := e.config.Parser.DecodeScope(dsl)
	if err != nil {
		return fmt.Errorf("decode scope dsl: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("the aspect engine is stopped")
	}
	e.def = def
	e.registry = NewScopeRegistry()
	e.installCapability()
	if err := e.registerDslAspects(); err != nil {
		return err
	}
	e.builder = NewAdvisorBuilder(e.config, e.id, e.registry)
	return nil
}

// Stop releases the engine. Stopped engines reject new registrations and
// proxies.
func (e *AspectEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
}
