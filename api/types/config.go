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

package types

import (
	"time"
)

// Event kinds carried by ComponentEvent.
const (
	// EventCapabilityInstalled signals a net change to the installed
	// interception capability of a scope.
	EventCapabilityInstalled = "capabilityInstalled"
	// EventAdvisorsResolved signals the first successful advisor-cache
	// population of a scope.
	EventAdvisorsResolved = "advisorsResolved"
)

// ComponentEvent is the outbound "component registered/updated" notification.
// It is emitted exactly once per net change, carrying the scope identity, and
// consumed by an external listener; the engine does not process it further.
// ComponentEvent 是对外的“组件注册/更新”通知。每次净变更恰好发出一次，
// 携带作用域标识，由外部监听器消费；引擎自身不再处理。
type ComponentEvent struct {
	// Scope identifies the affected scope.
	Scope string
	// Kind is EventCapabilityInstalled or EventAdvisorsResolved.
	Kind string
	// Capability is the capability installed after the change, if any.
	Capability ProxyCapability
	// ExposeInvocation reports the state of the self-re-entrance flag.
	ExposeInvocation bool
}

// ComponentDefinition describes one candidate component of a scope. The
// advisor cache scans these to discover aspect metadata; components whose
// factory does not produce an Aspect are skipped.
// ComponentDefinition 描述作用域中的一个候选组件。增强器缓存扫描它们以发现
// 切面元数据；工厂不产出 Aspect 的组件会被跳过。
type ComponentDefinition struct {
	// Name is the unique component name within the scope.
	Name string
	// Singleton declares the lifecycle of the backing component.
	Singleton bool
	// Policy is the declared aspect instantiation policy. Empty defaults to
	// PolicySingleton.
	Policy InstantiationPolicy
	// Factory constructs a component instance.
	Factory func() interface{}
	// Expression is the optional pointcut expression shared by all advisors
	// of this aspect. Empty means match every call.
	Expression string
	// Order overrides the aspect instance's declared order when non-zero.
	Order int
	// Configuration is decoded into each new aspect instance at Init time.
	Configuration Configuration
}

// ComponentRegistry is the component bookkeeping of one scope: named
// definitions in registration order. It is the scan source of the advisor
// cache.
// ComponentRegistry 是一个作用域的组件登记：按注册顺序的命名定义集合，
// 是增强器缓存的扫描来源。
type ComponentRegistry interface {
	// Register adds a component definition. Duplicate names fail.
	Register(def ComponentDefinition) error
	// Unregister removes a component definition by name.
	Unregister(name string) error
	// Names returns all component names in registration order.
	Names() []string
	// Get returns the definition registered under name.
	Get(name string) (ComponentDefinition, bool)
}

// AspectRegistry registers aspect component prototypes by type key, so the
// DSL can refer to them. The default registry lives in the root package and
// carries the built-in advice components.
// AspectRegistry 按类型键注册切面组件原型，供 DSL 引用。
// 默认注册器位于根包，并携带内置增强组件。
type AspectRegistry interface {
	// Register adds an aspect component prototype. Duplicate types fail.
	Register(aspect Aspect) error
	// Unregister removes an aspect component prototype by type key.
	Unregister(typeName string) error
	// NewAspect returns a fresh instance of the registered type.
	NewAspect(typeName string) (Aspect, error)
}

// Parser decodes and encodes aspect-scope DSL documents.
type Parser interface {
	// DecodeScope parses a scope DSL document.
	DecodeScope(dsl []byte) (*ScopeDSL, error)
	// EncodeScope serializes a scope definition back to DSL form.
	EncodeScope(def interface{}) ([]byte, error)
}

// Metadata holds global key/value properties.
type Metadata map[string]string

// NewMetadata creates an empty Metadata.
func NewMetadata() Metadata {
	return make(Metadata)
}

// PutValue sets a property value.
func (m Metadata) PutValue(key, value string) {
	if key != "" {
		m[key] = value
	}
}

// GetValue returns a property value.
func (m Metadata) GetValue(key string) string {
	return m[key]
}

// Values returns the underlying map.
func (m Metadata) Values() map[string]string {
	return m
}

// Config defines the configuration for the interception engine.
type Config struct {
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger Logger
	// OnComponentRegistered is the outbound notification callback; see
	// ComponentEvent. Nil disables notifications.
	OnComponentRegistered func(event ComponentEvent)
	// Parser is the scope DSL parser, defaulting to the engine's JSON parser.
	Parser Parser
	// AspectRegistry resolves DSL aspect types, defaulting to the root
	// package registry.
	AspectRegistry AspectRegistry
	// ScriptMaxExecutionTime limits script-defined advice bodies,
	// defaulting to 2000 milliseconds.
	ScriptMaxExecutionTime time.Duration
	// Properties are global properties in key-value format, visible to
	// pointcut expressions as `global.propertyKey`.
	Properties Metadata
	// Udf registers custom Golang functions callable from script-defined
	// advice bodies.
	Udf map[string]interface{}
}

// RegisterUdf registers a custom function for script advice.
func (c *Config) RegisterUdf(name string, value interface{}) {
	if c.Udf == nil {
		c.Udf = make(map[string]interface{})
	}
	c.Udf[name] = value
}

// NewConfig creates a new Config with default values and applies the
// provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		ScriptMaxExecutionTime: time.Millisecond * 2000,
		Logger:                 DefaultLogger(),
		Properties:             NewMetadata(),
	}
	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
