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

// Package weavego is an aspect resolution and method-interception engine.
// It wraps target objects in interception stand-ins and runs every call
// through an ordered chain of advice resolved from aspect components:
// before, afterReturning, afterThrowing, after and around advice, selected
// per call by pointcut expressions.
//
// weavego 是切面解析与方法拦截引擎。它把目标对象包装为拦截替身，使每次调用都
// 经过由切面组件解析出的有序增强链：before、afterReturning、afterThrowing、
// after、around 五种增强，由切入点表达式按调用选择。
//
// Example:
//
//	scopeDsl := []byte(`{
//	  "aspectScope": {"id": "orders"},
//	  "aspects": [
//	    {"name": "audit", "type": "logging", "pointcut": "method == 'Place'"}
//	  ]
//	}`)
//	eng, err := weavego.New("orders", scopeDsl)
//	if err != nil {
//	    panic(err)
//	}
//	proxy, err := eng.NewProxy(&OrderService{})
//	if err != nil {
//	    panic(err)
//	}
//	result, err := proxy.Call(context.Background(), "Place", order)
package weavego

import (
	"fmt"
	"sync"

	"github.com/weavego/weavego/engine"
)

// DefaultPool is the default engine pool.
var DefaultPool = &Pool{}

// Pool keys aspect engines by scope id.
// Pool 按作用域 id 管理切面引擎。
type Pool struct {
	entries sync.Map
}

// New creates an aspect engine from a scope DSL document and registers it in
// the default pool. An engine already registered under the id is returned
// as-is.
// New 从作用域 DSL 文档创建切面引擎并注册到默认池。
// id 已注册的引擎原样返回。
func New(id string, dsl []byte, opts ...engine.AspectEngineOption) (*engine.AspectEngine, error) {
	return DefaultPool.New(id, dsl, opts...)
}

// Get returns the engine registered under id in the default pool.
func Get(id string) (*engine.AspectEngine, bool) {
	return DefaultPool.Get(id)
}

// Del stops and removes the engine registered under id in the default pool.
func Del(id string) {
	DefaultPool.Del(id)
}

// Stop stops and removes all engines in the default pool.
func Stop() {
	DefaultPool.Stop()
}

// New creates an aspect engine and registers it in the pool. The default
// aspect registry is injected when the options do not configure one.
func (p *Pool) New(id string, dsl []byte, opts ...engine.AspectEngineOption) (*engine.AspectEngine, error) {
	if v, ok := p.entries.Load(id); ok {
		return v.(*engine.AspectEngine), nil
	}
	// the default registry applies last, only when still unset
	opts = append(opts, engine.WithDefaultAspectRegistry(Registry))
	e, err := engine.NewAspectEngine(id, dsl, opts...)
	if err != nil {
		return nil, err
	}
	actual, loaded := p.entries.LoadOrStore(e.Id(), e)
	if loaded {
		e.Stop()
		return actual.(*engine.AspectEngine), nil
	}
	return e, nil
}

// Get returns the engine registered under id.
func (p *Pool) Get(id string) (*engine.AspectEngine, bool) {
	v, ok := p.entries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*engine.AspectEngine), true
}

// Del stops and removes the engine registered under id.
func (p *Pool) Del(id string) {
	if v, ok := p.entries.LoadAndDelete(id); ok {
		v.(*engine.AspectEngine).Stop()
	}
}

// Stop stops and removes all engines.
func (p *Pool) Stop() {
	p.entries.Range(func(key, value interface{}) bool {
		value.(*engine.AspectEngine).Stop()
		p.entries.Delete(key)
		return true
	})
}

// Range iterates over the registered engines.
func (p *Pool) Range(f func(id string, e *engine.AspectEngine) bool) {
	p.entries.Range(func(key, value interface{}) bool {
		return f(key.(string), value.(*engine.AspectEngine))
	})
}

// Reload reloads the scope DSL of the engine registered under id.
func (p *Pool) Reload(id string, dsl []byte) error {
	e, ok := p.Get(id)
	if !ok {
		return fmt.Errorf("aspect engine not found. id=%s", id)
	}
	return e.Reload(dsl)
}
