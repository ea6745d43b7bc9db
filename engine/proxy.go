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
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/weavego/weavego/api/types"
)

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Proxy is the interception stand-in for one target object. Every call goes
// through the advisor chain of its method signature before reaching the
// target. Under CapabilityInterface only methods the target publishes through
// its method table are interceptable; under CapabilityDynamic every exported
// method of the concrete type is, dispatched via reflection.
//
// Proxy 是一个目标对象的拦截替身。每次调用先经过其方法签名的增强器链再到达目标。
// CapabilityInterface 能力下只有目标通过方法表发布的方法可被拦截；
// CapabilityDynamic 能力下具体类型的所有导出方法都可被拦截，经反射分发。
type Proxy struct {
	config     types.Config
	scope      string
	capability types.ProxyCapability
	expose     bool
	target     interface{}
	targetType string
	methods    map[string]types.MethodFunc
	rv         reflect.Value
	builder    *AdvisorBuilder

	mu     sync.RWMutex
	chains map[string]*Chain
}

// NewProxy wraps a target object. The capability decides the dispatch model;
// CapabilityInterface requires the target to implement types.Interceptable.
// When expose is set, the stand-in is injected into ProxyAware targets and the
// active invocation is bound to the call context.
func NewProxy(config types.Config, scope string, target interface{},
	capability types.ProxyCapability, expose bool, builder *AdvisorBuilder) (*Proxy, error) {
	if target == nil {
		return nil, fmt.Errorf("proxy target must not be nil")
	}
	if !capability.Valid() {
		return nil, fmt.Errorf("unknown proxy capability kind %d", capability)
	}

	rv := reflect.ValueOf(target)
	targetType := reflect.Indirect(rv).Type().Name()
	if targetType == "" {
		targetType = rv.Type().String()
	}

	p := &Proxy{
		config:     config,
		scope:      scope,
		capability: capability,
		expose:     expose,
		target:     target,
		targetType: targetType,
		rv:         rv,
		builder:    builder,
		chains:     make(map[string]*Chain),
	}
	if it, ok := target.(types.Interceptable); ok {
		p.methods = it.Methods()
	} else if capability == types.CapabilityInterface {
		return nil, fmt.Errorf("target %s does not publish a method table; interface capability cannot proxy it", targetType)
	}
	if expose {
		if aware, ok := target.(types.ProxyAware); ok {
			aware.SetProxy(p)
		}
	}
	return p, nil
}

// Target returns the real target object behind the stand-in.
func (p *Proxy) Target() interface{} { return p.target }

// TargetType returns the declared type name of the target.
func (p *Proxy) TargetType() string { return p.targetType }

// Capability returns the capability kind this proxy was created with.
func (p *Proxy) Capability() types.ProxyCapability { return p.capability }

// Call invokes a method through the interception chain of its signature.
// Call 通过方法签名对应的拦截链调用方法。
func (p *Proxy) Call(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	invoker, err := p.invoker(method)
	if err != nil {
		return nil, err
	}
	sig := p.signature(method)

	chain, err := p.chainFor(sig)
	if err != nil {
		return nil, err
	}

	inv := newProxyInvocation(ctx, sig, p.target, p, args, chain.interceptors, invoker)
	if p.expose {
		inv.ctx = WithInvocation(ctx, inv)
	}
	return chain.Invoke(inv)
}

func (p *Proxy) signature(method string) types.Signature {
	sig := types.Signature{TargetType: p.targetType, Method: method}
	if namer, ok := p.target.(types.ArgNamer); ok {
		sig.ArgNames = namer.ArgNames(method)
	}
	return sig
}

// chainFor returns the interception chain of a signature. Chains are cached
// per method while the scope holds only singleton aspects; a scope with
// per-invocation aspects rebuilds the chain each call so advice closures bind
// to fresh aspect instances.
// chainFor 返回签名的拦截链。作用域只含单例切面时按方法缓存链；
// 含按调用切面的作用域每次调用重建链，使增强闭包绑定到新的切面实例。
func (p *Proxy) chainFor(sig types.Signature) (*Chain, error) {
	key := sig.Method
	p.mu.RLock()
	chain, ok := p.chains[key]
	p.mu.RUnlock()
	if ok {
		return chain, nil
	}

	advisors, err := p.builder.BuildAdvisors()
	if err != nil {
		return nil, err
	}
	chain = NewChain(sig, advisors)
	if !p.builder.HasPerInvocation() {
		p.mu.Lock()
		if cached, ok := p.chains[key]; ok {
			chain = cached
		} else {
			p.chains[key] = chain
		}
		p.mu.Unlock()
	}
	return chain, nil
}

// invoker resolves the terminal target-method function. The published method
// table wins when present; dynamic capability falls back to reflection over
// the concrete type's exported methods.
func (p *Proxy) invoker(method string) (types.MethodFunc, error) {
	if fn, ok := p.methods[method]; ok {
		return fn, nil
	}
	if p.capability != types.CapabilityDynamic {
		return nil, fmt.Errorf("method %s.%s is not interceptable under %s capability",
			p.targetType, method, p.capability)
	}
	m := p.rv.MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("method %s.%s not found", p.targetType, method)
	}
	return reflectInvoker(p.targetType, method, m), nil
}

// reflectInvoker wraps a reflected method as a MethodFunc. A leading
// context.Context parameter receives the call context; remaining parameters
// map positionally, converting assignable values. Outputs follow the usual Go
// shapes: an optional result value plus an optional trailing error.
// reflectInvoker 把反射方法包装为 MethodFunc。首个 context.Context 参数接收调用
// 上下文，其余参数按位置映射并转换可赋值的值。输出遵循常见的 Go 形态：
// 可选的结果值加可选的末尾 error。
func reflectInvoker(targetType, method string, m reflect.Value) types.MethodFunc {
	mt := m.Type()
	return func(ctx context.Context, args ...interface{}) (interface{}, error) {
		in := make([]reflect.Value, 0, mt.NumIn())
		ai := 0
		for i := 0; i < mt.NumIn(); i++ {
			pt := mt.In(i)
			if i == 0 && pt == ctxType {
				in = append(in, reflect.ValueOf(ctx))
				continue
			}
			if ai >= len(args) {
				return nil, fmt.Errorf("method %s.%s expects %d arguments, got %d",
					targetType, method, mt.NumIn(), len(args))
			}
			arg := args[ai]
			ai++
			if arg == nil {
				in = append(in, reflect.Zero(pt))
				continue
			}
			av := reflect.ValueOf(arg)
			if !av.Type().AssignableTo(pt) {
				if !av.Type().ConvertibleTo(pt) {
					return nil, fmt.Errorf("method %s.%s argument %d: cannot use %T as %s",
						targetType, method, ai-1, arg, pt)
				}
				av = av.Convert(pt)
			}
			in = append(in, av)
		}

		out := m.Call(in)
		var result interface{}
		var err error
		for _, ov := range out {
			if ov.Type().Implements(errorType) {
				if !ov.IsNil() {
					err = ov.Interface().(error)
				}
				continue
			}
			if result == nil {
				result = ov.Interface()
			}
		}
		return result, err
	}
}
