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

// Package types defines the core contracts of the weavego interception engine:
// signatures, invocations, join points, pointcuts, advice, advisors and the
// engine configuration. Implementations live in the engine package.
//
// types 包定义 weavego 拦截引擎的核心契约：方法签名、调用、连接点、切入点、
// 增强动作、增强器以及引擎配置。具体实现位于 engine 包。
package types

import (
	"context"
)

// Configuration is the raw configuration of an aspect component,
// decoded into the component via mapstructure during initialization.
// Configuration 是切面组件的原始配置，在初始化期间通过 mapstructure 解码到组件。
type Configuration map[string]interface{}

// Signature identifies one interceptable method on a target type.
// It is the static part of a join point: chains are built and cached per Signature.
// Signature 标识目标类型上的一个可拦截方法。它是连接点的静态部分：
// 拦截链按 Signature 构建并缓存。
type Signature struct {
	// TargetType is the declared type name of the target, e.g. "AccountService".
	TargetType string `json:"targetType"`
	// Method is the method name, e.g. "Transfer".
	Method string `json:"method"`
	// ArgNames optionally names the method arguments so pointcut expressions
	// can bind them by name instead of by position.
	// ArgNames 可选地为方法参数命名，使切入点表达式可以按名称而不是位置绑定参数。
	ArgNames []string `json:"argNames,omitempty"`
}

// String returns "TargetType.Method".
func (s Signature) String() string {
	return s.TargetType + "." + s.Method
}

// MethodFunc is an invocable target method. The terminal position of an
// interception chain calls a MethodFunc.
// MethodFunc 是可调用的目标方法。拦截链的末端位置调用 MethodFunc。
type MethodFunc func(ctx context.Context, args ...interface{}) (interface{}, error)

// Interceptable is implemented by targets proxied under CapabilityInterface:
// they publish an explicit method table instead of being dispatched
// dynamically.
// Interceptable 由在 CapabilityInterface 能力下被代理的目标实现：
// 它们发布显式方法表而不是被动态分发。
type Interceptable interface {
	// Methods returns the interceptable methods keyed by method name.
	Methods() map[string]MethodFunc
}

// ArgNamer optionally names target method arguments so pointcut expressions
// can bind them by name.
type ArgNamer interface {
	// ArgNames returns the argument names of the given method.
	ArgNames(method string) []string
}

// AdviceKind enumerates the five advice kinds.
// AdviceKind 枚举五种增强类型。
type AdviceKind int

const (
	// KindBefore runs before the target; an error short-circuits the chain.
	KindBefore AdviceKind = iota
	// KindAfterReturning runs after a successful call only.
	KindAfterReturning
	// KindAfterThrowing runs after a failed call only.
	KindAfterThrowing
	// KindAfter always runs, with finally semantics.
	KindAfter
	// KindAround fully wraps the call and owns its continuation.
	KindAround
)

// String returns the DSL name of the advice kind.
func (k AdviceKind) String() string {
	switch k {
	case KindBefore:
		return "before"
	case KindAfterReturning:
		return "afterReturning"
	case KindAfterThrowing:
		return "afterThrowing"
	case KindAfter:
		return "after"
	case KindAround:
		return "around"
	default:
		return "unknown"
	}
}

// InstantiationPolicy declares how aspect instances are obtained.
// InstantiationPolicy 声明切面实例的获取方式。
type InstantiationPolicy string

const (
	// PolicySingleton shares one aspect instance across all resolutions.
	// The backing component must itself have singleton lifecycle.
	// PolicySingleton 所有解析共享同一个切面实例。其背后的组件本身必须是单例生命周期。
	PolicySingleton InstantiationPolicy = "singleton"
	// PolicyPerInvocation yields a fresh aspect instance per resolution,
	// so advice closures are re-bound to the new instance each time.
	// PolicyPerInvocation 每次解析产生一个新的切面实例，增强闭包每次都会重新绑定到新实例。
	PolicyPerInvocation InstantiationPolicy = "perInvocation"
)

// ProxyCapability is a closed, totally ordered set of interception-capability
// kinds. Higher values are strictly more expressive. The escalation registry
// only ever upgrades along this order, never downgrades.
// ProxyCapability 是封闭且全序的拦截能力种类集合。值越大表达能力越强。
// 升级注册表只会沿此顺序升级，绝不降级。
type ProxyCapability int

const (
	// CapabilityInterface intercepts only methods declared through an
	// explicit method table (interface-style stand-in).
	CapabilityInterface ProxyCapability = iota + 1
	// CapabilityDynamic intercepts every exported method of the concrete
	// target type via dynamic dispatch.
	CapabilityDynamic
)

// String returns the DSL name of the capability kind.
func (c ProxyCapability) String() string {
	switch c {
	case CapabilityInterface:
		return "interface"
	case CapabilityDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Valid reports whether c is a recognized capability kind.
func (c ProxyCapability) Valid() bool {
	return c == CapabilityInterface || c == CapabilityDynamic
}

// JoinPointMatch is the per-call binding of pointcut variables produced when
// a Pointcut matches a concrete invocation. Its lifetime is one call; it is
// never cached.
// JoinPointMatch 是切入点匹配具体调用时产生的每次调用的变量绑定。
// 生命周期为一次调用，绝不缓存。
type JoinPointMatch struct {
	// Signature is the matched method signature.
	Signature Signature
	// Vars holds the bound context variables: argument values keyed by
	// name (or "arg0".."argN"), plus "target" and "method".
	Vars map[string]interface{}
}

// JoinPoint is the read-only view of an in-flight invocation handed to
// before/after advice actions.
// JoinPoint 是传递给 before/after 增强动作的在途调用只读视图。
type JoinPoint interface {
	// Signature returns the intercepted method signature.
	Signature() Signature
	// Target returns the real target object.
	Target() interface{}
	// Arguments returns the current call arguments.
	Arguments() []interface{}
	// Context returns the call-scoped context.
	Context() context.Context
}

// ProceedingJoinPoint extends JoinPoint with explicit continuation for
// around advice. Constructing it advances nothing; each Proceed call
// re-executes the remainder of the chain from the adapter's bound position.
// Zero Proceed calls mean the target never runs for this invocation.
// ProceedingJoinPoint 在 JoinPoint 之上为 around 增强提供显式续接能力。
// 构造它不会推进任何东西；每次 Proceed 调用都从适配器绑定的位置重新执行链的剩余部分。
// 不调用 Proceed 意味着目标方法在本次调用中不会执行。
type ProceedingJoinPoint interface {
	JoinPoint
	// Proceed continues the chain, optionally replacing the arguments for
	// the remainder of this continuation. It returns whatever the rest of
	// the chain (ultimately the target method) produces.
	Proceed(args ...interface{}) (interface{}, error)
}

// Invocation is one in-flight call: target, arguments and context.
// It is exclusively owned by the call that created it and never shared
// across goroutines.
// Invocation 是一次在途调用：目标、参数和上下文。它由创建它的调用独占，绝不跨协程共享。
type Invocation interface {
	JoinPoint
}

// ProxyInvocation is the extended capability set the chain executor requires
// for proceed/around support. An Invocation lacking it is rejected with
// ErrNotProxyInvocation before any advice runs.
// ProxyInvocation 是链执行器为支持 proceed/around 所要求的扩展能力集。
// 缺少该能力的 Invocation 会在任何增强执行之前以 ErrNotProxyInvocation 被拒绝。
type ProxyInvocation interface {
	Invocation
	// ID returns the unique id of this invocation.
	ID() string
	// SetArguments replaces the call arguments in place.
	SetArguments(args []interface{})
	// Proceed advances the chain from the current position and returns the
	// outcome of the remainder.
	Proceed() (interface{}, error)
	// Clone returns an invocable copy sharing the chain but owning its own
	// position cursor, so around advice may proceed repeatedly.
	// Clone 返回一个可调用副本：共享链但拥有自己的位置游标，使 around 增强可以多次续接。
	Clone() ProxyInvocation
	// Proxy returns the interception stand-in this call came through, or nil.
	Proxy() interface{}
}

// Pointcut selects the calls an advice applies to. Matches is the static
// predicate evaluated once per chain build; Bind is the dynamic predicate
// evaluated per call, additionally producing the bound variables.
// Pointcuts are immutable and shared read-only by all call sites.
// Pointcut 选择增强适用的调用。Matches 是每次链构建时评估一次的静态谓词；
// Bind 是每次调用评估的动态谓词，并额外产生绑定变量。
// Pointcut 不可变，被所有调用点只读共享。
type Pointcut interface {
	// Matches reports whether this pointcut can apply to the signature.
	Matches(sig Signature) bool
	// Bind evaluates the pointcut against a live invocation. When it
	// matches, the returned JoinPointMatch carries the bound variables.
	Bind(inv Invocation) (JoinPointMatch, bool)
}

// Advice is one advice action. The five concrete function types below are
// closures captured at advisor-build time; the engine performs no per-call
// reflection to dispatch them.
// Advice 是一个增强动作。下面五个具体函数类型是在构建增强器时捕获的闭包；
// 引擎不做任何按调用的反射分发。
type Advice interface {
	Kind() AdviceKind
}

// BeforeAdvice runs before the target method. A non-nil error short-circuits
// the chain: nothing downstream, including the target, executes.
type BeforeAdvice func(jp JoinPoint, match JoinPointMatch) error

func (BeforeAdvice) Kind() AdviceKind { return KindBefore }

// AfterReturningAdvice runs only after the downstream chain returned
// successfully. A non-nil error replaces the successful outcome.
type AfterReturningAdvice func(jp JoinPoint, match JoinPointMatch, result interface{}) error

func (AfterReturningAdvice) Kind() AdviceKind { return KindAfterReturning }

// AfterThrowingAdvice runs only after the downstream chain failed. The
// returned error becomes the propagated outcome: return err unchanged to
// re-raise, return a different error to deliberately replace it, or return
// nil to deliberately recover the call.
// AfterThrowingAdvice 仅在下游链失败后执行。返回的 error 成为传播结果：
// 原样返回 err 表示重新抛出，返回其他 error 表示有意替换，返回 nil 表示有意恢复调用。
type AfterThrowingAdvice func(jp JoinPoint, match JoinPointMatch, err error) error

func (AfterThrowingAdvice) Kind() AdviceKind { return KindAfterThrowing }

// AfterAdvice always runs once the downstream chain finished, regardless of
// outcome (finally semantics). It observes but cannot alter the outcome.
type AfterAdvice func(jp JoinPoint, match JoinPointMatch, result interface{}, err error)

func (AfterAdvice) Kind() AdviceKind { return KindAfter }

// AroundAdvice fully wraps the call. It alone decides whether, when and how
// many times to continue the chain through the ProceedingJoinPoint, and its
// own return value becomes the call's result.
type AroundAdvice func(pjp ProceedingJoinPoint, match JoinPointMatch) (interface{}, error)

func (AroundAdvice) Kind() AdviceKind { return KindAround }

// Advisor binds one Pointcut to one Advice with a relative ordering key.
// Advisors are owned by the advisor cache once built and shared read-only by
// every call site that matches them. Lower Order means earlier, i.e. more
// outward in the chain.
// Advisor 将一个 Pointcut 与一个 Advice 按相对顺序键绑定。
// 构建后由增强器缓存拥有，被所有匹配的调用点只读共享。Order 越小越靠外层。
type Advisor struct {
	// AspectName is the name of the aspect component this advisor came from.
	AspectName string
	// Pointcut selects the calls this advisor applies to.
	Pointcut Pointcut
	// Advice is the bound advice action.
	Advice Advice
	// Order is the ordering key among advisors of the same scope.
	Order int
}
