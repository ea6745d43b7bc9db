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

// The interfaces below provide the AOP (Aspect Oriented Programming) surface
// of the engine. An aspect component declares cross-cutting behavior by
// implementing one or more of the typed advice interfaces; the advisor
// factory detects the implemented interfaces at resolution time and captures
// each advice method as a closure inside an Advisor. This keeps advice
// dispatch free of per-call reflection.
//
// 以下接口构成引擎的 AOP（面向切面编程）接入面。切面组件通过实现一个或多个
// 类型化增强接口来声明横切行为；增强器工厂在解析时探测已实现的接口，并把每个
// 增强方法捕获为 Advisor 内的闭包，使增强分发不依赖按调用的反射。

// Aspect is the base interface implemented by every aspect component.
// Aspect 是每个切面组件都要实现的基础接口。
type Aspect interface {
	// Type returns the unique component type key used by the registry and DSL.
	// Type 返回注册表和 DSL 使用的唯一组件类型键。
	Type() string
	// New returns a fresh instance of this aspect component.
	// New 返回该切面组件的新实例。
	New() Aspect
	// Order returns the relative ordering key; lower values run more outward.
	// Order 返回相对顺序键；值越小越靠外层执行。
	Order() int
	// Init configures the instance from its DSL configuration.
	// Init 使用其 DSL 配置初始化实例。
	Init(config Config, configuration Configuration) error
}

// PointcutAspect optionally narrows the calls an aspect applies to. Aspects
// without it (and without a DSL pointcut expression) apply to every call.
// PointcutAspect 可选地收窄切面适用的调用。未实现它（且 DSL 未配置切入点表达式）
// 的切面适用于所有调用。
type PointcutAspect interface {
	Aspect
	// PointCut returns the pointcut shared by all advisors of this aspect.
	PointCut() Pointcut
}

// BeforeAspect declares before advice.
// BeforeAspect 声明前置增强。
type BeforeAspect interface {
	Aspect
	// Before runs before the target method. A non-nil error short-circuits
	// the chain without continuing.
	Before(jp JoinPoint, match JoinPointMatch) error
}

// AfterReturningAspect declares advice that runs only on success.
// AfterReturningAspect 声明仅在成功返回后执行的增强。
type AfterReturningAspect interface {
	Aspect
	// AfterReturning observes the successful result. A non-nil error
	// replaces the successful outcome.
	AfterReturning(jp JoinPoint, match JoinPointMatch, result interface{}) error
}

// AfterThrowingAspect declares advice that runs only on failure.
// AfterThrowingAspect 声明仅在失败后执行的增强。
type AfterThrowingAspect interface {
	Aspect
	// AfterThrowing observes the error and returns the error to propagate:
	// err itself to re-raise, another error to replace, nil to recover.
	AfterThrowing(jp JoinPoint, match JoinPointMatch, err error) error
}

// AfterAspect declares finally advice that always runs.
// AfterAspect 声明总是执行的 finally 增强。
type AfterAspect interface {
	Aspect
	// After observes the outcome regardless of success or failure.
	After(jp JoinPoint, match JoinPointMatch, result interface{}, err error)
}

// AroundAspect declares around advice that fully wraps the call.
// AroundAspect 声明完整包裹调用的环绕增强。
type AroundAspect interface {
	Aspect
	// Around owns the continuation: it may proceed zero or more times and
	// its return value becomes the call's result.
	Around(pjp ProceedingJoinPoint, match JoinPointMatch) (interface{}, error)
}

// ProxyAware is implemented by targets that want the interception stand-in
// injected, so same-instance method-to-method calls can go back through the
// chain. Injection only happens when the scope's expose-active-invocation
// flag is set.
// ProxyAware 由希望注入拦截替身的目标实现，使同实例的方法间调用可以重新进入
// 拦截链。仅当作用域的 expose-active-invocation 标志开启时才会注入。
type ProxyAware interface {
	SetProxy(proxy interface{})
}

// AspectDefinition is the immutable identity of a discovered aspect: its
// name, declared instantiation policy and declared order. It is created when
// a candidate component is found to carry aspect metadata.
// AspectDefinition 是被发现切面的不可变标识：名称、声明的实例化策略与声明顺序。
// 当候选组件被发现携带切面元数据时创建。
type AspectDefinition struct {
	// Name is the aspect component name within its scope.
	Name string
	// Policy is the declared instantiation policy.
	Policy InstantiationPolicy
	// Order is the declared ordering key.
	Order int
}

// AspectInstanceFactory yields live aspect instances: always the same shared
// instance under the singleton policy, a fresh instance per request under
// the per-invocation policy.
// AspectInstanceFactory 产出活动切面实例：单例策略下总是同一个共享实例，
// 按调用策略下每次请求产出新实例。
type AspectInstanceFactory interface {
	// Definition returns the immutable definition of the backing aspect.
	Definition() AspectDefinition
	// GetInstance returns a live aspect instance per the declared policy.
	GetInstance() (Aspect, error)
}
