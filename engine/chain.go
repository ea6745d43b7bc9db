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
	"sort"

	"github.com/weavego/weavego/api/types"
)

// Chain is the interception chain of one method signature: the advisors whose
// pointcuts statically matched the signature, compiled into an interceptor
// list ordered outward-in. A Chain is immutable once built and shared by all
// calls to its signature; per-call state lives on the invocation.
//
// Chain 是一个方法签名的拦截链：切入点静态匹配该签名的增强器，编译为由外向内
// 排列的拦截器列表。Chain 构建后不可变，由该签名的所有调用共享；
// 每调用状态保存在 invocation 上。
type Chain struct {
	sig          types.Signature
	interceptors []interceptor
}

// NewChain compiles the statically matching advisors of a signature into a
// chain. Advisors are stably sorted by Order, lower first; equal-order
// advisors sort by advice-kind precedence (around outermost, then before,
// afterReturning, afterThrowing, after), and same-kind advisors keep their
// resolution order.
// NewChain 把静态匹配某签名的增强器编译为链。增强器按 Order 稳定排序，值小者在前；
// 同序增强器按增强类型优先级排序（around 最外层，依次 before、afterReturning、
// afterThrowing、after），同类型增强器保持解析顺序。
func NewChain(sig types.Signature, advisors []types.Advisor) *Chain {
	matched := make([]types.Advisor, 0, len(advisors))
	for _, adv := range advisors {
		if adv.Pointcut == nil || adv.Pointcut.Matches(sig) {
			matched = append(matched, adv)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Order != matched[j].Order {
			return matched[i].Order < matched[j].Order
		}
		return kindRank(matched[i].Advice) < kindRank(matched[j].Advice)
	})

	interceptors := make([]interceptor, 0, len(matched))
	for _, adv := range matched {
		if ic := newInterceptor(adv); ic != nil {
			interceptors = append(interceptors, ic)
		}
	}
	return &Chain{sig: sig, interceptors: interceptors}
}

// Signature returns the signature this chain was built for.
func (c *Chain) Signature() types.Signature { return c.sig }

// Len returns the number of interceptors in the chain.
func (c *Chain) Len() int { return len(c.interceptors) }

// Invoke runs the invocation through the chain. The invocation must carry
// proceed support; anything else is rejected before any advice runs.
func (c *Chain) Invoke(inv types.Invocation) (interface{}, error) {
	pi, ok := inv.(types.ProxyInvocation)
	if !ok {
		return nil, types.ErrNotProxyInvocation
	}
	return pi.Proceed()
}

// interceptor is one chain position. invoke receives the live invocation and
// decides whether and how to continue it.
type interceptor interface {
	invoke(inv *proxyInvocation) (interface{}, error)
}

func newInterceptor(adv types.Advisor) interceptor {
	switch advice := adv.Advice.(type) {
	case types.BeforeAdvice:
		return &beforeInterceptor{pointcut: adv.Pointcut, action: advice}
	case types.AfterReturningAdvice:
		return &afterReturningInterceptor{pointcut: adv.Pointcut, action: advice}
	case types.AfterThrowingAdvice:
		return &afterThrowingInterceptor{pointcut: adv.Pointcut, action: advice}
	case types.AfterAdvice:
		return &afterInterceptor{pointcut: adv.Pointcut, action: advice}
	case types.AroundAdvice:
		return &aroundInterceptor{pointcut: adv.Pointcut, action: advice}
	default:
		return nil
	}
}

// kindRank is the equal-order nesting precedence of an advice kind: around
// advice wraps outermost so its continuation covers the sibling advice of the
// same advisor group.
func kindRank(advice types.Advice) int {
	switch advice.(type) {
	case types.AroundAdvice:
		return 0
	case types.BeforeAdvice:
		return 1
	case types.AfterReturningAdvice:
		return 2
	case types.AfterThrowingAdvice:
		return 3
	case types.AfterAdvice:
		return 4
	default:
		return 5
	}
}

// bind evaluates the dynamic pointcut phase. A nil pointcut matches
// everything with the standard variable bindings.
func bind(pc types.Pointcut, inv *proxyInvocation) (types.JoinPointMatch, bool) {
	if pc == nil {
		return PointcutTrue.Bind(inv)
	}
	return pc.Bind(inv)
}

// beforeInterceptor runs its action before continuing. A non-nil action error
// short-circuits: nothing downstream, including the target, executes.
type beforeInterceptor struct {
	pointcut types.Pointcut
	action   types.BeforeAdvice
}

func (ic *beforeInterceptor) invoke(inv *proxyInvocation) (interface{}, error) {
	match, ok := bind(ic.pointcut, inv)
	if !ok {
		return inv.Proceed()
	}
	if err := ic.action(inv, match); err != nil {
		return nil, err
	}
	return inv.Proceed()
}

// afterReturningInterceptor continues first and runs its action only on a
// successful outcome. A non-nil action error replaces the success.
type afterReturningInterceptor struct {
	pointcut types.Pointcut
	action   types.AfterReturningAdvice
}

func (ic *afterReturningInterceptor) invoke(inv *proxyInvocation) (interface{}, error) {
	result, err := inv.Proceed()
	if err != nil {
		return result, err
	}
	match, ok := bind(ic.pointcut, inv)
	if !ok {
		return result, nil
	}
	if aerr := ic.action(inv, match, result); aerr != nil {
		return nil, aerr
	}
	return result, nil
}

// afterThrowingInterceptor continues first and runs its action only on a
// failed outcome. The action's returned error becomes the propagated outcome:
// the same error re-raises, another error replaces, nil recovers the call.
type afterThrowingInterceptor struct {
	pointcut types.Pointcut
	action   types.AfterThrowingAdvice
}

func (ic *afterThrowingInterceptor) invoke(inv *proxyInvocation) (interface{}, error) {
	result, err := inv.Proceed()
	if err == nil {
		return result, nil
	}
	match, ok := bind(ic.pointcut, inv)
	if !ok {
		return result, err
	}
	if rerr := ic.action(inv, match, err); rerr != nil {
		return nil, rerr
	}
	// deliberately recovered
	return nil, nil
}

// afterInterceptor always runs its action once downstream finished, then
// returns the downstream outcome unchanged (finally semantics).
type afterInterceptor struct {
	pointcut types.Pointcut
	action   types.AfterAdvice
}

func (ic *afterInterceptor) invoke(inv *proxyInvocation) (interface{}, error) {
	result, err := inv.Proceed()
	if match, ok := bind(ic.pointcut, inv); ok {
		ic.action(inv, match, result, err)
	}
	return result, err
}

// aroundInterceptor hands the continuation to its action. The action alone
// decides whether, when and how many times the chain remainder runs, and its
// return value becomes the call's outcome.
// aroundInterceptor 把续接交给其动作。动作独自决定链剩余部分是否、何时以及
// 执行多少次，其返回值成为调用结果。
type aroundInterceptor struct {
	pointcut types.Pointcut
	action   types.AroundAdvice
}

func (ic *aroundInterceptor) invoke(inv *proxyInvocation) (interface{}, error) {
	match, ok := bind(ic.pointcut, inv)
	if !ok {
		return inv.Proceed()
	}
	return ic.action(inv.joinPoint(), match)
}
