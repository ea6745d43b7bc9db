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

	"github.com/gofrs/uuid/v5"

	"github.com/weavego/weavego/api/types"
	"github.com/weavego/weavego/utils/str"
)

// proxyInvocation is the per-call state of one interception chain execution:
// the signature, the live arguments and a position cursor into the chain's
// interceptor list. It is exclusively owned by the call that created it, so
// the cursor needs no synchronization.
// proxyInvocation 是一次拦截链执行的每调用状态：签名、实时参数以及指向链拦截器
// 列表的位置游标。它由创建它的调用独占，游标无需同步。
type proxyInvocation struct {
	id     string
	ctx    context.Context
	sig    types.Signature
	target interface{}
	proxy  interface{}
	args   []interface{}

	interceptors []interceptor
	pos          int
	invoker      types.MethodFunc

	// jp is the lazily created proceeding join point of this invocation.
	jp *proceedingJoinPoint
}

var _ types.ProxyInvocation = (*proxyInvocation)(nil)

func newProxyInvocation(ctx context.Context, sig types.Signature, target, proxy interface{},
	args []interface{}, interceptors []interceptor, invoker types.MethodFunc) *proxyInvocation {
	var id string
	if u, err := uuid.NewV7(); err == nil {
		id = u.String()
	} else {
		id = str.RandomStr(16)
	}
	return &proxyInvocation{
		id:           id,
		ctx:          ctx,
		sig:          sig,
		target:       target,
		proxy:        proxy,
		args:         args,
		interceptors: interceptors,
		invoker:      invoker,
	}
}

func (inv *proxyInvocation) ID() string                 { return inv.id }
func (inv *proxyInvocation) Signature() types.Signature { return inv.sig }
func (inv *proxyInvocation) Target() interface{}        { return inv.target }
func (inv *proxyInvocation) Proxy() interface{}         { return inv.proxy }
func (inv *proxyInvocation) Arguments() []interface{}   { return inv.args }

func (inv *proxyInvocation) Context() context.Context {
	if inv.ctx == nil {
		return context.Background()
	}
	return inv.ctx
}

// SetArguments replaces the call arguments for the remainder of this
// invocation.
func (inv *proxyInvocation) SetArguments(args []interface{}) {
	inv.args = args
}

// Proceed dispatches the interceptor at the current position and advances the
// cursor. Past the last interceptor it calls the target method itself.
// Proceed 分发当前位置的拦截器并推进游标。越过最后一个拦截器后调用目标方法本身。
func (inv *proxyInvocation) Proceed() (interface{}, error) {
	if inv.pos >= len(inv.interceptors) {
		return inv.invoker(inv.Context(), inv.args...)
	}
	ic := inv.interceptors[inv.pos]
	inv.pos++
	return ic.invoke(inv)
}

// Clone returns a copy sharing the immutable chain but owning its own cursor
// and argument slice, so a continuation can re-execute the chain remainder
// without disturbing the original.
// Clone 返回共享不可变链但拥有自己游标与参数切片的副本，使续接可以重新执行链的
// 剩余部分而不影响原调用。
func (inv *proxyInvocation) Clone() types.ProxyInvocation {
	cp := *inv
	cp.args = make([]interface{}, len(inv.args))
	copy(cp.args, inv.args)
	cp.jp = nil
	return &cp
}

// joinPoint returns the proceeding join point of this invocation, creating it
// on first use. One invocation object has exactly one join point.
func (inv *proxyInvocation) joinPoint() *proceedingJoinPoint {
	if inv.jp == nil {
		inv.jp = &proceedingJoinPoint{inv: inv}
	}
	return inv.jp
}

type invocationCtxKey struct{}

// WithInvocation binds the active invocation to the context so nested calls
// on the same goroutine can re-enter the interception machinery.
func WithInvocation(ctx context.Context, inv types.ProxyInvocation) context.Context {
	return context.WithValue(ctx, invocationCtxKey{}, inv)
}

// InvocationFromContext returns the active invocation bound to the context,
// if any. It is only available when the scope exposes the active invocation.
// InvocationFromContext 返回绑定到上下文的活动调用（如有）。
// 仅当作用域开启了暴露活动调用时可用。
func InvocationFromContext(ctx context.Context) (types.ProxyInvocation, bool) {
	inv, ok := ctx.Value(invocationCtxKey{}).(types.ProxyInvocation)
	return inv, ok
}
