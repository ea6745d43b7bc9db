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

	"github.com/weavego/weavego/api/types"
)

// proceedingJoinPoint adapts an invocation into the continuation handle
// handed to around advice. The adapter freezes the chain position it was
// created at: every Proceed call clones the underlying invocation, so the
// chain remainder past that position re-executes in full, once per call.
// Proceeding zero times means the target never runs.
//
// proceedingJoinPoint 把调用适配为交给 around 增强的续接句柄。适配器冻结其创建
// 时的链位置：每次 Proceed 调用都克隆底层调用，使该位置之后的链剩余部分完整
// 重新执行，每次调用一遍。从不 Proceed 意味着目标方法不会执行。
type proceedingJoinPoint struct {
	inv *proxyInvocation
}

var _ types.ProceedingJoinPoint = (*proceedingJoinPoint)(nil)

func (p *proceedingJoinPoint) Signature() types.Signature { return p.inv.Signature() }
func (p *proceedingJoinPoint) Target() interface{}        { return p.inv.Target() }
func (p *proceedingJoinPoint) Arguments() []interface{}   { return p.inv.Arguments() }
func (p *proceedingJoinPoint) Context() context.Context   { return p.inv.Context() }

// Proceed continues the chain from the bound position. Passing arguments
// replaces the call arguments for this continuation only; the original
// invocation keeps its own argument slice.
func (p *proceedingJoinPoint) Proceed(args ...interface{}) (interface{}, error) {
	clone := p.inv.Clone()
	if len(args) > 0 {
		clone.SetArguments(args)
	}
	return clone.Proceed()
}
