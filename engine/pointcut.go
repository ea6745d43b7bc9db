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
	"fmt"

	"github.com/weavego/weavego/api/types"
	"github.com/weavego/weavego/utils/el"
)

// PointcutTrue matches every call and binds the standard variables.
// PointcutTrue 匹配所有调用并绑定标准变量。
var PointcutTrue types.Pointcut = truePointcut{}

type truePointcut struct{}

func (truePointcut) Matches(types.Signature) bool { return true }

func (truePointcut) Bind(inv types.Invocation) (types.JoinPointMatch, bool) {
	return types.JoinPointMatch{Signature: inv.Signature(), Vars: bindVars(inv, nil)}, true
}

// FuncPointcut wraps a static predicate over signatures. The dynamic phase
// always matches once the static predicate accepted the signature.
type FuncPointcut func(sig types.Signature) bool

func (f FuncPointcut) Matches(sig types.Signature) bool { return f(sig) }

func (f FuncPointcut) Bind(inv types.Invocation) (types.JoinPointMatch, bool) {
	if !f(inv.Signature()) {
		return types.JoinPointMatch{}, false
	}
	return types.JoinPointMatch{Signature: inv.Signature(), Vars: bindVars(inv, nil)}, true
}

// ExpressionPointcut selects calls with a compiled expression and binds the
// expression environment as the join-point variables. The program is
// compiled once and shared read-only; evaluation is pure.
//
// The environment contains `method`, `target`, `args` (positional), each
// named argument when the target names its arguments, and `global` with the
// engine properties.
//
// ExpressionPointcut 用编译后的表达式选择调用，并把表达式环境作为连接点变量绑定。
// 程序只编译一次并只读共享，求值是纯函数。
// 环境包含 method、target、args（按位置）、目标命名参数（如有）以及 global 属性。
type ExpressionPointcut struct {
	program    *el.Program
	properties map[string]string
	// static is true when the expression only references signature-level
	// identifiers, so it can be fully decided at chain-build time.
	static bool
}

var _ types.Pointcut = (*ExpressionPointcut)(nil)

// staticIdentifiers are the identifiers available at chain-build time.
var staticIdentifiers = map[string]bool{
	"method": true,
	"target": true,
	"global": true,
}

// NewExpressionPointcut compiles a pointcut expression. Compilation failures
// are configuration errors.
func NewExpressionPointcut(expression string, properties types.Metadata) (*ExpressionPointcut, error) {
	program, err := el.Compile(expression)
	if err != nil {
		return nil, types.NewConfigurationError("", fmt.Sprintf("invalid pointcut expression: %s", err))
	}
	static := true
	identifiers, err := el.Identifiers(expression)
	if err != nil {
		static = false
	} else {
		for _, name := range identifiers {
			if !staticIdentifiers[name] {
				static = false
				break
			}
		}
	}
	return &ExpressionPointcut{program: program, properties: properties.Values(), static: static}, nil
}

// Matches statically probes the expression with the signature environment
// only. Expressions referencing per-call values (arguments) cannot be decided
// here and defer to the dynamic phase, as do evaluation failures.
// Matches 仅用签名环境静态探测表达式。引用每次调用值（参数）的表达式此处无法判定，
// 推迟到动态阶段，求值失败亦然。
func (p *ExpressionPointcut) Matches(sig types.Signature) bool {
	if !p.static {
		return true
	}
	env := map[string]interface{}{
		"method": sig.Method,
		"target": sig.TargetType,
		"global": p.properties,
	}
	out, err := p.program.Execute(env)
	if err != nil {
		return true
	}
	if b, ok := out.(bool); ok {
		return b
	}
	return true
}

// Bind evaluates the expression against the live invocation. Evaluation
// failures are treated as no-match.
func (p *ExpressionPointcut) Bind(inv types.Invocation) (types.JoinPointMatch, bool) {
	env := bindVars(inv, p.properties)
	ok, err := p.program.ExecuteBool(env)
	if err != nil || !ok {
		return types.JoinPointMatch{}, false
	}
	return types.JoinPointMatch{Signature: inv.Signature(), Vars: env}, true
}

// bindVars builds the per-call variable bindings of a join point: the
// matched signature parts, positional and named argument values, and the
// global properties.
func bindVars(inv types.Invocation, properties map[string]string) map[string]interface{} {
	sig := inv.Signature()
	args := inv.Arguments()
	env := map[string]interface{}{
		"method": sig.Method,
		"target": sig.TargetType,
		"args":   args,
	}
	for i, name := range sig.ArgNames {
		if i >= len(args) {
			break
		}
		if name != "" {
			env[name] = args[i]
		}
	}
	if properties != nil {
		env["global"] = properties
	}
	return env
}
