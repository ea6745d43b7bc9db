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

// Package el compiles and evaluates expression-language programs used by
// pointcuts. Programs are compiled once and shared; evaluation is pure.
// el 包编译并求值切入点使用的表达式程序。程序只编译一次并共享，求值是纯函数。
package el

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Program is a compiled expression program.
type Program struct {
	// Source is the original expression text.
	Source string
	program *vm.Program
}

// Compile compiles an expression. Undefined variables are allowed so that a
// program can be statically probed with a partial environment before the
// full per-call environment exists.
// Compile 编译表达式。允许未定义变量，使程序可以在完整的每次调用环境存在之前
// 用部分环境做静态探测。
func Compile(expression string) (*Program, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("el: compile %q: %w", expression, err)
	}
	return &Program{Source: expression, program: program}, nil
}

// Execute runs the program with the given environment.
func (p *Program) Execute(env map[string]interface{}) (interface{}, error) {
	var vmInst vm.VM
	out, err := vmInst.Run(p.program, env)
	if err != nil {
		return nil, fmt.Errorf("el: execute %q: %w", p.Source, err)
	}
	return out, nil
}

// Identifiers returns the top-level identifiers the expression references.
// Callers use it to decide whether a program can be evaluated against a
// partial environment or must wait for the full one.
// Identifiers 返回表达式引用的顶层标识符。调用方据此判断程序能否用部分环境求值，
// 还是必须等待完整环境。
func Identifiers(expression string) ([]string, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("el: parse %q: %w", expression, err)
	}
	v := &identifierVisitor{seen: make(map[string]bool)}
	ast.Walk(&tree.Node, v)
	return v.names, nil
}

type identifierVisitor struct {
	seen  map[string]bool
	names []string
}

func (v *identifierVisitor) Visit(node *ast.Node) {
	if id, ok := (*node).(*ast.IdentifierNode); ok {
		if !v.seen[id.Value] {
			v.seen[id.Value] = true
			v.names = append(v.names, id.Value)
		}
	}
}

// ExecuteBool runs the program and coerces the result to bool.
// Non-bool results evaluate to false.
func (p *Program) ExecuteBool(env map[string]interface{}) (bool, error) {
	out, err := p.Execute(env)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, nil
	}
	return b, nil
}
