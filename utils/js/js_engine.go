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

// Package js provides JavaScript execution for script-defined advice bodies.
//
// It wraps the goja library: the advice script is compiled once, virtual
// machines are pooled for reuse, and each execution is bounded by the
// configured ScriptMaxExecutionTime.
// js 包为脚本定义的增强体提供 JavaScript 执行能力：脚本只编译一次，
// 虚拟机池化复用，每次执行受配置的 ScriptMaxExecutionTime 限制。
package js

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/weavego/weavego/api/types"
)

const (
	// GlobalKey is the global properties key, reachable as global.xx.
	GlobalKey = "global"
)

// GojaJsEngine goja js engine
type GojaJsEngine struct {
	vmPool   sync.Pool
	config   types.Config
	jsScript *goja.Program
}

// NewGojaJsEngine creates a new instance of the JavaScript engine for the
// given advice script.
func NewGojaJsEngine(config types.Config, jsScript string) (*GojaJsEngine, error) {
	program, err := goja.Compile("", jsScript, true)
	if err != nil {
		return nil, err
	}
	jsEngine := &GojaJsEngine{
		config:   config,
		jsScript: program,
	}
	jsEngine.vmPool = sync.Pool{
		New: func() interface{} {
			return jsEngine.NewVm(config)
		},
	}
	return jsEngine, nil
}

// NewVm new a js VM
func (g *GojaJsEngine) NewVm(config types.Config) *goja.Runtime {
	vm := goja.New()

	if len(config.Properties.Values()) != 0 {
		if err := vm.Set(GlobalKey, config.Properties.Values()); err != nil {
			config.Logger.Printf("set global properties error: %s", err.Error())
		}
	}
	// Udf entries are Go functions exposed to the script by name.
	for k, v := range config.Udf {
		if err := vm.Set(k, v); err != nil {
			config.Logger.Printf("set udf %s error: %s", k, err.Error())
		}
	}

	timer := g.startTimeout(vm)
	_, err := vm.RunProgram(g.jsScript)
	g.stopTimeout(timer)

	if err != nil {
		config.Logger.Printf("js vm error: %s", err.Error())
	}
	return vm
}

// Execute executes a function declared by the advice script. vars are bound
// as VM globals for the duration of the call.
func (g *GojaJsEngine) Execute(vars map[string]interface{}, functionName string, argumentList ...interface{}) (out interface{}, err error) {
	defer func() {
		if caught := recover(); caught != nil {
			err = fmt.Errorf("%s", caught)
		}
	}()

	vm := g.vmPool.Get().(*goja.Runtime)
	defer g.vmPool.Put(vm)

	for k, v := range vars {
		if setErr := vm.Set(k, v); setErr != nil {
			return nil, setErr
		}
	}

	var timer *time.Timer
	if g.config.ScriptMaxExecutionTime > 0 {
		timer = g.startTimeout(vm)
		defer g.stopTimeout(timer)
	}

	f, ok := goja.AssertFunction(vm.Get(functionName))
	if !ok {
		return nil, errors.New(functionName + " is not a function")
	}

	var params []goja.Value
	if len(argumentList) > 0 {
		params = make([]goja.Value, len(argumentList))
		for i, v := range argumentList {
			params[i] = vm.ToValue(v)
		}
	}

	res, err := f(goja.Undefined(), params...)
	if err != nil {
		return nil, err
	}
	return res.Export(), nil
}

// HasFunction reports whether the advice script declares functionName.
func (g *GojaJsEngine) HasFunction(functionName string) bool {
	vm := g.vmPool.Get().(*goja.Runtime)
	defer g.vmPool.Put(vm)
	_, ok := goja.AssertFunction(vm.Get(functionName))
	return ok
}

func (g *GojaJsEngine) Stop() {
}

// startTimeout uses time.AfterFunc to bound script execution without
// spawning a goroutine per call.
func (g *GojaJsEngine) startTimeout(vm *goja.Runtime) *time.Timer {
	if g.config.ScriptMaxExecutionTime <= 0 {
		return nil
	}
	return time.AfterFunc(g.config.ScriptMaxExecutionTime, func() {
		vm.Interrupt("execution timeout")
	})
}

func (g *GojaJsEngine) stopTimeout(timer *time.Timer) {
	if timer != nil {
		timer.Stop()
	}
}
