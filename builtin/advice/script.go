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

package advice

import (
	"errors"

	"github.com/weavego/weavego/api/types"
	"github.com/weavego/weavego/utils/js"
	"github.com/weavego/weavego/utils/maps"
)

// ScriptAspect defines advice bodies in JavaScript. The script may declare
// any of the functions Before, AfterReturning, AfterThrowing, After and
// Around; only declared functions take effect, undeclared kinds pass the call
// through unchanged.
//
// Each function receives a join-point object {method, target, args, vars}.
// Before returns a string to short-circuit the call with that error message.
// AfterThrowing returns a string to replace the error, true to recover the
// call, or nothing to re-raise. Around additionally receives a proceed
// function; its own return value becomes the call's result.
//
// ScriptAspect 用 JavaScript 定义增强体。脚本可以声明 Before、AfterReturning、
// AfterThrowing、After、Around 中的任意函数；只有声明的函数生效，未声明的类型
// 对调用透明。每个函数接收连接点对象 {method, target, args, vars}。
// Before 返回字符串表示以该错误消息截断调用。AfterThrowing 返回字符串表示替换
// 错误，返回 true 表示恢复调用，不返回表示重新抛出。Around 额外接收 proceed
// 函数，其返回值成为调用结果。
type ScriptAspect struct {
	config scriptConfig
	engine *js.GojaJsEngine

	hasBefore         bool
	hasAfterReturning bool
	hasAfterThrowing  bool
	hasAfter          bool
	hasAround         bool
}

type scriptConfig struct {
	// JsScript is the advice script source.
	JsScript string `mapstructure:"jsScript"`
}

var (
	_ types.BeforeAspect         = (*ScriptAspect)(nil)
	_ types.AfterReturningAspect = (*ScriptAspect)(nil)
	_ types.AfterThrowingAspect  = (*ScriptAspect)(nil)
	_ types.AfterAspect          = (*ScriptAspect)(nil)
	_ types.AroundAspect         = (*ScriptAspect)(nil)
)

func (a *ScriptAspect) Type() string {
	return "script"
}

func (a *ScriptAspect) New() types.Aspect {
	return &ScriptAspect{}
}

func (a *ScriptAspect) Order() int {
	return 500
}

func (a *ScriptAspect) Init(config types.Config, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &a.config); err != nil {
		return err
	}
	if a.config.JsScript == "" {
		return errors.New("the script aspect requires a jsScript configuration")
	}
	engine, err := js.NewGojaJsEngine(config, a.config.JsScript)
	if err != nil {
		return err
	}
	a.engine = engine
	a.hasBefore = engine.HasFunction("Before")
	a.hasAfterReturning = engine.HasFunction("AfterReturning")
	a.hasAfterThrowing = engine.HasFunction("AfterThrowing")
	a.hasAfter = engine.HasFunction("After")
	a.hasAround = engine.HasFunction("Around")
	return nil
}

func (a *ScriptAspect) Before(jp types.JoinPoint, match types.JoinPointMatch) error {
	if !a.hasBefore {
		return nil
	}
	out, err := a.engine.Execute(nil, "Before", scriptJoinPoint(jp, match))
	if err != nil {
		return err
	}
	if msg, ok := out.(string); ok && msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (a *ScriptAspect) AfterReturning(jp types.JoinPoint, match types.JoinPointMatch, result interface{}) error {
	if !a.hasAfterReturning {
		return nil
	}
	out, err := a.engine.Execute(nil, "AfterReturning", scriptJoinPoint(jp, match), result)
	if err != nil {
		return err
	}
	if msg, ok := out.(string); ok && msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (a *ScriptAspect) AfterThrowing(jp types.JoinPoint, match types.JoinPointMatch, callErr error) error {
	if !a.hasAfterThrowing {
		return callErr
	}
	out, err := a.engine.Execute(nil, "AfterThrowing", scriptJoinPoint(jp, match), callErr.Error())
	if err != nil {
		return err
	}
	switch v := out.(type) {
	case string:
		if v != "" {
			return errors.New(v)
		}
	case bool:
		if v {
			// deliberately recovered by the script
			return nil
		}
	}
	return callErr
}

func (a *ScriptAspect) After(jp types.JoinPoint, match types.JoinPointMatch, result interface{}, err error) {
	if !a.hasAfter {
		return
	}
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	_, _ = a.engine.Execute(nil, "After", scriptJoinPoint(jp, match), result, errMsg)
}

func (a *ScriptAspect) Around(pjp types.ProceedingJoinPoint, match types.JoinPointMatch) (interface{}, error) {
	if !a.hasAround {
		return pjp.Proceed()
	}
	proceed := func(args ...interface{}) (interface{}, error) {
		return pjp.Proceed(args...)
	}
	return a.engine.Execute(nil, "Around", scriptJoinPoint(pjp, match), proceed)
}

func scriptJoinPoint(jp types.JoinPoint, match types.JoinPointMatch) map[string]interface{} {
	return map[string]interface{}{
		"method": jp.Signature().Method,
		"target": jp.Signature().TargetType,
		"args":   jp.Arguments(),
		"vars":   match.Vars,
	}
}
