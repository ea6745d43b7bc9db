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
)

// singletonInstanceFactory always yields the same shared, initialized aspect
// instance.
type singletonInstanceFactory struct {
	definition types.AspectDefinition
	instance   types.Aspect
}

var _ types.AspectInstanceFactory = (*singletonInstanceFactory)(nil)

func (f *singletonInstanceFactory) Definition() types.AspectDefinition { return f.definition }

func (f *singletonInstanceFactory) GetInstance() (types.Aspect, error) { return f.instance, nil }

// perInvocationInstanceFactory yields a freshly constructed and initialized
// aspect instance on every request, so advice closures resolved from it are
// bound to that new instance.
// perInvocationInstanceFactory 每次请求都产出新构造并初始化的切面实例，
// 由它解析出的增强闭包绑定到这个新实例。
type perInvocationInstanceFactory struct {
	definition types.AspectDefinition
	config     types.Config
	component  types.ComponentDefinition
}

var _ types.AspectInstanceFactory = (*perInvocationInstanceFactory)(nil)

func (f *perInvocationInstanceFactory) Definition() types.AspectDefinition { return f.definition }

func (f *perInvocationInstanceFactory) GetInstance() (types.Aspect, error) {
	return newAspectInstance(f.config, f.component)
}

// newAspectInstance constructs one initialized aspect instance from a
// component definition.
func newAspectInstance(config types.Config, def types.ComponentDefinition) (types.Aspect, error) {
	v := def.Factory()
	aspect, ok := v.(types.Aspect)
	if !ok {
		return nil, fmt.Errorf("component %q does not carry aspect metadata", def.Name)
	}
	configuration := def.Configuration
	if configuration == nil {
		configuration = make(types.Configuration)
	}
	if err := aspect.Init(config, configuration); err != nil {
		return nil, fmt.Errorf("init aspect %q: %w", def.Name, err)
	}
	return aspect, nil
}

// buildAdvisors resolves the advisors of one live aspect instance. Each
// advice interface the instance implements becomes one Advisor whose advice
// action is a closure bound to that instance; the pointcut is shared by all
// advisors of the aspect. Within one aspect the advisors keep the fixed
// declaration order around, before, afterReturning, afterThrowing, after.
// buildAdvisors 解析一个活动切面实例的增强器。实例实现的每个增强接口对应一个
// Advisor，其动作是绑定到该实例的闭包；切入点由该切面的所有增强器共享。
// 同一切面内增强器保持固定声明顺序：around、before、afterReturning、afterThrowing、after。
func buildAdvisors(def types.AspectDefinition, instance types.Aspect, pointcut types.Pointcut) []types.Advisor {
	order := def.Order
	if order == 0 {
		order = instance.Order()
	}
	pc := pointcut
	if pc == nil {
		if pa, ok := instance.(types.PointcutAspect); ok {
			pc = pa.PointCut()
		}
	}
	if pc == nil {
		pc = PointcutTrue
	}

	var advisors []types.Advisor
	add := func(advice types.Advice) {
		advisors = append(advisors, types.Advisor{
			AspectName: def.Name,
			Pointcut:   pc,
			Advice:     advice,
			Order:      order,
		})
	}
	if a, ok := instance.(types.AroundAspect); ok {
		add(types.AroundAdvice(a.Around))
	}
	if a, ok := instance.(types.BeforeAspect); ok {
		add(types.BeforeAdvice(a.Before))
	}
	if a, ok := instance.(types.AfterReturningAspect); ok {
		add(types.AfterReturningAdvice(a.AfterReturning))
	}
	if a, ok := instance.(types.AfterThrowingAspect); ok {
		add(types.AfterThrowingAdvice(a.AfterThrowing))
	}
	if a, ok := instance.(types.AfterAspect); ok {
		add(types.AfterAdvice(a.After))
	}
	return advisors
}

// resolveFactoryAdvisors obtains an instance from the factory and resolves a
// fresh advisor list bound to it.
func resolveFactoryAdvisors(factory types.AspectInstanceFactory, pointcut types.Pointcut) ([]types.Advisor, error) {
	instance, err := factory.GetInstance()
	if err != nil {
		return nil, err
	}
	return buildAdvisors(factory.Definition(), instance, pointcut), nil
}
