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

package weavego

import (
	"fmt"
	"sync"

	"github.com/weavego/weavego/api/types"
	"github.com/weavego/weavego/builtin/advice"
)

// Registry is the default aspect component registry. It carries the built-in
// advice components; call Register to add custom aspect types.
// Registry 默认切面组件注册器。携带内置增强组件；调用 Register 添加自定义切面类型。
var Registry = new(AspectTypeRegistry)

func init() {
	_ = Registry.Register(&advice.LoggingAspect{})
	_ = Registry.Register(&advice.MetricsAspect{})
	_ = Registry.Register(&advice.RetryAspect{})
	_ = Registry.Register(&advice.ScriptAspect{})
}

// AspectTypeRegistry maps aspect component type keys to prototypes. The DSL
// names a type; NewAspect returns a fresh, uninitialized instance of it.
// AspectTypeRegistry 把切面组件类型键映射到原型。DSL 指定类型；
// NewAspect 返回其全新的未初始化实例。
type AspectTypeRegistry struct {
	aspects sync.Map
}

var _ types.AspectRegistry = (*AspectTypeRegistry)(nil)

// Register adds an aspect component prototype. Duplicate types fail.
func (r *AspectTypeRegistry) Register(aspect types.Aspect) error {
	if aspect == nil || aspect.Type() == "" {
		return fmt.Errorf("the aspect type can not be empty")
	}
	if _, loaded := r.aspects.LoadOrStore(aspect.Type(), aspect); loaded {
		return fmt.Errorf("the aspect type already exists. type=%s", aspect.Type())
	}
	return nil
}

// Unregister removes an aspect component prototype by type key.
func (r *AspectTypeRegistry) Unregister(typeName string) error {
	if _, ok := r.aspects.LoadAndDelete(typeName); !ok {
		return fmt.Errorf("aspect type not found. type=%s", typeName)
	}
	return nil
}

// NewAspect returns a fresh instance of the registered type.
func (r *AspectTypeRegistry) NewAspect(typeName string) (types.Aspect, error) {
	v, ok := r.aspects.Load(typeName)
	if !ok {
		return nil, fmt.Errorf("aspect type not found. type=%s", typeName)
	}
	return v.(types.Aspect).New(), nil
}
