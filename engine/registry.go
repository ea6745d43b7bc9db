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
	"errors"
	"fmt"
	"sync"

	"github.com/weavego/weavego/api/types"
)

// ScopeRegistry is the component bookkeeping of one scope. It keeps named
// component definitions in registration order; the advisor builder scans it
// to discover aspect metadata.
// ScopeRegistry 是一个作用域的组件登记表，按注册顺序保存命名组件定义；
// 增强器构建器扫描它以发现切面元数据。
type ScopeRegistry struct {
	mu    sync.RWMutex
	names []string
	defs  map[string]types.ComponentDefinition
}

var _ types.ComponentRegistry = (*ScopeRegistry)(nil)

// NewScopeRegistry creates an empty scope registry.
func NewScopeRegistry() *ScopeRegistry {
	return &ScopeRegistry{defs: make(map[string]types.ComponentDefinition)}
}

// Register adds a component definition.
func (r *ScopeRegistry) Register(def types.ComponentDefinition) error {
	if def.Name == "" {
		return errors.New("component name must not be empty")
	}
	if def.Factory == nil {
		return fmt.Errorf("component %q has no factory", def.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("the component already exists. name=%s", def.Name)
	}
	r.defs[def.Name] = def
	r.names = append(r.names, def.Name)
	return nil
}

// Unregister removes a component definition by name.
func (r *ScopeRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[name]; !ok {
		return fmt.Errorf("component not found. name=%s", name)
	}
	delete(r.defs, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
	return nil
}

// Names returns all component names in registration order.
func (r *ScopeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the definition registered under name.
func (r *ScopeRegistry) Get(name string) (types.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}
