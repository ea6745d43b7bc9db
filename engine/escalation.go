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
	"sync"

	"github.com/weavego/weavego/api/types"
)

// Installed is the registration slot of one scope's interception capability.
// The slot is created on the first request and kept for the lifetime of the
// registry; escalation mutates it in place so existing references stay valid.
// Installed 是一个作用域拦截能力的注册槽位。首次请求时创建并保留到注册表生命周期
// 结束；升级原地修改槽位，已有引用保持有效。
type Installed struct {
	owner            *CapabilityRegistry
	scope            string
	capability       types.ProxyCapability
	exposeInvocation bool
}

// Scope returns the scope identity of this slot.
func (i *Installed) Scope() string {
	return i.scope
}

// Capability returns the currently installed capability kind, zero if only
// the expose flag has been set so far.
func (i *Installed) Capability() types.ProxyCapability {
	i.owner.mu.Lock()
	defer i.owner.mu.Unlock()
	return i.capability
}

// ExposeInvocation returns the state of the self-re-entrance flag.
func (i *Installed) ExposeInvocation() bool {
	i.owner.mu.Lock()
	defer i.owner.mu.Unlock()
	return i.exposeInvocation
}

// CapabilityRegistry records which interception-capability variant is
// installed per scope. Multiple configuration elements may request different
// variants; requests resolve via a strict capability ordering that never
// downgrades. Callers may request a particular kind and know that kind, or a
// more capable variant thereof, will be installed.
//
// CapabilityRegistry 记录每个作用域安装的拦截能力变体。多个配置元素可能请求
// 不同的变体；请求按严格的能力排序解决，绝不降级。调用方请求某个种类后，
// 可以确定安装的是该种类或更强的变体。
//
// It is process-scoped state with an explicit construction lifecycle: create
// one per application context and inject it where needed.
type CapabilityRegistry struct {
	config    types.Config
	mu        sync.Mutex
	installed map[string]*Installed
}

// NewCapabilityRegistry creates an empty registry.
func NewCapabilityRegistry(config types.Config) *CapabilityRegistry {
	return &CapabilityRegistry{
		config:    config,
		installed: make(map[string]*Installed),
	}
}

// Request registers or upgrades the installed capability for a scope and
// returns its registration slot. Requesting a less capable kind than the
// installed one is a no-op. This operation is total: an unrecognized kind is
// a caller programming error and panics immediately.
// Request 为作用域注册或升级安装的能力并返回其注册槽位。请求比已安装更弱的种类
// 是空操作。该操作是全函数：无法识别的种类属于调用方编程错误，立即 panic。
func (r *CapabilityRegistry) Request(scope string, kind types.ProxyCapability) *Installed {
	if !kind.Valid() {
		panic(fmt.Sprintf("capability registry: unknown capability kind %d", kind))
	}
	r.mu.Lock()
	rec, ok := r.installed[scope]
	changed := false
	if !ok {
		rec = &Installed{owner: r, scope: scope, capability: kind}
		r.installed[scope] = rec
		changed = true
	} else if kind > rec.capability {
		// upgrade in place, preserving the slot
		rec.capability = kind
		changed = true
	}
	event := types.ComponentEvent{
		Scope:            scope,
		Kind:             types.EventCapabilityInstalled,
		Capability:       rec.capability,
		ExposeInvocation: rec.exposeInvocation,
	}
	r.mu.Unlock()

	if changed {
		r.notify(event)
	}
	return rec
}

// ForceFullCapability escalates the scope to the most capable interception
// kind regardless of interface presence.
func (r *CapabilityRegistry) ForceFullCapability(scope string) *Installed {
	return r.Request(scope, types.CapabilityDynamic)
}

// ExposeActiveInvocation sets the self-re-entrance flag for a scope.
// The flag is monotonic OR: once set, it stays set.
// ExposeActiveInvocation 为作用域设置自重入标志。该标志是单调 OR：一旦设置就保持。
func (r *CapabilityRegistry) ExposeActiveInvocation(scope string) {
	r.mu.Lock()
	rec, ok := r.installed[scope]
	changed := false
	if !ok {
		rec = &Installed{owner: r, scope: scope, exposeInvocation: true}
		r.installed[scope] = rec
		changed = true
	} else if !rec.exposeInvocation {
		rec.exposeInvocation = true
		changed = true
	}
	event := types.ComponentEvent{
		Scope:            scope,
		Kind:             types.EventCapabilityInstalled,
		Capability:       rec.capability,
		ExposeInvocation: rec.exposeInvocation,
	}
	r.mu.Unlock()

	if changed {
		r.notify(event)
	}
}

// Get returns the registration slot of a scope, if any.
func (r *CapabilityRegistry) Get(scope string) (*Installed, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.installed[scope]
	return rec, ok
}

// notify emits the outbound component notification, once per net change.
func (r *CapabilityRegistry) notify(event types.ComponentEvent) {
	if r.config.OnComponentRegistered != nil {
		r.config.OnComponentRegistered(event)
	}
}
