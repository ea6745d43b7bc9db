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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weavego/weavego/api/types"
)

func TestCapabilityEscalation(t *testing.T) {
	r := NewCapabilityRegistry(types.NewConfig())

	rec := r.Request("orders", types.CapabilityInterface)
	assert.Equal(t, types.CapabilityInterface, rec.Capability())

	// upgrade
	rec2 := r.Request("orders", types.CapabilityDynamic)
	assert.Equal(t, types.CapabilityDynamic, rec2.Capability())

	// the slot is preserved across the upgrade
	assert.Same(t, rec, rec2)

	// requesting a weaker kind never downgrades
	rec3 := r.Request("orders", types.CapabilityInterface)
	assert.Same(t, rec, rec3)
	assert.Equal(t, types.CapabilityDynamic, rec.Capability())
}

func TestCapabilityNotificationPerNetChange(t *testing.T) {
	var events []types.ComponentEvent
	config := types.NewConfig(types.WithOnComponentRegistered(func(event types.ComponentEvent) {
		events = append(events, event)
	}))
	r := NewCapabilityRegistry(config)

	r.Request("orders", types.CapabilityInterface)
	r.Request("orders", types.CapabilityInterface) // no net change
	r.Request("orders", types.CapabilityDynamic)
	r.Request("orders", types.CapabilityDynamic) // no net change

	assert.Equal(t, 2, len(events))
	assert.Equal(t, "orders", events[0].Scope)
	assert.Equal(t, types.EventCapabilityInstalled, events[0].Kind)
	assert.Equal(t, types.CapabilityInterface, events[0].Capability)
	assert.Equal(t, types.CapabilityDynamic, events[1].Capability)
}

func TestExposeActiveInvocationMonotonic(t *testing.T) {
	var events []types.ComponentEvent
	config := types.NewConfig(types.WithOnComponentRegistered(func(event types.ComponentEvent) {
		events = append(events, event)
	}))
	r := NewCapabilityRegistry(config)

	// the flag may arrive before any capability request
	r.ExposeActiveInvocation("orders")
	rec, ok := r.Get("orders")
	assert.True(t, ok)
	assert.True(t, rec.ExposeInvocation())

	// setting it again is not a net change
	r.ExposeActiveInvocation("orders")
	assert.Equal(t, 1, len(events))

	// a later capability request lands in the same slot and keeps the flag
	rec2 := r.Request("orders", types.CapabilityInterface)
	assert.Same(t, rec, rec2)
	assert.True(t, rec2.ExposeInvocation())
}

func TestForceFullCapability(t *testing.T) {
	r := NewCapabilityRegistry(types.NewConfig())
	rec := r.ForceFullCapability("orders")
	assert.Equal(t, types.CapabilityDynamic, rec.Capability())
}

func TestRequestUnknownKindPanics(t *testing.T) {
	r := NewCapabilityRegistry(types.NewConfig())
	assert.Panics(t, func() {
		r.Request("orders", types.ProxyCapability(99))
	})
}

func TestCapabilityScopesIndependent(t *testing.T) {
	r := NewCapabilityRegistry(types.NewConfig())
	r.Request("orders", types.CapabilityDynamic)
	rec := r.Request("billing", types.CapabilityInterface)
	assert.Equal(t, types.CapabilityInterface, rec.Capability())
}
