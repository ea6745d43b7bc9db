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

func TestScopeRegistry(t *testing.T) {
	r := NewScopeRegistry()
	factory := func() interface{} { return nil }

	assert.Nil(t, r.Register(types.ComponentDefinition{Name: "a", Factory: factory}))
	assert.Nil(t, r.Register(types.ComponentDefinition{Name: "b", Factory: factory}))

	// registration order is preserved
	assert.Equal(t, []string{"a", "b"}, r.Names())

	def, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", def.Name)

	// duplicates, empty names and missing factories fail
	assert.NotNil(t, r.Register(types.ComponentDefinition{Name: "a", Factory: factory}))
	assert.NotNil(t, r.Register(types.ComponentDefinition{Name: "", Factory: factory}))
	assert.NotNil(t, r.Register(types.ComponentDefinition{Name: "c"}))

	assert.Nil(t, r.Unregister("a"))
	assert.Equal(t, []string{"b"}, r.Names())
	assert.NotNil(t, r.Unregister("a"))
	_, ok = r.Get("a")
	assert.False(t, ok)
}
