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

package el

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileAndExecute(t *testing.T) {
	p, err := Compile(`method == "Transfer" && amount > 100`)
	assert.Nil(t, err)

	out, err := p.Execute(map[string]interface{}{"method": "Transfer", "amount": 500})
	assert.Nil(t, err)
	assert.Equal(t, true, out)

	ok, err := p.ExecuteBool(map[string]interface{}{"method": "Transfer", "amount": 50})
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestCompileError(t *testing.T) {
	_, err := Compile(`method ==`)
	assert.NotNil(t, err)
}

func TestExecuteBoolNonBool(t *testing.T) {
	p, err := Compile(`1 + 1`)
	assert.Nil(t, err)
	ok, err := p.ExecuteBool(nil)
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestUndefinedVariablesAllowed(t *testing.T) {
	p, err := Compile(`missing == "x"`)
	assert.Nil(t, err)
	ok, err := p.ExecuteBool(map[string]interface{}{})
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestIdentifiers(t *testing.T) {
	names, err := Identifiers(`method == "Get" && amount > 100 && global.env == "prod"`)
	assert.Nil(t, err)
	assert.Equal(t, []string{"method", "amount", "global"}, names)

	names, err = Identifiers(`args[0] == "alice"`)
	assert.Nil(t, err)
	assert.Equal(t, []string{"args"}, names)

	_, err = Identifiers(`method ==`)
	assert.NotNil(t, err)
}
