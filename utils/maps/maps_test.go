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

package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap2Struct(t *testing.T) {
	type retryConfig struct {
		MaxAttempts int  `mapstructure:"maxAttempts"`
		Enabled     bool `mapstructure:"enabled"`
	}
	var cfg retryConfig
	err := Map2Struct(map[string]interface{}{
		"maxAttempts": 5,
		"enabled":     true,
		"unknown":     "ignored",
	}, &cfg)
	assert.Nil(t, err)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.True(t, cfg.Enabled)
}

func TestMap2StructNilInput(t *testing.T) {
	type empty struct{}
	var cfg empty
	assert.Nil(t, Map2Struct(nil, &cfg))
}
