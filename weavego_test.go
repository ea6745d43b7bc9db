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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weavego/weavego/api/types"
	"github.com/weavego/weavego/engine"
)

// orderService is a test target publishing its method table.
type orderService struct {
	placed int
}

func (s *orderService) Methods() map[string]types.MethodFunc {
	return map[string]types.MethodFunc{
		"Place": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			s.placed++
			return "order-1", nil
		},
		"Cancel": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return "cancelled", nil
		},
	}
}

func (s *orderService) ArgNames(method string) []string {
	if method == "Place" {
		return []string{"amount"}
	}
	return nil
}

func TestEndToEndScriptAspect(t *testing.T) {
	dsl := []byte(`{
	  "aspectScope": {"id": "shop"},
	  "aspects": [
	    {
	      "name": "limit",
	      "type": "script",
	      "pointcut": "method == 'Place'",
	      "configuration": {
	        "jsScript": "function Before(jp) { if (jp.args[0] > 1000) { return 'order limit exceeded'; } }"
	      }
	    }
	  ]
	}`)
	e, err := New("shop", dsl)
	assert.Nil(t, err)
	defer Del("shop")

	target := &orderService{}
	proxy, err := e.NewProxy(target)
	assert.Nil(t, err)

	result, err := proxy.Call(context.Background(), "Place", 100)
	assert.Nil(t, err)
	assert.Equal(t, "order-1", result)
	assert.Equal(t, 1, target.placed)

	// the script short-circuits oversized orders
	_, err = proxy.Call(context.Background(), "Place", 5000)
	assert.NotNil(t, err)
	assert.Equal(t, "order limit exceeded", err.Error())
	assert.Equal(t, 1, target.placed)

	// the pointcut leaves other methods alone
	result, err = proxy.Call(context.Background(), "Cancel")
	assert.Nil(t, err)
	assert.Equal(t, "cancelled", result)
}

func TestEndToEndRetryAspect(t *testing.T) {
	dsl := []byte(`{
	  "aspectScope": {"id": "flaky"},
	  "aspects": [
	    {"name": "retry", "type": "retry", "configuration": {"maxAttempts": 3}}
	  ]
	}`)
	e, err := New("flaky", dsl)
	assert.Nil(t, err)
	defer Del("flaky")

	attempts := 0
	target := &flakyService{fail: 2, attempts: &attempts}
	proxy, err := e.NewProxy(target)
	assert.Nil(t, err)

	result, err := proxy.Call(context.Background(), "Fetch")
	assert.Nil(t, err)
	assert.Equal(t, "data", result)
	assert.Equal(t, 3, attempts)
}

type flakyService struct {
	fail     int
	attempts *int
}

func (s *flakyService) Methods() map[string]types.MethodFunc {
	return map[string]types.MethodFunc{
		"Fetch": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			*s.attempts++
			if s.fail > 0 {
				s.fail--
				return nil, assert.AnError
			}
			return "data", nil
		},
	}
}

func TestPoolLifecycle(t *testing.T) {
	dsl := []byte(`{"aspectScope": {"id": "pooled"}}`)
	e, err := New("pooled", dsl)
	assert.Nil(t, err)

	// the same id returns the registered engine
	again, err := New("pooled", []byte(`{"aspectScope": {"id": "pooled"}}`))
	assert.Nil(t, err)
	assert.Same(t, e, again)

	got, ok := Get("pooled")
	assert.True(t, ok)
	assert.Same(t, e, got)

	count := 0
	DefaultPool.Range(func(id string, _ *engine.AspectEngine) bool {
		count++
		return true
	})
	assert.True(t, count >= 1)

	Del("pooled")
	_, ok = Get("pooled")
	assert.False(t, ok)

	// deleting again is harmless
	Del("pooled")
}

func TestPoolReload(t *testing.T) {
	dsl := []byte(`{
	  "aspectScope": {"id": "reloadable"},
	  "aspects": [
	    {"name": "retry", "type": "retry"}
	  ]
	}`)
	e, err := New("reloadable", dsl)
	assert.Nil(t, err)
	defer Del("reloadable")

	advisors, err := e.ResolveAdvisors()
	assert.Nil(t, err)
	assert.Equal(t, 1, len(advisors))

	err = DefaultPool.Reload("reloadable", []byte(`{"aspectScope": {"id": "reloadable"}}`))
	assert.Nil(t, err)

	advisors, err = e.ResolveAdvisors()
	assert.Nil(t, err)
	assert.Equal(t, 0, len(advisors))

	assert.NotNil(t, DefaultPool.Reload("missing", dsl))
}

func TestRegistryRegistration(t *testing.T) {
	// the built-in advice components are pre-registered
	for _, typeName := range []string{"logging", "metrics", "retry", "script"} {
		aspect, err := Registry.NewAspect(typeName)
		assert.Nil(t, err)
		assert.Equal(t, typeName, aspect.Type())
	}

	_, err := Registry.NewAspect("nosuch")
	assert.NotNil(t, err)

	// duplicate registration fails
	retryAspect, err := Registry.NewAspect("retry")
	assert.Nil(t, err)
	assert.NotNil(t, Registry.Register(retryAspect))
}
