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

package types

import (
	"errors"
	"fmt"
)

// ErrNotProxyInvocation is returned by the chain executor when an Invocation
// lacking the extended proceed/around capability reaches it. This indicates
// a caller bound to an incompatible invocation representation; it is raised
// before any advice runs and is never retried.
// ErrNotProxyInvocation 当缺少 proceed/around 扩展能力的 Invocation 到达链执行器
// 时返回。这说明调用方绑定了不兼容的调用表示；在任何增强执行前抛出，不会重试。
var ErrNotProxyInvocation = errors.New("invocation is not a weavego ProxyInvocation")

// ConfigurationError is a fatal configuration mistake detected at resolution
// time, e.g. a singleton-policy aspect backed by a non-singleton component.
// It is surfaced to the caller of resolution, never recovered internally.
// ConfigurationError 是解析时发现的致命配置错误，例如单例策略切面背后是非单例组件。
// 它直接抛给解析调用方，内部绝不恢复。
type ConfigurationError struct {
	// AspectName is the offending aspect component, if any.
	AspectName string
	// Reason describes the mistake.
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.AspectName == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: aspect %q: %s", e.AspectName, e.Reason)
}

// NewConfigurationError creates a ConfigurationError for the given aspect.
func NewConfigurationError(aspectName string, reason string) *ConfigurationError {
	return &ConfigurationError{AspectName: aspectName, Reason: reason}
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
