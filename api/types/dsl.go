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

// Component lifecycle names used by the DSL.
const (
	// LifecycleSingleton components are instantiated once per scope.
	LifecycleSingleton = "singleton"
	// LifecyclePrototype components are instantiated per request.
	LifecyclePrototype = "prototype"
)

// ScopeDSL is the root of an aspect-scope DSL document. It is the
// configuration surface supplied by the external configuration collaborator;
// the engine consumes it, it does not author it.
// ScopeDSL 是切面作用域 DSL 文档的根。它是外部配置协作方提供的配置面；
// 引擎只消费它，不生产它。
//
// Example:
//
//	{
//	  "aspectScope": {
//	    "id": "orders",
//	    "forceFullCapability": true,
//	    "exposeActiveInvocation": false
//	  },
//	  "aspects": [
//	    {
//	      "name": "audit",
//	      "type": "logging",
//	      "instantiation": "singleton",
//	      "order": 10,
//	      "pointcut": "method startsWith 'Get'",
//	      "configuration": {}
//	    }
//	  ]
//	}
type ScopeDSL struct {
	// AspectScope is the scope base information.
	AspectScope ScopeBaseInfo `json:"aspectScope"`
	// Aspects are the aspect component declarations of the scope.
	Aspects []AspectDSL `json:"aspects"`
}

// ScopeBaseInfo is the base information of an aspect scope.
// ScopeBaseInfo 切面作用域基础信息定义。
type ScopeBaseInfo struct {
	// Id is the scope identity, carried by outbound notifications.
	Id string `json:"id"`
	// Name is a display name.
	Name string `json:"name"`
	// ForceFullCapability requests escalation to the most capable
	// interception kind regardless of interface presence.
	ForceFullCapability bool `json:"forceFullCapability"`
	// ExposeActiveInvocation sets the monotonic self-re-entrance flag.
	ExposeActiveInvocation bool `json:"exposeActiveInvocation"`
	// AdditionalInfo 扩展字段
	AdditionalInfo map[string]string `json:"additionalInfo,omitempty"`
	// Configuration holds scope-level configuration.
	Configuration Configuration `json:"configuration,omitempty"`
}

// AspectDSL declares one aspect component of a scope.
// AspectDSL 声明作用域中的一个切面组件。
type AspectDSL struct {
	// Name is the unique aspect component name within the scope.
	Name string `json:"name"`
	// Type selects the registered aspect component type.
	// 它应该与注册表中注册的切面组件类型之一匹配。
	Type string `json:"type"`
	// Instantiation is the aspect instantiation policy, defaulting to
	// "singleton".
	Instantiation InstantiationPolicy `json:"instantiation,omitempty"`
	// Lifecycle is the backing component lifecycle, "singleton" (default)
	// or "prototype". A singleton-policy aspect on a prototype component is
	// a configuration error, detected at resolution time.
	Lifecycle string `json:"lifecycle,omitempty"`
	// Order overrides the component's declared order when non-zero.
	Order int `json:"order,omitempty"`
	// Pointcut is an optional expression selecting the calls this aspect
	// applies to; empty matches every call.
	Pointcut string `json:"pointcut,omitempty"`
	// Configuration holds the component-specific configuration, decoded
	// into the instance at Init time.
	Configuration Configuration `json:"configuration,omitempty"`
}
