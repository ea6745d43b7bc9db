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

package advice

import (
	"time"

	"github.com/weavego/weavego/api/types"
	"github.com/weavego/weavego/utils/maps"
)

// RetryAspect re-runs the downstream chain on failure. Each attempt is a full
// Proceed, so inner advice runs once per attempt.
// RetryAspect 在失败时重新执行下游链。每次尝试是一次完整的 Proceed，
// 内层增强每次尝试都会执行。
type RetryAspect struct {
	config retryConfig
}

type retryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `mapstructure:"maxAttempts"`
	// DelayMs waits between attempts.
	DelayMs int `mapstructure:"delayMs"`
}

var _ types.AroundAspect = (*RetryAspect)(nil)

func (a *RetryAspect) Type() string {
	return "retry"
}

func (a *RetryAspect) New() types.Aspect {
	return &RetryAspect{}
}

func (a *RetryAspect) Order() int {
	return 50
}

func (a *RetryAspect) Init(_ types.Config, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &a.config); err != nil {
		return err
	}
	if a.config.MaxAttempts <= 0 {
		a.config.MaxAttempts = 3
	}
	return nil
}

func (a *RetryAspect) Around(pjp types.ProceedingJoinPoint, _ types.JoinPointMatch) (interface{}, error) {
	var result interface{}
	var err error
	for attempt := 0; attempt < a.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			if a.config.DelayMs > 0 {
				select {
				case <-pjp.Context().Done():
					return nil, pjp.Context().Err()
				case <-time.After(time.Duration(a.config.DelayMs) * time.Millisecond):
				}
			}
		}
		result, err = pjp.Proceed()
		if err == nil {
			return result, nil
		}
	}
	return result, err
}
