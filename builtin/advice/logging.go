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
	"go.uber.org/zap"

	"github.com/weavego/weavego/api/types"
	"github.com/weavego/weavego/utils/maps"
)

// LoggingAspect logs every matched call before it runs and its outcome after
// it finished.
// LoggingAspect 在每个匹配的调用执行前与结束后记录日志。
type LoggingAspect struct {
	// Logger is the structured logger used for call logs. Tests may inject an
	// observed logger; Init creates a production logger when nil.
	Logger *zap.Logger

	config loggingConfig
}

type loggingConfig struct {
	// Development switches to the development logger encoding.
	Development bool `mapstructure:"development"`
}

var (
	_ types.BeforeAspect = (*LoggingAspect)(nil)
	_ types.AfterAspect  = (*LoggingAspect)(nil)
)

func (a *LoggingAspect) Type() string {
	return "logging"
}

func (a *LoggingAspect) New() types.Aspect {
	return &LoggingAspect{}
}

func (a *LoggingAspect) Order() int {
	return 900
}

func (a *LoggingAspect) Init(_ types.Config, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &a.config); err != nil {
		return err
	}
	if a.Logger == nil {
		var err error
		if a.config.Development {
			a.Logger, err = zap.NewDevelopment()
		} else {
			a.Logger, err = zap.NewProduction()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *LoggingAspect) Before(jp types.JoinPoint, _ types.JoinPointMatch) error {
	a.Logger.Info("call enter",
		zap.String("target", jp.Signature().TargetType),
		zap.String("method", jp.Signature().Method),
		zap.Int("argCount", len(jp.Arguments())),
	)
	return nil
}

func (a *LoggingAspect) After(jp types.JoinPoint, _ types.JoinPointMatch, _ interface{}, err error) {
	if err != nil {
		a.Logger.Warn("call failed",
			zap.String("target", jp.Signature().TargetType),
			zap.String("method", jp.Signature().Method),
			zap.Error(err),
		)
		return
	}
	a.Logger.Info("call exit",
		zap.String("target", jp.Signature().TargetType),
		zap.String("method", jp.Signature().Method),
	)
}
