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
	"encoding/json"

	"github.com/weavego/weavego/api/types"
)

// JsonParser is the default scope DSL parser.
// JsonParser 默认的作用域 DSL 解析器。
type JsonParser struct {
}

var _ types.Parser = (*JsonParser)(nil)

func (p *JsonParser) DecodeScope(dsl []byte) (*types.ScopeDSL, error) {
	var def types.ScopeDSL
	if err := json.Unmarshal(dsl, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func (p *JsonParser) EncodeScope(def interface{}) ([]byte, error) {
	return json.MarshalIndent(def, "", "  ")
}
