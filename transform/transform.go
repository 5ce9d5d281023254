/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package transform defines an optional hook that rewrites a merged
// record after selection and before emission.
package transform

import (
	"context"
)

// A Transformer rewrites a merged record.
//
// A Transformer runs inside the tick, so an error abandons that tick
// the same way a selection error does.
type Transformer interface {
	Transform(ctx context.Context, record []interface{}) ([]interface{}, error)
}

// Func adapts a function to the Transformer interface.
type Func func(ctx context.Context, record []interface{}) ([]interface{}, error)

func (f Func) Transform(ctx context.Context, record []interface{}) ([]interface{}, error) {
	return f(ctx, record)
}
