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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weavego/weavego/api/types"
)

var testSig = types.Signature{TargetType: "CalcService", Method: "Add"}

// newTestInvocation builds an invocation over the chain with a counting
// target method.
func newTestInvocation(chain *Chain, calls *int, args ...interface{}) *proxyInvocation {
	invoker := func(ctx context.Context, args ...interface{}) (interface{}, error) {
		*calls++
		sum := 0
		for _, a := range args {
			sum += a.(int)
		}
		return sum, nil
	}
	return newProxyInvocation(context.Background(), testSig, "target", nil, args, chain.interceptors, invoker)
}

// dynPointcut statically matches but dynamically rejects every call.
type dynPointcut struct{}

func (dynPointcut) Matches(types.Signature) bool { return true }
func (dynPointcut) Bind(types.Invocation) (types.JoinPointMatch, bool) {
	return types.JoinPointMatch{}, false
}

func TestChainExecutionOrder(t *testing.T) {
	var trace []string
	advisors := []types.Advisor{
		{
			AspectName: "a2", Order: 3,
			Advice: types.BeforeAdvice(func(jp types.JoinPoint, match types.JoinPointMatch) error {
				trace = append(trace, "a2-before")
				return nil
			}),
		},
		{
			AspectName: "a3", Order: 2,
			Advice: types.AroundAdvice(func(pjp types.ProceedingJoinPoint, match types.JoinPointMatch) (interface{}, error) {
				trace = append(trace, "a3-enter")
				out, err := pjp.Proceed()
				trace = append(trace, "a3-exit")
				return out, err
			}),
		},
		{
			AspectName: "a1", Order: 1,
			Advice: types.AroundAdvice(func(pjp types.ProceedingJoinPoint, match types.JoinPointMatch) (interface{}, error) {
				trace = append(trace, "a1-enter")
				out, err := pjp.Proceed()
				trace = append(trace, "a1-exit")
				return out, err
			}),
		},
	}
	chain := NewChain(testSig, advisors)
	assert.Equal(t, 3, chain.Len())

	calls := 0
	inv := newTestInvocation(chain, &calls, 1, 2)
	result, err := chain.Invoke(inv)
	assert.Nil(t, err)
	assert.Equal(t, 3, result)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a1-enter", "a3-enter", "a2-before", "a3-exit", "a1-exit"}, trace)
}

// Equal-order advisors nest by advice kind: around advice wraps outermost, so
// a before advisor discovered between two arounds still runs inside both.
func TestChainEqualOrderKindPrecedence(t *testing.T) {
	var trace []string
	advisors := []types.Advisor{
		{
			AspectName: "a1",
			Advice: types.AroundAdvice(func(pjp types.ProceedingJoinPoint, match types.JoinPointMatch) (interface{}, error) {
				trace = append(trace, "a1-enter")
				out, err := pjp.Proceed()
				trace = append(trace, "a1-exit")
				return out, err
			}),
		},
		{
			AspectName: "a2",
			Advice: types.BeforeAdvice(func(jp types.JoinPoint, match types.JoinPointMatch) error {
				trace = append(trace, "a2-before")
				return nil
			}),
		},
		{
			AspectName: "a3",
			Advice: types.AroundAdvice(func(pjp types.ProceedingJoinPoint, match types.JoinPointMatch) (interface{}, error) {
				trace = append(trace, "a3-enter")
				out, err := pjp.Proceed()
				trace = append(trace, "a3-exit")
				return out, err
			}),
		},
	}
	chain := NewChain(testSig, advisors)

	calls := 0
	inv := newTestInvocation(chain, &calls, 1, 2)
	_, err := chain.Invoke(inv)
	assert.Nil(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a1-enter", "a3-enter", "a2-before", "a3-exit", "a1-exit"}, trace)
}

func TestChainBeforeShortCircuit(t *testing.T) {
	denied := errors.New("denied")
	var innerRan bool
	advisors := []types.Advisor{
		{
			AspectName: "gate", Order: 1,
			Advice: types.BeforeAdvice(func(jp types.JoinPoint, match types.JoinPointMatch) error {
				return denied
			}),
		},
		{
			AspectName: "inner", Order: 2,
			Advice: types.BeforeAdvice(func(jp types.JoinPoint, match types.JoinPointMatch) error {
				innerRan = true
				return nil
			}),
		},
	}
	chain := NewChain(testSig, advisors)

	calls := 0
	inv := newTestInvocation(chain, &calls)
	result, err := chain.Invoke(inv)
	assert.Equal(t, denied, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, calls)
	assert.False(t, innerRan)
}

func TestChainAfterFinally(t *testing.T) {
	boom := errors.New("boom")
	var observedErr error
	advisors := []types.Advisor{
		{
			AspectName: "finally", Order: 1,
			Advice: types.AfterAdvice(func(jp types.JoinPoint, match types.JoinPointMatch, result interface{}, err error) {
				observedErr = err
			}),
		},
	}
	chain := NewChain(testSig, advisors)

	invoker := func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return nil, boom
	}
	inv := newProxyInvocation(context.Background(), testSig, "target", nil, nil, chain.interceptors, invoker)
	_, err := chain.Invoke(inv)

	// the outcome passes through unchanged, the same error value
	assert.Equal(t, boom, err)
	assert.Equal(t, boom, observedErr)
}

func TestChainAfterReturningReplacesSuccess(t *testing.T) {
	replaced := errors.New("stale result")
	advisors := []types.Advisor{
		{
			AspectName: "verify", Order: 1,
			Advice: types.AfterReturningAdvice(func(jp types.JoinPoint, match types.JoinPointMatch, result interface{}) error {
				return replaced
			}),
		},
	}
	chain := NewChain(testSig, advisors)

	calls := 0
	inv := newTestInvocation(chain, &calls, 1)
	result, err := chain.Invoke(inv)
	assert.Equal(t, replaced, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, calls)
}

func TestChainAfterThrowing(t *testing.T) {
	boom := errors.New("boom")
	newChain := func(action types.AfterThrowingAdvice) *Chain {
		return NewChain(testSig, []types.Advisor{{AspectName: "handler", Advice: action}})
	}
	failingInvoker := func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return nil, boom
	}

	t.Run("reRaise", func(t *testing.T) {
		chain := newChain(func(jp types.JoinPoint, match types.JoinPointMatch, err error) error {
			return err
		})
		inv := newProxyInvocation(context.Background(), testSig, "target", nil, nil, chain.interceptors, failingInvoker)
		_, err := chain.Invoke(inv)
		assert.Equal(t, boom, err)
	})

	t.Run("replace", func(t *testing.T) {
		wrapped := errors.New("wrapped")
		chain := newChain(func(jp types.JoinPoint, match types.JoinPointMatch, err error) error {
			return wrapped
		})
		inv := newProxyInvocation(context.Background(), testSig, "target", nil, nil, chain.interceptors, failingInvoker)
		_, err := chain.Invoke(inv)
		assert.Equal(t, wrapped, err)
	})

	t.Run("recover", func(t *testing.T) {
		chain := newChain(func(jp types.JoinPoint, match types.JoinPointMatch, err error) error {
			return nil
		})
		inv := newProxyInvocation(context.Background(), testSig, "target", nil, nil, chain.interceptors, failingInvoker)
		_, err := chain.Invoke(inv)
		assert.Nil(t, err)
	})

	t.Run("skippedOnSuccess", func(t *testing.T) {
		ran := false
		chain := newChain(func(jp types.JoinPoint, match types.JoinPointMatch, err error) error {
			ran = true
			return err
		})
		calls := 0
		inv := newTestInvocation(chain, &calls, 1)
		result, err := chain.Invoke(inv)
		assert.Nil(t, err)
		assert.Equal(t, 1, result)
		assert.False(t, ran)
	})
}

func TestChainDynamicNoMatchSkips(t *testing.T) {
	ran := false
	advisors := []types.Advisor{
		{
			AspectName: "skipped",
			Pointcut:   dynPointcut{},
			Advice: types.BeforeAdvice(func(jp types.JoinPoint, match types.JoinPointMatch) error {
				ran = true
				return nil
			}),
		},
	}
	chain := NewChain(testSig, advisors)
	assert.Equal(t, 1, chain.Len())

	calls := 0
	inv := newTestInvocation(chain, &calls, 2, 3)
	result, err := chain.Invoke(inv)
	assert.Nil(t, err)
	assert.Equal(t, 5, result)
	assert.False(t, ran)
}

func TestChainStaticNoMatchExcludes(t *testing.T) {
	advisors := []types.Advisor{
		{
			AspectName: "other",
			Pointcut:   FuncPointcut(func(sig types.Signature) bool { return sig.Method == "Sub" }),
			Advice:     types.BeforeAdvice(func(jp types.JoinPoint, match types.JoinPointMatch) error { return nil }),
		},
	}
	chain := NewChain(testSig, advisors)
	assert.Equal(t, 0, chain.Len())
}

type plainInvocation struct{}

func (plainInvocation) Signature() types.Signature { return testSig }
func (plainInvocation) Target() interface{}        { return nil }
func (plainInvocation) Arguments() []interface{}   { return nil }
func (plainInvocation) Context() context.Context   { return context.Background() }

func TestChainRejectsPlainInvocation(t *testing.T) {
	chain := NewChain(testSig, nil)
	_, err := chain.Invoke(plainInvocation{})
	assert.Equal(t, types.ErrNotProxyInvocation, err)
}
