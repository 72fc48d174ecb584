// Package jq applies jq expressions to decoded API payloads.
package jq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

// DefaultTimeout is the default execution time for jq expressions
const DefaultTimeout = 2 * time.Second

// Executor evaluates jq expressions with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates a new jq executor. A zero timeout uses DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Compile parses and compiles an expression.
func (e *Executor) Compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}
	return code, nil
}

// Validate checks that an expression compiles.
func (e *Executor) Validate(expression string) error {
	_, err := e.Compile(expression)
	return err
}

// Execute runs expression against data. An empty expression returns data
// unchanged. One result is returned as is, several as a list.
//
// data must be made of the types encoding/json produces for interface
// values (map[string]any, []any, float64, string, bool, nil).
func (e *Executor) Execute(ctx context.Context, expression string, data any) (any, error) {
	if expression == "" {
		return data, nil
	}

	code, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	iter := code.RunWithContext(execCtx, data)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("execution timeout after %v", e.timeout)
			}
			return nil, err
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
