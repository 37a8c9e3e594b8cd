// Package tools exposes the core operations as named tools with typed
// inputs. Every call returns a Result; errors are folded into it by kind.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/logger"
)

// Param describes one input field of a tool.
type Param struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Required   bool   `json:"required"`
	Constraint string `json:"constraint,omitempty"`
}

// Tool is a named operation with a typed input.
type Tool interface {
	// Name returns the tool name.
	Name() string

	// Description is a one-line summary for listings.
	Description() string

	// Params declares the input fields and their constraints.
	Params() []Param

	// Handle decodes and validates params, then runs the operation.
	Handle(ctx context.Context, params json.RawMessage) (any, error)
}

// Registry manages tools by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = t
	return nil
}

// MustRegister adds a tool and panics if registration fails.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get returns the named tool, or nil.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.tools)
	sort.Strings(names)
	return names
}

// Tools returns the registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	return lo.Map(r.Names(), func(name string, _ int) Tool { return r.Get(name) })
}

// Call runs the named tool and folds the outcome into a Result.
func (r *Registry) Call(ctx context.Context, name string, params json.RawMessage) Result {
	t := r.Get(name)
	if t == nil {
		return Failure(errs.Invalid("tool", "unknown tool %q; available: %v", name, r.Names()))
	}

	ctx = logger.WithFields(ctx, zap.String("tool", name))
	data, err := t.Handle(ctx, params)
	if err != nil {
		if errs.KindOf(err) == errs.KindInternal {
			logger.ErrorCtx(ctx, err, zap.String("outcome", "tool failed"))
		} else {
			logger.InfoCtx(ctx, "tool returned an error", zap.String("kind", string(errs.KindOf(err))))
		}
		return Failure(err)
	}
	return Success(data)
}

// decode unmarshals params strictly into dst. Empty params decode as {}.
func decode(params json.RawMessage, dst any) error {
	params = bytes.TrimSpace(params)
	if len(params) == 0 || bytes.Equal(params, []byte("null")) {
		params = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Invalid("params", "%v", err)
	}
	return nil
}

// validator is implemented by inputs with constraints beyond their types.
type validator interface {
	validate() error
}

// tool adapts a typed function to Tool.
type tool[In any] struct {
	name        string
	description string
	params      []Param
	// ready reports a missing dependency, such as a signing credential.
	ready func() error
	run   func(ctx context.Context, in In) (any, error)
}

func (t *tool[In]) Name() string        { return t.name }
func (t *tool[In]) Description() string { return t.description }
func (t *tool[In]) Params() []Param     { return t.params }

func (t *tool[In]) Handle(ctx context.Context, params json.RawMessage) (any, error) {
	var in In
	if err := decode(params, &in); err != nil {
		return nil, err
	}
	if v, ok := any(&in).(validator); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	if t.ready != nil {
		if err := t.ready(); err != nil {
			return nil, err
		}
	}
	return t.run(ctx, in)
}
