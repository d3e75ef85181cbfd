package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mapgrid/lakeproc/pkg/errors"
)

// Category buckets tools by how long their compute step may run; it
// sets the timeout the runner enforces on the pure function.
type Category string

const (
	// CategoryShort covers quick analytics (clips, buffers, joins).
	CategoryShort Category = "short"

	// CategoryLong covers multi-step workflows.
	CategoryLong Category = "long"
)

// Timeout returns the compute deadline for the category.
func (c Category) Timeout() time.Duration {
	if c == CategoryLong {
		return 120 * time.Second
	}
	return 30 * time.Second
}

// PureArgs is what a tool's compute function receives: its pure value
// fields plus local file paths substituted for every path field.
type PureArgs struct {
	// Values holds the pass-through value fields, keyed by pure name.
	Values map[string]interface{}

	// InputPaths maps each input / overlay path field to the exported
	// file it was materialized into.
	InputPaths map[string]string

	// OutputPath is where the function must write its result.
	OutputPath string
}

// PureResult is what a compute function returns.
type PureResult struct {
	// OutputPath is the file the result was written to; usually the
	// requested OutputPath, but a function may substitute its own.
	OutputPath string
}

// RunFunc is a tool's pure compute function. It reads and writes only
// the files named in its args; it never touches the lake, the stores or
// the network. The context carries the category deadline.
type RunFunc func(ctx context.Context, args *PureArgs) (*PureResult, error)

// Tool is one registered tool: its schemas, category and compute
// function. The derived schema is fixed at registration.
type Tool struct {
	Name     string
	Category Category
	Pure     PureSchema
	Derived  DerivedSchema
	Run      RunFunc
}

// Registry holds the registered tools. Tools register at process start
// up; afterwards the registry is read-only.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]*Tool{}}
}

// Register derives the dataset-oriented schema from the pure shape and
// records the tool. Registering the same name twice is an error.
func (r *Registry) Register(name string, category Category, pure PureSchema, run RunFunc) error {
	derived, err := Derive(pure)
	if err != nil {
		return fmt.Errorf("tool %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("%w: tool %q registered twice", errors.ErrInvalidArg, name)
	}
	r.tools[name] = &Tool{Name: name, Category: category, Pure: pure, Derived: derived, Run: run}
	return nil
}

// Get returns a tool by name, or ErrNoSuchTool.
func (r *Registry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoSuchTool, name)
	}
	return t, nil
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := []string{}
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
