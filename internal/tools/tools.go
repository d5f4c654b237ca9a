// Package tools defines the retrieval procedure registry. Every tool
// takes a JSON request, runs resolve/query/rank/aggregate steps, and
// returns a formatted text blob for the renderer.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coursecompass/advisor-go/internal/catalog"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/feedback"
	"github.com/coursecompass/advisor-go/internal/logger"
	"github.com/coursecompass/advisor-go/internal/metrics"
	"github.com/coursecompass/advisor-go/internal/randutil"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/refdata"
	"github.com/coursecompass/advisor-go/internal/resolve"
)

// HandlerFunc runs one tool against a raw JSON request.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (string, error)

// Decode adapts a typed request handler into a HandlerFunc.
func Decode[Req any](fn func(context.Context, Req) (string, error)) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (string, error) {
		var req Req
		if len(params) > 0 {
			if err := json.Unmarshal(params, &req); err != nil {
				return "", fmt.Errorf("decode request: %w", domerrors.ErrInvalidInput)
			}
		}
		return fn(ctx, req)
	}
}

// Tool is one registered retrieval procedure.
type Tool struct {
	Name        string
	Description string
	Handler     HandlerFunc
}

// Deps bundles the shared collaborators handed to every tool group.
type Deps struct {
	Store      catalog.Store
	Snapshot   refdata.Source
	Resolver   *resolve.Resolver
	Ranker     *rank.Ranker
	Aggregator *feedback.Aggregator
	Rand       randutil.Source
	Metrics    *metrics.Metrics
	Logger     *logger.Logger

	// Academic calendar for "this term" queries.
	CurrentTerm string
	CurrentYear int

	// TopK is the default result count for ranking tools.
	TopK int
}

// Registry collects tools by name.
type Registry struct {
	tools  []Tool
	byName map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]int{}}
}

// Add registers tools. Later registrations with a duplicate name replace
// the earlier one.
func (r *Registry) Add(tools ...Tool) {
	for _, tool := range tools {
		if i, ok := r.byName[tool.Name]; ok {
			r.tools[i] = tool
			continue
		}
		r.byName[tool.Name] = len(r.tools)
		r.tools = append(r.tools, tool)
	}
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// List returns all tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}
