// Package treediff diffs two HTML documents and produces a list of
// positional patches that transform the first into the second.
//
// The pipeline has four stages: build trees from the documents
// (pkg/htmltree), match nodes between them (pkg/match), derive an
// abstract edit script (pkg/editscript), and translate the script into
// concrete patches (pkg/patch). This package wires the stages together;
// use the sub-packages directly for finer control.
package treediff

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/treediff-dev/treediff/pkg/editscript"
	"github.com/treediff-dev/treediff/pkg/htmltree"
	"github.com/treediff-dev/treediff/pkg/match"
	"github.com/treediff-dev/treediff/pkg/patch"
)

const tracerName = "treediff"

// Option tunes a Diff or Script call.
type Option func(*options)

type options struct {
	match match.Config
}

// WithMinHeight sets the minimum subtree height for exact top-down
// matching. 0 lets single leaves participate.
func WithMinHeight(h int) Option {
	return func(o *options) {
		o.match.MinHeight = h
	}
}

// WithSimilarityThreshold sets the minimum Dice coefficient for the
// bottom-up matching phase.
func WithSimilarityThreshold(t float64) Option {
	return func(o *options) {
		o.match.SimilarityThreshold = t
	}
}

func buildOptions(opts []Option) *options {
	o := &options{match: match.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Diff parses two HTML documents and returns the patches that transform
// the first body into the second. Patches apply strictly in order.
func Diff(ctx context.Context, oldDoc, newDoc io.Reader, opts ...Option) ([]patch.Patch, error) {
	o := buildOptions(opts)

	ctx, span := tracer().Start(ctx, "treediff.Diff", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	treeA, err := htmltree.Build(oldDoc)
	if err != nil {
		return nil, fmt.Errorf("parse old document: %w", err)
	}
	treeB, err := htmltree.Build(newDoc)
	if err != nil {
		return nil, fmt.Errorf("parse new document: %w", err)
	}
	span.SetAttributes(
		attribute.Int("treediff.nodes_old", treeA.Len()),
		attribute.Int("treediff.nodes_new", treeB.Len()),
	)

	_, matchSpan := tracer().Start(ctx, "treediff.match")
	m := match.Compute(treeA, treeB, o.match)
	matchSpan.SetAttributes(attribute.Int("treediff.matched_pairs", m.Len()))
	matchSpan.End()

	_, scriptSpan := tracer().Start(ctx, "treediff.script")
	ops := editscript.Generate(treeA, treeB, m)
	scriptSpan.SetAttributes(attribute.Int("treediff.ops", len(ops)))
	scriptSpan.End()

	_, translateSpan := tracer().Start(ctx, "treediff.translate")
	patches := patch.Translate(treeA, treeB, m, ops, htmltree.NewResolver(treeB))
	translateSpan.SetAttributes(attribute.Int("treediff.patches", len(patches)))
	translateSpan.End()

	span.SetAttributes(attribute.Int("treediff.patches", len(patches)))
	return patches, nil
}

// Script parses two HTML documents and returns the abstract edit script
// between their bodies, without translating it to patches.
func Script(ctx context.Context, oldDoc, newDoc io.Reader, opts ...Option) ([]editscript.Op, error) {
	o := buildOptions(opts)

	_, span := tracer().Start(ctx, "treediff.Script", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	treeA, err := htmltree.Build(oldDoc)
	if err != nil {
		return nil, fmt.Errorf("parse old document: %w", err)
	}
	treeB, err := htmltree.Build(newDoc)
	if err != nil {
		return nil, fmt.Errorf("parse new document: %w", err)
	}

	m := match.Compute(treeA, treeB, o.match)
	ops := editscript.Generate(treeA, treeB, m)
	span.SetAttributes(attribute.Int("treediff.ops", len(ops)))
	return ops, nil
}

// tracer resolves from the global provider on each call, so a provider
// installed after init is still picked up.
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
