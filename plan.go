package caudit

import (
	"io"

	"github.com/pkg/errors"
)

// Source is the interface for getting unified trips one record at a time.
// Record returns io.EOF when the source is exhausted.
type Source interface {
	Record() (Trip, error)
}

// Reducer consumes trips from a scan and accumulates one output table.
// Reducers with their own filters (leakage, velocity) apply them inside Add.
type Reducer interface {
	Add(t Trip)
}

// Plan is a deferred scan over trip sources. Stages are accumulated up front
// - derives run on every row, the classifier splits rows into the ghost and
// clean partitions, and each partition's reducers are fed in place - so that
// however many output tables are wired in, every source file is read exactly
// once. No per-row work happens until Run.
type Plan struct {
	derives  []func(*Trip)
	classify func(*Trip) bool
	ghost    []Reducer
	clean    []Reducer
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{}
}

// Derive appends a row-wise transform stage.
func (p *Plan) Derive(fn func(*Trip)) *Plan {
	p.derives = append(p.derives, fn)
	return p
}

// Classify sets the predicate partitioning rows into ghost (true) and clean
// (false). Without a classifier every row is clean.
func (p *Plan) Classify(pred func(*Trip) bool) *Plan {
	p.classify = pred
	return p
}

// ToGhost routes the ghost partition to the given reducers.
func (p *Plan) ToGhost(rs ...Reducer) *Plan {
	p.ghost = append(p.ghost, rs...)
	return p
}

// ToClean routes the clean partition to the given reducers.
func (p *Plan) ToClean(rs ...Reducer) *Plan {
	p.clean = append(p.clean, rs...)
	return p
}

// Run scans one source to exhaustion, feeding every wired reducer. It may be
// called once per source file; reducer state accumulates across calls. The
// ghost and clean partitions are disjoint and together cover every row the
// source yields. Returns the number of rows scanned.
func (p *Plan) Run(src Source) (int, error) {
	n := 0
	for {
		t, err := src.Record()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, errors.Wrap(err, "reading record")
		}
		n++
		for _, d := range p.derives {
			d(&t)
		}
		if p.classify != nil && p.classify(&t) {
			for _, r := range p.ghost {
				r.Add(t)
			}
			continue
		}
		for _, r := range p.clean {
			r.Add(t)
		}
	}
}
