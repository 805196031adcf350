package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/dshills/canvasundo/pkg/history"
	"github.com/dshills/canvasundo/pkg/scene"
	"github.com/tidwall/gjson"
)

// Result summarizes a finished run.
type Result struct {
	Steps    int
	State    history.State
	Stats    history.Stats
	Document *scene.Document
}

// Runner executes scripts against a graph and the engine recording it.
type Runner struct {
	graph  *scene.Graph
	engine *history.Engine
	logger *slog.Logger
	eval   *evaluator
}

// NewRunner creates a runner. A nil logger uses slog.Default().
func NewRunner(graph *scene.Graph, engine *history.Engine, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		graph:  graph,
		engine: engine,
		logger: logger.With(slog.String("component", "script")),
		eval:   newEvaluator(),
	}
}

// Run executes the steps in order and stops at the first failing step.
// A batch still open after the last step is committed.
func (r *Runner) Run(ctx context.Context, s *Script) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	r.logger.Debug("running script", slog.String("name", s.Name), slog.Int("steps", len(s.Steps)))

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.step(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
	}

	if r.engine.InBatch() {
		r.logger.Warn("committing batch left open at end of script",
			slog.Int("depth", r.engine.BatchDepth()))
		for r.engine.InBatch() {
			_ = r.engine.EndBatch()
		}
	}

	return &Result{
		Steps:    len(s.Steps),
		State:    r.engine.State(),
		Stats:    r.engine.Stats(),
		Document: r.graph.Document(),
	}, nil
}

func (r *Runner) step(st Step) error {
	switch st.Op {
	case OpAdd:
		return r.add(st)
	case OpRemove:
		return r.engine.Transaction("Remove "+st.ID, func() error {
			return r.graph.Remove(st.ID)
		})
	case OpSet:
		return r.set(st)
	case OpBegin:
		r.engine.BeginBatch(st.Label)
		return nil
	case OpEnd:
		return r.engine.EndBatch()
	case OpUndo:
		return r.ignoreEmpty(r.engine.Undo(), history.ErrNothingToUndo)
	case OpRedo:
		return r.ignoreEmpty(r.engine.Redo(), history.ErrNothingToRedo)
	case OpClear:
		r.engine.Clear()
		return nil
	case OpExpect:
		return r.expect(st)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

func (r *Runner) ignoreEmpty(err, empty error) error {
	if errors.Is(err, empty) {
		r.logger.Info("step had no effect", slog.String("reason", err.Error()))
		return nil
	}
	return err
}

func (r *Runner) add(st Step) error {
	kind := scene.Kind(st.Kind)
	if kind == "" {
		kind = scene.KindNode
	}
	cell := scene.Cell{ID: st.ID, Kind: kind, Attributes: scene.Attributes(st.Attrs).Clone()}
	id, err := r.graph.Add(cell)
	if err != nil {
		return err
	}
	r.logger.Debug("cell added", slog.String("cell", id), slog.String("kind", string(kind)))
	return nil
}

func (r *Runner) set(st Step) error {
	cell, ok := r.graph.Get(st.ID)
	if !ok {
		return fmt.Errorf("%w: %s", scene.ErrCellNotFound, st.ID)
	}

	patch := scene.Attributes(st.Attrs).Clone()
	if patch == nil {
		patch = make(scene.Attributes, len(st.Exprs))
	}
	if len(st.Exprs) > 0 {
		computed, err := r.eval.evaluate(cell, st.Exprs)
		if err != nil {
			return err
		}
		for k, v := range computed {
			patch[k] = v
		}
	}
	return r.graph.SetAttributes(st.ID, patch)
}

func (r *Runner) expect(st Step) error {
	cell, ok := r.graph.Get(st.ID)
	if st.Exists != nil && *st.Exists != ok {
		return fmt.Errorf("%w: cell %s exists=%t, want %t", ErrExpectationFailed, st.ID, ok, *st.Exists)
	}
	if st.Path == "" {
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: %s", scene.ErrCellNotFound, st.ID)
	}

	actual, err := scene.QueryCell(cell, st.Path)
	if err != nil {
		return err
	}

	want, err := json.Marshal(st.Equals)
	if err != nil {
		return fmt.Errorf("failed to encode expected value: %w", err)
	}
	expected := gjson.ParseBytes(want)

	if !reflect.DeepEqual(actual.Value(), expected.Value()) {
		return fmt.Errorf("%w: %s %s = %s, want %s",
			ErrExpectationFailed, st.ID, st.Path, describe(actual), describe(expected))
	}
	return nil
}

func describe(r gjson.Result) string {
	if !r.Exists() {
		return "<missing>"
	}
	return r.Raw
}
