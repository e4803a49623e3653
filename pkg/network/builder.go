package network

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gridcase/csv2mgc/pkg/decode"
	"github.com/gridcase/csv2mgc/pkg/logging"
	"github.com/gridcase/csv2mgc/pkg/model"
)

// KindStats summarizes one source of a build.
type KindStats struct {
	Kind      model.Kind `json:"kind"`
	Source    string     `json:"source"`
	Rows      int        `json:"rows"`
	Added     int        `json:"added"`
	Skipped   int        `json:"skipped"`   // rows belonging to another kind
	Discarded int        `json:"discarded"` // rows that failed to decode
	Failed    bool       `json:"failed"`    // the whole source was unreadable
	Err       string     `json:"error,omitempty"`
}

// Result is the outcome of one build.
type Result struct {
	RunID    uuid.UUID     `json:"runId"`
	Built    time.Time     `json:"built"`
	Duration time.Duration `json:"duration"`
	Case     *model.Case   `json:"case"`
	Report   Report        `json:"report"`
	Stats    []KindStats   `json:"stats"`
}

// Builder decodes sources into a case.
type Builder struct {
	Registry *decode.Registry
}

// NewBuilder returns a builder using registry.
func NewBuilder(registry *decode.Registry) *Builder {
	return &Builder{Registry: registry}
}

// Build creates a case from overrides, decodes every source in dependency
// order and validates the result. Rows that fail to decode are discarded and
// unreadable sources are skipped; both are reported in the stats. Build only
// fails for invalid overrides or a cancelled context.
func (b *Builder) Build(ctx context.Context, overrides model.Attrs, sources []Source) (*Result, error) {
	start := time.Now()
	c, err := model.NewCase(overrides)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.New(), Built: start, Case: c}
	log := logging.New("build").With("runID", res.RunID.String())
	log.Info("building case", "name", c.Meta.Name, "sources", len(sources))

	for _, src := range ordered(sources) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("building case: %w", err)
		}
		stats := b.stage(ctx, log, c, src)
		res.Stats = append(res.Stats, stats)
	}

	res.Report = Validate(c)
	for _, f := range res.Report.Findings {
		log.Warn("validation finding", "severity", f.Severity, "code", f.Code, "kind", f.Kind, "id", f.ID, "message", f.Message)
	}

	res.Duration = time.Since(start)
	log.Info("case built",
		"junctions", len(c.Junctions),
		"pipes", len(c.Pipes),
		"compressors", len(c.Compressors),
		"findings", len(res.Report.Findings),
		"durationMs", res.Duration.Milliseconds(),
	)
	return res, nil
}

// stage decodes the rows of one source into c.
func (b *Builder) stage(ctx context.Context, log *slog.Logger, c *model.Case, src Source) KindStats {
	kind := src.Kind()
	stats := KindStats{Kind: kind, Source: src.Name()}

	if _, ok := b.Registry.Lookup(kind); !ok {
		stats.Failed = true
		stats.Err = fmt.Sprintf("no decoder for kind %q", kind)
		log.Warn("skipping source", "kind", kind, "source", stats.Source, "error", stats.Err)
		return stats
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		stats.Failed = true
		stats.Err = err.Error()
		log.Warn("skipping source", "kind", kind, "source", stats.Source, "error", err)
		return stats
	}
	stats.Rows = len(rows)

	for i, row := range rows {
		e, err := b.Registry.Decode(kind, row, c)
		switch {
		case err != nil:
			stats.Discarded++
			c.Discarded[kind]++
			log.Debug("discarding row", "kind", kind, "source", stats.Source, "row", i+1, "error", err)
		case e == nil:
			stats.Skipped++
		default:
			if err := c.Add(e); err != nil {
				stats.Discarded++
				c.Discarded[kind]++
				log.Debug("discarding row", "kind", kind, "source", stats.Source, "row", i+1, "error", err)
				continue
			}
			stats.Added++
		}
	}

	log.Info("decoded source",
		"kind", kind,
		"source", stats.Source,
		"added", stats.Added,
		"discarded", fmt.Sprintf("%d/%d", stats.Discarded, stats.Rows),
	)
	return stats
}

// ordered sorts sources by decode order, keeping input order within a kind.
// Kinds outside the decode order go last.
func ordered(sources []Source) []Source {
	rank := func(k model.Kind) int {
		if i := slices.Index(model.DecodeOrder, k); i >= 0 {
			return i
		}
		return len(model.DecodeOrder)
	}
	out := slices.Clone(sources)
	slices.SortStableFunc(out, func(a, b Source) int {
		return rank(a.Kind()) - rank(b.Kind())
	})
	return out
}
