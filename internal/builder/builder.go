// Package builder turns a parsed rig document into simulation-ready
// physics tables: dense node/beam arrays plus derived subsystems
// (wheels, differentials, rotators, cameras, wings), visual attachment
// requests and a diagnostics stream.
//
// Construction is single-threaded and strictly sequential: one
// document produces one rig end to end. Backing arrays are sized once
// from the estimator before anything takes an index into them, and a
// build either completes (possibly with per-feature degraded output)
// or fails outright; malformed records cost only the feature they
// describe.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel/metric"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// errCapacity marks a fixed construction capacity being exceeded; the
// remaining records of the offending section are abandoned but the rig
// keeps everything already built.
var errCapacity = errors.New("capacity exceeded")

// Builder constructs rigs from documents. It carries only
// configuration and instrumentation; per-build state lives in a
// buildContext owned by one Build call.
type Builder struct {
	logger   *slog.Logger
	sink     diag.Sink
	defaults config.BuildDefaults
	limits   config.Limits

	// OTEL metrics
	nodesBuilt     metric.Int64Counter
	beamsBuilt     metric.Int64Counter
	recordsSkipped metric.Int64Counter

	active *buildContext
}

// New creates a Builder. Uses the global OTel meter for metrics
// (no-op if not configured).
func New(logger *slog.Logger, sink diag.Sink, defaults config.BuildDefaults, limits config.Limits) (*Builder, error) {
	b := &Builder{
		logger:   logger,
		sink:     sink,
		defaults: defaults,
		limits:   limits,
	}

	m := meter()
	var err error

	b.nodesBuilt, err = m.Int64Counter(
		"builder.nodes.built",
		metric.WithDescription("Total nodes created across builds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nodes counter: %w", err)
	}
	b.beamsBuilt, err = m.Int64Counter(
		"builder.beams.built",
		metric.WithDescription("Total beams created across builds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating beams counter: %w", err)
	}
	b.recordsSkipped, err = m.Int64Counter(
		"builder.records.skipped",
		metric.WithDescription("Total document records skipped due to errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	return b, nil
}

// SectionAttrs returns a dynamic log-attribute provider exposing the
// section keyword currently under construction.
func (b *Builder) SectionAttrs() func() []slog.Attr {
	return func() []slog.Attr {
		if b.active == nil || b.active.keyword == "" {
			return nil
		}
		return []slog.Attr{slog.String("section", b.active.keyword)}
	}
}

// Build assembles one rig at the given origin position. The returned
// error is non-nil only for total failures; per-record problems
// degrade the output and surface on the diagnostics sink instead.
func (b *Builder) Build(doc *rigdef.Document, origin mgl32.Vec3) (*rig.Rig, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("document has no root module")
	}

	req := Estimate(doc)
	r := rig.New(doc.Name, req)
	r.Origin = origin

	c := newBuildContext(doc, r, b.sink, b.logger, b.defaults, b.limits)
	b.active = c
	defer func() { b.active = nil }()

	modules := doc.Selected()
	for _, m := range modules {
		if len(m.Axles) > 0 {
			c.hasAxlesSection = true
		}
	}

	b.logger.Debug("starting build",
		"rig", doc.Name,
		"modules", len(modules),
		"estNodes", req.Nodes,
		"estBeams", req.Beams)

	// Fixed section order across modules: the node table must be
	// complete before any cross-referencing section runs, and wheels
	// before the drivetrain sections that index them.
	for _, m := range modules {
		runSection(c, "nodes", m.Nodes, c.processNode)
	}
	for _, m := range modules {
		runSection(c, "fixes", m.Fixes, c.processFix)
		runSection(c, "beams", m.Beams, c.processBeam)
		runSection(c, "shocks", m.Shocks, c.processShock)
		runSection(c, "shocks2", m.Shocks2, func(s rigdef.Shock2) error {
			_, err := c.processShock2(s, rig.BoundShock2)
			return err
		})
		runSection(c, "shocks3", m.Shocks3, c.processShock3)
		runSection(c, "triggers", m.Triggers, c.processTrigger)
		runSection(c, "ropes", m.Ropes, c.processRope)
	}
	for _, m := range modules {
		runSection(c, "wheels", m.Wheels, c.processWheel)
		runSection(c, "wheels2", m.Wheels2, c.processWheel2)
		runSection(c, "meshwheels", m.MeshWheels, c.processMeshWheel)
		runSection(c, "flexbodywheels", m.FlexBodyWheels, c.processFlexBodyWheel)
	}
	for _, m := range modules {
		runSection(c, "rotators", m.Rotators, c.processRotator)
		runSection(c, "rotators2", m.Rotators2, c.processRotator2)
		runSection(c, "axles", m.Axles, c.processAxle)
		runSection(c, "interaxles", m.InterAxles, c.processInterAxle)
		if m.TransferCase != nil {
			runSection(c, "transfercase", []rigdef.TransferCase{*m.TransferCase}, c.processTransferCase)
		}
		runSection(c, "cameras", m.Cameras, c.processCamera)
		runSection(c, "cinecam", m.Cinecams, c.processCinecam)
		runSection(c, "wings", m.Wings, c.processWing)
		if m.FuseDrag != nil {
			runSection(c, "fusedrag", []rigdef.FuseDrag{*m.FuseDrag}, c.processFuseDrag)
		}
		runSection(c, "airbrakes", m.Airbrakes, c.processAirbrake)
	}

	c.keyword = ""
	c.finalize()

	ctx := context.Background()
	b.nodesBuilt.Add(ctx, int64(c.nodesBuilt))
	b.beamsBuilt.Add(ctx, int64(c.beamsBuilt))
	b.recordsSkipped.Add(ctx, int64(c.recordsSkipped))

	b.logger.Info("build complete",
		"rig", doc.Name,
		"nodes", r.NodeCount(),
		"beams", r.BeamCount(),
		"wheels", len(r.Wheels),
		"skipped", c.recordsSkipped)

	return r, nil
}

// runSection drives one section's records through the given builder
// function, applying the error tiers: a capacity error abandons the
// section's remaining records, any other error (including a structural
// failure surfacing as a panic in the feature under construction)
// skips just the offending record.
func runSection[T any](c *buildContext, keyword string, records []T, fn func(T) error) {
	if len(records) == 0 {
		return
	}
	c.keyword = keyword

	for i, rec := range records {
		err := runRecord(fn, rec)
		if err == nil {
			continue
		}
		c.recordsSkipped++
		if errors.Is(err, errCapacity) {
			c.sink.Error(keyword, fmt.Sprintf("record %d: %v; abandoning remaining %s records", i, err, keyword))
			return
		}
		c.sink.Error(keyword, fmt.Sprintf("record %d skipped: %v", i, err))
	}
}

// runRecord converts a panic inside a single feature build into an
// error, so one broken record never takes down the whole rig.
func runRecord[T any](fn func(T) error, rec T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("feature construction failed: %v", r)
		}
	}()
	return fn(rec)
}
