// Package engine orchestrates a generation run: reflect the catalog, rotate
// snapshots, select tables, run the emitters and report.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/schemasmith/schemasmith/internal/action"
	"github.com/schemasmith/schemasmith/internal/collection"
	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/discovery"
	"github.com/schemasmith/schemasmith/internal/emit"
	"github.com/schemasmith/schemasmith/internal/lock"
	"github.com/schemasmith/schemasmith/internal/report"
	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/selection"
	"github.com/schemasmith/schemasmith/internal/snapshot"
	"github.com/schemasmith/schemasmith/internal/state"
	"github.com/schemasmith/schemasmith/internal/typemap"
)

// ReflectorFactory opens a reflector for the configured source.
type ReflectorFactory func(cfg *config.Config) (discovery.Reflector, error)

// Engine is the run orchestrator shared by all commands.
type Engine struct {
	Config       *config.Config
	Logger       *slog.Logger
	Store        snapshot.Store
	RegistryPath string
	LockDir      string
	ReportDir    string
	NewReflector ReflectorFactory
}

// PickFunc lets an interactive caller narrow the selected tables after the
// snapshot sync, when table statuses are known.
type PickFunc func(tables []*schema.Table, status map[string]snapshot.Status) ([]*schema.Table, error)

// Options narrow one generation run.
type Options struct {
	Tables      []string // names or globs; empty selects every table
	Artifacts   []string // emitter names; empty runs the configured set
	ChangedOnly bool     // only tables pending as NEW or MODIFIED
	Pick        PickFunc
}

// New creates an Engine with the given config, logger and snapshot store.
func New(cfg *config.Config, logger *slog.Logger, store snapshot.Store) *Engine {
	return &Engine{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		RegistryPath: cfg.Registry,
		LockDir:      lock.DefaultDir,
		ReportDir:    cfg.Logging.Directory,
		NewReflector: DefaultReflector,
	}
}

// DefaultReflector opens the reflector matching source.type with the configured
// type map file and overrides applied.
func DefaultReflector(cfg *config.Config) (discovery.Reflector, error) {
	types, err := typemap.Load(cfg.Source.Type, cfg.TypemapFile, cfg.TypemapOverrides)
	if err != nil {
		return nil, fmt.Errorf("loading type map: %w", err)
	}
	return discovery.New(&cfg.Source, cfg.IgnoreTables, types)
}

// Reflect runs source database schema reflection.
func (e *Engine) Reflect(ctx context.Context) (*schema.Schema, error) {
	r, err := e.NewReflector(e.Config)
	if err != nil {
		return nil, fmt.Errorf("creating reflector: %w", err)
	}
	defer r.Close()

	if err := r.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting to source: %w", err)
	}
	s, err := r.Reflect(ctx)
	if err != nil {
		return nil, fmt.Errorf("reflecting schema: %w", err)
	}
	e.Logger.Info("schema reflected", "project", e.Config.ProjectName(), "tables", s.Len())
	return s, nil
}

// Sync rotates the snapshots of s and merges the resulting changes into the
// project's pending table statuses.
func (e *Engine) Sync(ctx context.Context, s *schema.Schema) (*snapshot.Tracker, error) {
	tracker, reg, err := e.sync(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := reg.Save(e.RegistryPath); err != nil {
		return nil, fmt.Errorf("saving registry: %w", err)
	}
	return tracker, nil
}

func (e *Engine) sync(ctx context.Context, s *schema.Schema) (*snapshot.Tracker, *state.Registry, error) {
	project := e.Config.ProjectName()
	tracker, err := snapshot.Sync(ctx, e.Store, project, s)
	if err != nil {
		return nil, nil, fmt.Errorf("syncing snapshots: %w", err)
	}
	for _, name := range tracker.Changed() {
		status, _ := tracker.Status(name)
		e.Logger.Info("table changed", "project", project, "table", name, "status", string(status))
	}

	reg, err := state.Load(e.RegistryPath)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := reg.Project(project); !ok {
		reg.AddProject(project, e.Config.Project.Root)
	}
	if err := reg.MergeTablesStatus(project, tracker.Changes()); err != nil {
		return nil, nil, err
	}
	return tracker, reg, nil
}

// Generate runs one generation pass and writes its report. Emitters run
// sequentially; the first emitter error aborts the run after the pending
// statuses have been saved.
func (e *Engine) Generate(ctx context.Context, opts Options) (*report.Report, error) {
	project := e.Config.ProjectName()
	if err := lock.Acquire(e.LockDir, project); err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(e.LockDir, project); err != nil {
			e.Logger.Warn("releasing lock", "project", project, "error", err)
		}
	}()

	// Settings are validated before the snapshots rotate.
	ectx, err := e.emitContext()
	if err != nil {
		return nil, err
	}
	artifacts := opts.Artifacts
	if len(artifacts) == 0 {
		artifacts = e.Config.Generate.Artifacts
	}
	emitters, err := emit.Lookup(artifacts)
	if err != nil {
		return nil, err
	}

	s, err := e.Reflect(ctx)
	if err != nil {
		return nil, err
	}
	tracker, reg, err := e.sync(ctx, s)
	if err != nil {
		return nil, err
	}
	// Statuses are persisted as soon as the snapshots rotate.
	if err := reg.Save(e.RegistryPath); err != nil {
		return nil, fmt.Errorf("saving registry: %w", err)
	}
	ectx.Schema = s
	ectx.Tracker = tracker

	pending := reg.TablesStatus(project)
	tables := selection.Select(s.Tables(), selection.Criteria{
		Patterns:    opts.Tables,
		ChangedOnly: opts.ChangedOnly,
		Changed:     keys(pending),
	})
	if opts.Pick != nil {
		if tables, err = opts.Pick(tables, pending); err != nil {
			return nil, err
		}
	}

	rep := report.New(project)
	rep.Rotated = tracker.Rotated()
	rep.Fingerprint = tracker.Fingerprint()
	rep.Changes = tracker.Changes()
	rep.Orphans = selection.FindOrphanedReferences(tables)
	for _, o := range rep.Orphans {
		e.Logger.Warn("selected table references an unselected table",
			"table", o.Table, "column", o.Column, "referenced_table", o.ReferencedTable)
	}

	var done []string
	for _, t := range tables {
		rep.Tables = append(rep.Tables, t.Name)
		ok := true
		for _, em := range emitters {
			if em.SchemaWide() {
				continue
			}
			outcomes, err := em.Emit(ectx, t)
			if err != nil {
				return rep, fmt.Errorf("emitting %s for %s: %w", em.Name(), t.Name, err)
			}
			rep.Add(outcomes...)
			ok = ok && allOK(outcomes)
		}
		if ok {
			done = append(done, t.Name)
		}
	}
	if len(tables) > 0 {
		for _, em := range emitters {
			if !em.SchemaWide() {
				continue
			}
			outcomes, err := em.Emit(ectx, nil)
			if err != nil {
				return rep, fmt.Errorf("emitting %s: %w", em.Name(), err)
			}
			rep.Add(outcomes...)
		}
	}

	// A partial artifact set leaves the other artifacts of the table stale.
	if coversAll(artifacts, e.Config.Generate.Artifacts) {
		for _, name := range done {
			reg.ClearTableStatus(project, name)
		}
	}
	reg.MarkOld(project)
	reg.SetRequestBodies(project, ectx.Modes.Store.Name(), ectx.Modes.BulkStore.Name())
	if slices.Contains(artifacts, "collection") && len(tables) > 0 {
		reg.SetCollection(project, emit.CollectionPath(ectx))
	}
	if err := reg.Save(e.RegistryPath); err != nil {
		return rep, fmt.Errorf("saving registry: %w", err)
	}

	if err := report.WriteJSON(rep, e.ReportPath()); err != nil {
		return rep, err
	}
	e.Logger.Info("generation complete", "project", project, "tables", len(rep.Tables),
		"created", rep.Counts[emit.KindCreated], "updated", rep.Counts[emit.KindUpdated],
		"unchanged", rep.Counts[emit.KindUnchanged], "no_match", rep.Counts[emit.KindNoMatch])
	return rep, nil
}

// ReportPath is where the report of the last run of the project is written.
func (e *Engine) ReportPath() string {
	return report.Path(config.ExpandHome(e.ReportDir), e.Config.ProjectName())
}

// emitContext builds the run context from the configuration. Schema and
// Tracker are filled in once the snapshots have been synced.
func (e *Engine) emitContext() (*emit.Context, error) {
	actions, err := action.Parse(e.Config.Generate.Actions)
	if err != nil {
		return nil, err
	}
	store, err := collection.ParseBodyMode(e.Config.Generate.StoreBody)
	if err != nil {
		return nil, fmt.Errorf("store body: %w", err)
	}
	bulk, err := collection.ParseBodyMode(e.Config.Generate.BulkStoreBody)
	if err != nil {
		return nil, fmt.Errorf("bulk store body: %w", err)
	}
	tmpl, err := emit.LoadTemplates(e.Config.Project.Templates)
	if err != nil {
		return nil, err
	}
	return &emit.Context{
		Project:   e.Config.ProjectName(),
		Root:      e.Config.Project.Root,
		Paths:     e.Config.Paths,
		Actions:   actions,
		Modes:     collection.Modes{Store: store, BulkStore: bulk},
		Templates: tmpl,
		Logger:    e.Logger,
	}, nil
}

func allOK(outcomes []emit.Outcome) bool {
	for _, o := range outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

func coversAll(ran, configured []string) bool {
	for _, name := range configured {
		if !slices.Contains(ran, name) {
			return false
		}
	}
	return true
}

func keys(m map[string]snapshot.Status) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
