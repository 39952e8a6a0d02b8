package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/discovery"
	"github.com/schemasmith/schemasmith/internal/emit"
	"github.com/schemasmith/schemasmith/internal/lock"
	"github.com/schemasmith/schemasmith/internal/report"
	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/snapshot"
	"github.com/schemasmith/schemasmith/internal/state"
)

func testSchema(t *testing.T, titleLen int) *schema.Schema {
	t.Helper()
	users := schema.NewTable("users", []schema.Column{
		{Name: "id", Type: schema.BigInteger, Unsigned: true, Key: schema.KeyPrimary},
		{Name: "name", Type: schema.String, MaxLength: schema.IntPtr(255)},
		{Name: "created_at", Type: schema.DateTime, Nullable: true},
		{Name: "updated_at", Type: schema.DateTime, Nullable: true},
	})
	posts := schema.NewTable("posts", []schema.Column{
		{Name: "id", Type: schema.BigInteger, Unsigned: true, Key: schema.KeyPrimary},
		{Name: "title", Type: schema.String, MaxLength: schema.IntPtr(titleLen)},
		{Name: "user_id", Type: schema.BigInteger, Unsigned: true,
			ForeignKey: &schema.ForeignKey{ReferencedTable: "users", ReferencedColumn: "id"}},
	})
	s, err := schema.New("shop", []*schema.Table{users, posts})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

type fixture struct {
	engine    *Engine
	reflector *discovery.MockReflector
	store     *snapshot.MockStore
	root      string
}

func newFixture(t *testing.T, s *schema.Schema) *fixture {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "shop")
	cfg := &config.Config{
		Version:  1,
		Project:  config.ProjectConfig{Name: "shop", Root: root},
		Source:   config.SourceConfig{Type: "mysql"},
		Registry: filepath.Join(dir, "projects.yaml"),
		Paths: config.PathsConfig{
			Models: "app/Models", Factories: "database/factories", Requests: "app/Http/Requests",
			Resources: "app/Http/Resources", Lang: "lang", Collections: "postman",
		},
		Generate: config.GenerateConfig{
			Artifacts:     []string{"model", "factory", "request", "resource", "lang", "collection"},
			Actions:       []string{"getAll", "findById", "store", "bulkStore", "update", "delete", "bulkDelete"},
			StoreBody:     "raw",
			BulkStoreBody: "formdata",
		},
		Logging: config.LogConfig{Directory: filepath.Join(dir, "logs")},
	}
	store := snapshot.NewMockStore()
	e := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), store)
	e.LockDir = filepath.Join(dir, "locks")
	reflector := &discovery.MockReflector{Schema: s}
	e.NewReflector = func(*config.Config) (discovery.Reflector, error) { return reflector, nil }
	return &fixture{engine: e, reflector: reflector, store: store, root: root}
}

func (f *fixture) registry(t *testing.T) *state.Registry {
	t.Helper()
	reg, err := state.Load(f.engine.RegistryPath)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Version: 1, Registry: "/tmp/projects.yaml"}
	e := New(cfg, slog.Default(), snapshot.NewMockStore())
	if e.Config != cfg || e.Logger == nil || e.Store == nil {
		t.Error("engine fields not set")
	}
	if e.RegistryPath != "/tmp/projects.yaml" {
		t.Errorf("RegistryPath = %q", e.RegistryPath)
	}
	if e.NewReflector == nil {
		t.Error("expected default reflector factory")
	}
}

func TestReflect_ClosesReflector(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	s, err := f.engine.Reflect(context.Background())
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 tables, got %d", s.Len())
	}
	if !f.reflector.Closed {
		t.Error("reflector not closed")
	}
}

func TestReflect_Errors(t *testing.T) {
	f := newFixture(t, nil)
	f.reflector.ConnectErr = errors.New("connection refused")
	if _, err := f.engine.Reflect(context.Background()); err == nil || !strings.Contains(err.Error(), "connecting to source") {
		t.Errorf("expected connect error, got %v", err)
	}

	f.reflector.ConnectErr = nil
	dangling := &schema.DanglingReferenceError{Table: "posts", Column: "user_id", ReferencedTable: "users"}
	f.reflector.ReflectErr = dangling
	_, err := f.engine.Reflect(context.Background())
	var target *schema.DanglingReferenceError
	if !errors.As(err, &target) {
		t.Errorf("expected dangling reference error, got %v", err)
	}
}

func TestSync_WritesRegistry(t *testing.T) {
	f := newFixture(t, nil)
	tracker, err := f.engine.Sync(context.Background(), testSchema(t, 120))
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(tracker.Changes()) != 2 {
		t.Errorf("expected both tables NEW, got %v", tracker.Changes())
	}
	reg := f.registry(t)
	p, ok := reg.Project("shop")
	if !ok {
		t.Fatal("project not registered")
	}
	if !p.IsNew || p.Path != f.root {
		t.Errorf("unexpected project entry %+v", p)
	}
	if p.TablesStatus["users"] != snapshot.StatusNew || p.TablesStatus["posts"] != snapshot.StatusNew {
		t.Errorf("unexpected statuses %v", p.TablesStatus)
	}
}

func TestGenerate_FirstRun(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	rep, err := f.engine.Generate(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(rep.Tables) != 2 {
		t.Errorf("expected 2 tables, got %v", rep.Tables)
	}
	if rep.Counts[emit.KindNoMatch] != 0 {
		t.Errorf("unexpected no-match outcomes: %+v", rep.NoMatches())
	}
	for _, rel := range []string{
		"app/Models/User.php", "app/Models/Post.php",
		"database/factories/PostFactory.php",
		"app/Http/Requests/PostRequest.php",
		"app/Http/Resources/UserResource.php",
		"lang/en/validation.php", "lang/ar/models.php",
		"postman/shop.postman_collection.json",
	} {
		if _, err := os.Stat(filepath.Join(f.root, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	p, _ := f.registry(t).Project("shop")
	if p.IsNew {
		t.Error("project should be marked old after generation")
	}
	if len(p.TablesStatus) != 0 {
		t.Errorf("expected statuses cleared, got %v", p.TablesStatus)
	}
	if p.Request.BulkStore != "formdata" {
		t.Errorf("expected formdata bulk store body, got %s", p.Request.BulkStore)
	}
	if !strings.HasSuffix(p.Postman.Collection, "shop.postman_collection.json") {
		t.Errorf("unexpected collection path %s", p.Postman.Collection)
	}

	saved, err := report.ReadJSON(f.engine.ReportPath())
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if saved.Counts[emit.KindCreated] != rep.Counts[emit.KindCreated] {
		t.Errorf("saved report differs from returned report")
	}
	if want, _ := snapshot.Fingerprint(testSchema(t, 120)); saved.Fingerprint != want {
		t.Errorf("report fingerprint = %q, want %q", saved.Fingerprint, want)
	}
	if held, _, _ := isLocked(f); held {
		t.Error("lock not released")
	}
}

func TestGenerate_SecondRunUnchanged(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	if _, err := f.engine.Generate(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	rep, err := f.engine.Generate(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Rotated || len(rep.Changes) != 0 {
		t.Errorf("identical schema should not rotate, got rotated=%v changes=%v", rep.Rotated, rep.Changes)
	}
	if n := len(rep.Artifacts); rep.Counts[emit.KindUnchanged] != n {
		t.Errorf("expected all %d artifacts unchanged, got %v", n, rep.Counts)
	}
}

func TestGenerate_ChangedOnly(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	if _, err := f.engine.Generate(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}

	f.reflector.Schema = testSchema(t, 60)
	rep, err := f.engine.Generate(context.Background(), Options{ChangedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Tables) != 1 || rep.Tables[0] != "posts" {
		t.Fatalf("expected only posts, got %v", rep.Tables)
	}
	if rep.Changes["posts"] != snapshot.StatusModified {
		t.Errorf("expected posts MODIFIED, got %v", rep.Changes)
	}
	factory, err := os.ReadFile(filepath.Join(f.root, "database/factories/PostFactory.php"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(factory), "text(60)") {
		t.Errorf("factory not regenerated for changed column:\n%s", factory)
	}
}

func TestGenerate_PartialArtifactsKeepStatus(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	if _, err := f.engine.Generate(context.Background(), Options{Artifacts: []string{"model"}}); err != nil {
		t.Fatal(err)
	}
	p, _ := f.registry(t).Project("shop")
	if len(p.TablesStatus) != 2 {
		t.Errorf("partial run must keep tables pending, got %v", p.TablesStatus)
	}
	if _, err := os.Stat(filepath.Join(f.root, "database/factories/UserFactory.php")); !os.IsNotExist(err) {
		t.Error("factory should not be generated")
	}
}

func TestGenerate_NoMatchKeepsStatus(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	path := filepath.Join(f.root, "app/Http/Resources/PostResource.php")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("<?php\n\nclass PostResource {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err := f.engine.Generate(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Counts[emit.KindNoMatch] != 1 {
		t.Errorf("expected one no-match, got %v", rep.Counts)
	}
	p, _ := f.registry(t).Project("shop")
	if p.TablesStatus["posts"] != snapshot.StatusNew {
		t.Errorf("posts should stay pending, got %v", p.TablesStatus)
	}
	if _, ok := p.TablesStatus["users"]; ok {
		t.Error("users should be cleared")
	}
}

func TestGenerate_PickAndOrphans(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	var seen map[string]snapshot.Status
	rep, err := f.engine.Generate(context.Background(), Options{
		Pick: func(tables []*schema.Table, status map[string]snapshot.Status) ([]*schema.Table, error) {
			seen = status
			for _, t := range tables {
				if t.Name == "posts" {
					return []*schema.Table{t}, nil
				}
			}
			return nil, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if seen["users"] != snapshot.StatusNew {
		t.Errorf("picker should see pending statuses, got %v", seen)
	}
	if len(rep.Orphans) != 1 || rep.Orphans[0].ReferencedTable != "users" {
		t.Errorf("expected orphaned reference to users, got %+v", rep.Orphans)
	}
}

func TestGenerate_UnknownArtifact(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	if _, err := f.engine.Generate(context.Background(), Options{Artifacts: []string{"widget"}}); err == nil {
		t.Error("expected error for unknown artifact")
	}
	if f.store.Saves != 0 {
		t.Errorf("invalid settings must not rotate snapshots, got %d saves", f.store.Saves)
	}
}

func TestGenerate_InvalidSettingsDoNotRotate(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	f.engine.Config.Generate.StoreBody = "xml"
	if _, err := f.engine.Generate(context.Background(), Options{}); err == nil {
		t.Fatal("expected body mode error")
	}
	if f.store.Saves != 0 {
		t.Errorf("expected no snapshot writes, got %d", f.store.Saves)
	}
}

func TestGenerate_CancelledPickKeepsChanges(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	if _, err := f.engine.Generate(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}

	f.reflector.Schema = testSchema(t, 60)
	cancelled := errors.New("cancelled")
	_, err := f.engine.Generate(context.Background(), Options{
		Pick: func([]*schema.Table, map[string]snapshot.Status) ([]*schema.Table, error) {
			return nil, cancelled
		},
	})
	if !errors.Is(err, cancelled) {
		t.Fatalf("expected cancel error, got %v", err)
	}
	p, _ := f.registry(t).Project("shop")
	if p.TablesStatus["posts"] != snapshot.StatusModified {
		t.Fatalf("posts change lost after cancel, statuses %v", p.TablesStatus)
	}

	rep, err := f.engine.Generate(context.Background(), Options{ChangedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Tables) != 1 || rep.Tables[0] != "posts" {
		t.Errorf("expected posts on the next changed-only run, got %v", rep.Tables)
	}
	if rep.Rotated {
		t.Error("the schema was already rotated by the cancelled run")
	}
}

func TestGenerate_EmitterErrorKeepsChanges(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	// a directory where the model file belongs makes the model emitter fail
	if err := os.MkdirAll(filepath.Join(f.root, "app/Models/Post.php"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.Generate(context.Background(), Options{}); err == nil {
		t.Fatal("expected emitter error")
	}
	p, ok := f.registry(t).Project("shop")
	if !ok {
		t.Fatal("project not registered after failed run")
	}
	if p.TablesStatus["posts"] != snapshot.StatusNew || p.TablesStatus["users"] != snapshot.StatusNew {
		t.Errorf("expected both tables pending, got %v", p.TablesStatus)
	}
}

func TestGenerate_SnapshotFailure(t *testing.T) {
	f := newFixture(t, testSchema(t, 120))
	f.store.LoadErr = errors.New("store offline")
	if _, err := f.engine.Generate(context.Background(), Options{}); err == nil {
		t.Error("expected snapshot error")
	}
}

func isLocked(f *fixture) (bool, int, error) {
	return lock.IsHeld(f.engine.LockDir, f.engine.Config.ProjectName())
}
