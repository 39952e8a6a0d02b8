package state

import (
	"path/filepath"
	"testing"

	"github.com/schemasmith/schemasmith/internal/snapshot"
)

func TestLoadMissingFile(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "projects.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Projects) != 0 {
		t.Errorf("expected empty registry, got %d projects", len(r.Projects))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "projects.yaml")
	r := New()
	r.AddProject("shop", "/srv/shop")
	r.SetRequestBodies("shop", "formdata", "raw")
	if err := r.MergeTablesStatus("shop", map[string]snapshot.Status{"users": snapshot.StatusNew}); err != nil {
		t.Fatal(err)
	}
	if err := r.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, ok := loaded.Project("shop")
	if !ok {
		t.Fatal("expected shop to be registered")
	}
	if p.Path != "/srv/shop" || !p.IsNew {
		t.Errorf("unexpected project %+v", p)
	}
	if p.Request.Store != "formdata" || p.Request.BulkStore != "raw" {
		t.Errorf("unexpected request bodies %+v", p.Request)
	}
	if p.TablesStatus["users"] != snapshot.StatusNew {
		t.Errorf("expected users NEW, got %v", p.TablesStatus)
	}
}

func TestMergeTablesStatus(t *testing.T) {
	r := New()
	r.AddProject("shop", "/srv/shop")

	_ = r.MergeTablesStatus("shop", map[string]snapshot.Status{"users": snapshot.StatusNew, "posts": snapshot.StatusModified})
	_ = r.MergeTablesStatus("shop", map[string]snapshot.Status{"users": snapshot.StatusModified, "tags": snapshot.StatusNew})

	got := r.TablesStatus("shop")
	if got["users"] != snapshot.StatusNew {
		t.Errorf("expected pending NEW to survive a later MODIFIED, got %s", got["users"])
	}
	if got["posts"] != snapshot.StatusModified || got["tags"] != snapshot.StatusNew {
		t.Errorf("unexpected statuses %v", got)
	}

	if err := r.MergeTablesStatus("missing", nil); err == nil {
		t.Error("expected error for unregistered project")
	}
}

func TestClearTableStatus(t *testing.T) {
	r := New()
	r.AddProject("shop", "/srv/shop")
	_ = r.MergeTablesStatus("shop", map[string]snapshot.Status{"users": snapshot.StatusNew})

	if !r.ClearTableStatus("shop", "users") {
		t.Error("expected users to be cleared")
	}
	if r.ClearTableStatus("shop", "users") {
		t.Error("expected second clear to report nothing removed")
	}
	if len(r.TablesStatus("shop")) != 0 {
		t.Errorf("expected empty status, got %v", r.TablesStatus("shop"))
	}
}

func TestProjectLifecycle(t *testing.T) {
	r := New()
	r.AddProject("b", "/b")
	r.AddProject("a", "/a")
	if names := r.Names(); len(names) != 2 || names[0] != "a" {
		t.Errorf("expected sorted names, got %v", names)
	}

	r.MarkOld("a")
	if p, _ := r.Project("a"); p.IsNew {
		t.Error("expected a to be marked old")
	}
	r.AddProject("a", "/moved")
	if p, _ := r.Project("a"); p.Path != "/moved" || p.IsNew {
		t.Errorf("expected re-adding to update path only, got %+v", p)
	}

	r.SetCollection("a", "/a/postman/a.postman_collection.json")
	if p, _ := r.Project("a"); p.Postman.Collection == "" || p.Postman.GeneratedAt.IsZero() {
		t.Errorf("expected collection recorded, got %+v", p.Postman)
	}

	if !r.RemoveProject("b") || r.RemoveProject("b") {
		t.Error("expected remove to succeed once")
	}
}
