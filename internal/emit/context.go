package emit

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/schemasmith/schemasmith/internal/action"
	"github.com/schemasmith/schemasmith/internal/collection"
	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/snapshot"
)

// Context carries everything an emitter needs for one generation run.
type Context struct {
	Project   string
	Root      string
	Paths     config.PathsConfig
	Schema    *schema.Schema
	Tracker   *snapshot.Tracker
	Actions   []action.Action
	Modes     collection.Modes
	Templates *Templates
	Logger    *slog.Logger
}

// path resolves a configured directory and file name under the project root.
func (c *Context) path(dir, file string) string {
	if filepath.IsAbs(dir) {
		return filepath.Join(dir, file)
	}
	return filepath.Join(c.Root, dir, file)
}

// changed reports column changes of table since the previous snapshot.
func (c *Context) changed(table string) patch.ChangeFunc {
	return func(column string) bool {
		return c.Tracker.ColumnChanged(table, column)
	}
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// record logs an outcome and returns it.
func (c *Context) record(artifact, table, path string, kind Kind) Outcome {
	o := Outcome{Artifact: artifact, Table: table, Path: path, Kind: kind}
	attrs := []any{"artifact", artifact, "table", table, "path", path, "outcome", string(kind)}
	if kind == KindNoMatch {
		c.logger().Warn("region not found, artifact left untouched", attrs...)
	} else {
		c.logger().Info("artifact", attrs...)
	}
	return o
}

// apply writes the artifact at path. A missing file is created from create; an
// existing one is passed to update. A no-match update leaves the file untouched.
// finish, when set, runs on both paths before writing.
func (c *Context) apply(artifact, table, path string,
	create func() (string, error),
	update func(text string) patch.Result,
	finish func(text string) string,
) (Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Outcome{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err != nil {
		text, err := create()
		if err != nil {
			return Outcome{}, err
		}
		if finish != nil {
			text = finish(text)
		}
		if err := writeFile(path, text); err != nil {
			return Outcome{}, err
		}
		return c.record(artifact, table, path, KindCreated), nil
	}

	orig := string(data)
	res := patch.Result{Text: orig, Outcome: patch.OutcomeUnchanged}
	if update != nil {
		res = update(orig)
	}
	if res.Outcome == patch.OutcomeNoMatch {
		return c.record(artifact, table, path, KindNoMatch), nil
	}
	text := res.Text
	if finish != nil {
		text = finish(text)
	}
	if text == orig {
		return c.record(artifact, table, path, KindUnchanged), nil
	}
	if err := writeFile(path, text); err != nil {
		return Outcome{}, err
	}
	return c.record(artifact, table, path, KindUpdated), nil
}

func writeFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// namespaceFor derives a namespace from a directory relative to the project root
// ("app/Http/Requests" -> "App\Http\Requests").
func namespaceFor(dir string) string {
	parts := strings.FieldsFunc(filepath.ToSlash(dir), func(r rune) bool { return r == '/' })
	for i, p := range parts {
		parts[i] = inflect.Capitalize(p)
	}
	return strings.Join(parts, `\`)
}

// phpString quotes s as a single quoted literal.
func phpString(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
