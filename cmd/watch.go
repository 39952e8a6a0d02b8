package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/schemasmith/schemasmith/internal/engine"
	"github.com/schemasmith/schemasmith/internal/watch"
)

var watchChanged bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate when templates or the config change",
	Long: `Run a generation, then watch the template override directory and the
config file and run again after every change. Stop with ctrl+c.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfgPath, err := filepath.Abs(configPath())
		if err != nil {
			return err
		}
		sess := &watchSession{
			open:    newEngine,
			opts:    engine.Options{ChangedOnly: watchChanged},
			cfgPath: cfgPath,
		}
		if err := sess.start(ctx); err != nil {
			return err
		}
		defer sess.stop()

		cfg := sess.eng.Config
		w := &watch.Watcher{
			Paths:  []string{cfgPath, cfg.Project.Templates, cfg.TypemapFile},
			Logger: sess.eng.Logger,
			Run:    sess.run,
		}
		sess.eng.Logger.Info("watching for changes", "config", cfgPath, "templates", cfg.Project.Templates)
		return w.Watch(ctx)
	},
}

// watchSession owns the engine of a watch run. A change to the config file
// rebuilds the engine so the store, registry and report locations follow it.
type watchSession struct {
	open    func(ctx context.Context) (*engine.Engine, func(), error)
	opts    engine.Options
	cfgPath string

	eng   *engine.Engine
	close func()
}

func (s *watchSession) start(ctx context.Context) error {
	eng, closeStore, err := s.open(ctx)
	if err != nil {
		return err
	}
	s.eng, s.close = eng, closeStore
	if _, err := s.eng.Generate(ctx, s.opts); err != nil {
		s.eng.Logger.Error("generation failed", "error", err)
	}
	return nil
}

func (s *watchSession) run(ctx context.Context, ev fsnotify.Event) error {
	if name, _ := filepath.Abs(ev.Name); name == s.cfgPath {
		eng, closeStore, err := s.open(ctx)
		if err != nil {
			return fmt.Errorf("reloading config: %w", err)
		}
		s.stop()
		s.eng, s.close = eng, closeStore
		s.eng.Logger.Info("config reloaded", "project", s.eng.Config.ProjectName())
	}
	_, err := s.eng.Generate(ctx, s.opts)
	return err
}

func (s *watchSession) stop() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

func init() {
	watchCmd.Flags().BoolVar(&watchChanged, "changed", false, "only regenerate tables pending as NEW or MODIFIED")
	rootCmd.AddCommand(watchCmd)
}
