package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/modelgraph/pkg/config"
	"github.com/matzehuels/modelgraph/pkg/engine"
	"github.com/matzehuels/modelgraph/pkg/events"
	"github.com/matzehuels/modelgraph/pkg/graph"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/observability/promhooks"
	"github.com/matzehuels/modelgraph/pkg/registry"
	"github.com/matzehuels/modelgraph/pkg/store"
)

// Model sources registered by the CLI.
const (
	sourceConfig = "config"
	sourceFlags  = "command-line"
)

// stack is everything a command works with, built from the config.
type stack struct {
	cfg       *config.Config
	graph     *graph.Graph
	engine    *engine.Engine
	registry  *registry.Registry
	publisher events.Publisher
}

// openStack loads the config, connects the store and event bus, registers
// the configured models and loads the configured transformation files.
// The caller must close the stack.
func (c *CLI) openStack(ctx context.Context) (*stack, error) {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}
	// --verbose wins over the configured level.
	if lvl, _ := cfg.LogLevel(); c.Logger.GetLevel() == LogInfo {
		c.Logger.SetLevel(lvl)
	}

	c.metricsFile = c.flags.metricsFile
	if c.metricsFile == "" {
		c.metricsFile = cfg.Metrics.Textfile
	}
	c.metrics = prometheus.NewRegistry()
	hooks := promhooks.New(c.metrics)

	var st store.Store = store.NewMemoryStore()
	if cfg.Store.Backend == config.BackendRedis {
		rs, err := store.NewRedisStore(ctx, cfg.RedisOptions())
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis store", "store", rs)
		st = rs
	}

	var pub events.Publisher = &events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.Events.NATSURL)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		pub = np
	}

	g := graph.New(graph.WithStore(st), graph.WithLogger(c.Logger), graph.WithHooks(hooks))
	s := &stack{
		cfg:       cfg,
		graph:     g,
		publisher: pub,
		registry: registry.New(g,
			registry.WithLogger(c.Logger),
			registry.WithPublisher(pub),
			registry.WithSkip(cfg.Registry.Skip...)),
		engine: engine.New(g,
			engine.WithLogger(c.Logger),
			engine.WithPublisher(pub),
			engine.WithHooks(hooks)),
	}

	if err := s.populate(ctx, c.flags.models, c.flags.load); err != nil {
		_ = s.close()
		return nil, err
	}
	return s, nil
}

// populate registers the configured and flag models and loads the
// configured and flag transformation files.
func (s *stack) populate(ctx context.Context, flagModels, flagFiles []string) error {
	models, err := s.cfg.ParsedModels()
	if err != nil {
		return err
	}
	if len(models) > 0 {
		if _, err := s.registry.AddSource(ctx, sourceConfig, models); err != nil {
			return err
		}
	}

	if len(flagModels) > 0 {
		extra := make([]model.ModelDescription, 0, len(flagModels))
		for _, raw := range flagModels {
			m, err := model.ParseModel(raw)
			if err != nil {
				return err
			}
			extra = append(extra, m)
		}
		if _, err := s.registry.AddSource(ctx, sourceFlags, extra); err != nil {
			return err
		}
	}

	files := append(append([]string(nil), s.cfg.Transformations...), flagFiles...)
	if len(files) > 0 {
		if _, err := s.engine.LoadFiles(ctx, files...); err != nil {
			return err
		}
	}
	return nil
}

func (s *stack) close() error {
	return errors.Join(s.publisher.Close(), s.graph.Close())
}

// withStack opens the stack, runs fn and closes the stack again.
func (c *CLI) withStack(ctx context.Context, fn func(*stack) error) (err error) {
	s, err := c.openStack(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.close()) }()
	return fn(s)
}
