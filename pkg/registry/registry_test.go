package registry

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/events"
	"github.com/matzehuels/modelgraph/pkg/graph"
	"github.com/matzehuels/modelgraph/pkg/model"
)

var (
	contact = model.NewModel("Contact", "1.0.0")
	person  = model.NewModel("Person", "1.0.0")
	person2 = model.NewModel("Person", "2.0.0")
)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event any) error {
	p.events = append(p.events, event.(events.Event))
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newRegistry(t *testing.T, opts ...Option) (*Registry, *graph.Graph) {
	t.Helper()
	g := graph.New()
	t.Cleanup(func() { _ = g.Close() })
	return New(g, opts...), g
}

func active(t *testing.T, g *graph.Graph, m model.ModelDescription) bool {
	t.Helper()
	ok, err := g.IsModelActive(context.Background(), m)
	require.NoError(t, err)
	return ok
}

func TestAddSource(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	r, g := newRegistry(t, WithPublisher(pub))

	got, err := r.AddSource(ctx, "crm-plugin", []model.ModelDescription{contact, person, contact})
	require.NoError(t, err)
	assert.Equal(t, []model.ModelDescription{contact, person}, got)
	assert.True(t, active(t, g, contact))
	assert.True(t, active(t, g, person))

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TopicModelRegistered, pub.events[0].Topic)
	assert.Equal(t, events.ModelRegistered{Model: contact, Source: "crm-plugin"}, pub.events[0].Data)
}

func TestAddSourceInvalidModel(t *testing.T) {
	r, g := newRegistry(t)

	_, err := r.AddSource(context.Background(), "bad", []model.ModelDescription{contact, {Name: "Broken", Version: "x"}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidModel), "error = %v", err)

	snap, err := g.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Nodes, "no model registered when validation fails")
	assert.Empty(t, r.Sources())
}

func TestAddSourceEmptyName(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.AddSource(context.Background(), "", nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestSkippedSource(t *testing.T) {
	ctx := context.Background()
	r, g := newRegistry(t, WithSkip("test", ""))

	assert.True(t, r.Skipped("crm-test-fixtures"))
	assert.False(t, r.Skipped("crm-plugin"))

	got, err := r.AddSource(ctx, "crm-test-fixtures", []model.ModelDescription{contact})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, r.Sources())

	snap, err := g.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Nodes)
}

func TestRemoveSource(t *testing.T) {
	ctx := context.Background()
	r, g := newRegistry(t)

	_, err := r.AddSource(ctx, "a", []model.ModelDescription{contact, person})
	require.NoError(t, err)
	_, err = r.AddSource(ctx, "b", []model.ModelDescription{person})
	require.NoError(t, err)

	removed, err := r.RemoveSource(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []model.ModelDescription{contact, person}, removed)
	assert.False(t, active(t, g, contact))
	assert.True(t, active(t, g, person), "person is still provided by b")

	_, err = r.RemoveSource(ctx, "b")
	require.NoError(t, err)
	assert.False(t, active(t, g, person))

	removed, err = r.RemoveSource(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, removed)
}

func TestAddSourceReplacesModels(t *testing.T) {
	ctx := context.Background()
	r, g := newRegistry(t)

	_, err := r.AddSource(ctx, "crm", []model.ModelDescription{contact, person})
	require.NoError(t, err)
	_, err = r.AddSource(ctx, "crm", []model.ModelDescription{contact, person2})
	require.NoError(t, err)

	assert.True(t, active(t, g, contact))
	assert.False(t, active(t, g, person))
	assert.True(t, active(t, g, person2))
	assert.Equal(t, []model.ModelDescription{contact, person2}, r.Models())
}

func TestRegisterModel(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	r, g := newRegistry(t, WithPublisher(pub))

	require.NoError(t, r.RegisterModel(ctx, contact))
	assert.True(t, active(t, g, contact))
	require.NoError(t, r.UnregisterModel(ctx, contact))
	assert.False(t, active(t, g, contact))

	assert.True(t, errors.Is(r.RegisterModel(ctx, model.ModelDescription{}), errors.ErrCodeInvalidModel))

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TopicModelUnregistered, pub.events[1].Topic)
	assert.Empty(t, r.Models(), "single models do not belong to a source")
}

func TestModelsAndSources(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)

	_, err := r.AddSource(ctx, "b", []model.ModelDescription{person2, contact})
	require.NoError(t, err)
	_, err = r.AddSource(ctx, "a", []model.ModelDescription{person, contact})
	require.NoError(t, err)

	assert.Equal(t, []model.ModelDescription{contact, person, person2}, r.Models())
	assert.Equal(t, []string{"a", "b"}, r.Sources())
}

func TestPublishFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r, g := newRegistry(t, WithLogger(logger), WithPublisher(&recordingPublisher{err: fmt.Errorf("bus down")}))

	_, err := r.AddSource(context.Background(), "crm", []model.ModelDescription{contact})
	require.NoError(t, err)
	assert.True(t, active(t, g, contact))
	assert.Contains(t, buf.String(), "bus down")
}
