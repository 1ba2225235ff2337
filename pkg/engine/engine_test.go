package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/events"
	"github.com/matzehuels/modelgraph/pkg/graph"
	"github.com/matzehuels/modelgraph/pkg/model"
)

var (
	contact  = model.NewModel("Contact", "1.0.0")
	person   = model.NewModel("Person", "1.0.0")
	employee = model.NewModel("Employee", "2.0.0")
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if ev, ok := event.(events.Event); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fileLoad struct {
	path  string
	count int
	err   error
}

type recordingHooks struct {
	mu    sync.Mutex
	loads []fileLoad
}

func (h *recordingHooks) OnFileLoaded(_ context.Context, path string, count int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads = append(h.loads, fileLoad{path, count, err})
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *graph.Graph) {
	t.Helper()
	g := graph.New()
	t.Cleanup(func() { _ = g.Close() })
	return New(g, opts...), g
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func xmlFile(pairs ...[2]string) string {
	var buf bytes.Buffer
	buf.WriteString("<transformations>\n")
	for _, p := range pairs {
		fmt.Fprintf(&buf, "  <transformation source=%q target=%q>\n", p[0], p[1])
		buf.WriteString("    <forward><source-field>a</source-field><target-field>b</target-field></forward>\n")
		buf.WriteString("  </transformation>\n")
	}
	buf.WriteString("</transformations>\n")
	return buf.String()
}

func TestSaveAndDeleteDescription(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	eng, g := newEngine(t, WithPublisher(pub))
	require.NoError(t, g.AddModel(ctx, contact))
	require.NoError(t, g.AddModel(ctx, person))

	d := model.NewTransformation(contact, person)
	d.ForwardField("email", "mail")
	require.NoError(t, eng.SaveDescription(ctx, d))
	assert.Equal(t, "EKBInternal-1", d.ID)
	assert.True(t, eng.IsTransformationPossible(ctx, contact, person, nil))

	path, err := eng.TransformationPath(ctx, contact, person, []string{d.ID})
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, d.ID, path[0].ID)

	require.NoError(t, eng.DeleteDescription(ctx, d))
	assert.False(t, eng.IsTransformationPossible(ctx, contact, person, nil))

	assert.Equal(t, []string{events.TopicTransformationSaved, events.TopicTransformationDeleted}, pub.topics)
	saved, ok := pub.events[0].Data.(events.TransformationSaved)
	require.True(t, ok)
	assert.Equal(t, events.TransformationSaved{ID: d.ID, Source: "Contact:1.0.0", Target: "Person:1.0.0"}, saved)
}

func TestSaveDescriptionInvalid(t *testing.T) {
	pub := &recordingPublisher{}
	eng, _ := newEngine(t, WithPublisher(pub))

	err := eng.SaveDescription(context.Background(), model.NewTransformation(model.ModelDescription{}, person))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "error = %v", err)
	assert.Empty(t, pub.topics)
}

func TestSaveDescriptionsStopsAtFirstError(t *testing.T) {
	ctx := context.Background()
	eng, g := newEngine(t)

	good := model.NewTransformation(contact, person)
	bad := model.NewTransformation(person, model.ModelDescription{})
	never := model.NewTransformation(person, employee)

	err := eng.SaveDescriptions(ctx, []*model.TransformationDescription{good, bad, never})
	require.Error(t, err)

	snap, err := g.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Edges, 1)
	assert.Empty(t, never.ID)
}

func TestPublishFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	eng, _ := newEngine(t, WithLogger(logger), WithPublisher(&recordingPublisher{err: fmt.Errorf("bus down")}))

	require.NoError(t, eng.SaveDescription(context.Background(), model.NewTransformation(contact, person)))
	assert.Contains(t, buf.String(), "publish event")
	assert.Contains(t, buf.String(), "bus down")
}

func TestLoadFileReplacesPreviousContent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	pub := &recordingPublisher{}
	hooks := &recordingHooks{}
	eng, g := newEngine(t, WithPublisher(pub), WithHooks(hooks))

	path := writeFile(t, dir, "contacts.xml", xmlFile(
		[2]string{"Contact:1.0.0", "Person:1.0.0"},
		[2]string{"Person:1.0.0", "Employee:2.0.0"},
	))
	n, err := eng.LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	descs, err := g.TransformationsPerFileName(ctx, path)
	require.NoError(t, err)
	assert.Len(t, descs, 2)

	// Second version of the file drops one transformation.
	writeFile(t, dir, "contacts.xml", xmlFile([2]string{"Contact:1.0.0", "Person:1.0.0"}))
	n, err = eng.LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	descs, err = g.TransformationsPerFileName(ctx, path)
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "EKBInternal-3", descs[0].ID)

	snap, err := g.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Edges, 1)

	var loaded []events.FileLoaded
	for _, ev := range pub.events {
		if fl, ok := ev.Data.(events.FileLoaded); ok {
			loaded = append(loaded, fl)
		}
	}
	assert.Equal(t, []events.FileLoaded{
		{Path: path, Count: 2, Removed: 0},
		{Path: path, Count: 1, Removed: 2},
	}, loaded)
	assert.Equal(t, []fileLoad{{path, 2, nil}, {path, 1, nil}}, hooks.loads)
}

func TestLoadFileParseErrorKeepsGraph(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	hooks := &recordingHooks{}
	eng, g := newEngine(t, WithHooks(hooks))

	path := writeFile(t, dir, "contacts.xml", xmlFile([2]string{"Contact:1.0.0", "Person:1.0.0"}))
	_, err := eng.LoadFile(ctx, path)
	require.NoError(t, err)

	writeFile(t, dir, "contacts.xml", "<transformations><transformation")
	_, err = eng.LoadFile(ctx, path)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "error = %v", err)

	descs, err := g.TransformationsPerFileName(ctx, path)
	require.NoError(t, err)
	assert.Len(t, descs, 1)

	require.Len(t, hooks.loads, 2)
	assert.Error(t, hooks.loads[1].err)
}

func TestLoadFileMissing(t *testing.T) {
	eng, _ := newEngine(t)
	_, err := eng.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.xml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "error = %v", err)
}

func TestLoadFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	eng, g := newEngine(t, WithWorkers(2))

	writeFile(t, dir, "a.xml", xmlFile([2]string{"Contact:1.0.0", "Person:1.0.0"}))
	writeFile(t, dir, "b/c.xml", xmlFile([2]string{"Person:1.0.0", "Employee:2.0.0"}))
	writeFile(t, dir, "b/d.toml", `
[[transformation]]
id = "back"
source = "Employee:2.0.0"
target = "Contact:1.0.0"
`)
	writeFile(t, dir, "readme.md", "not a transformation")

	n, err := eng.LoadFiles(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	snap, err := g.Snapshot(ctx)
	require.NoError(t, err)
	ids := make([]string, len(snap.Edges))
	for i, e := range snap.Edges {
		ids[i] = e.ID
	}
	// Applied in path order: a.xml, b/c.xml, b/d.toml.
	assert.Equal(t, []string{"EKBInternal-1", "EKBInternal-2", "back"}, ids)

	// Loading again replaces instead of duplicating.
	n, err = eng.LoadFiles(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	snap, err = g.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Edges, 3)

	// Every model is only referenced by transformations, so nothing is active.
	assert.False(t, eng.IsTransformationPossible(ctx, contact, employee, nil))
	require.NoError(t, g.AddModel(ctx, contact))
	require.NoError(t, g.AddModel(ctx, person))
	require.NoError(t, g.AddModel(ctx, employee))
	assert.True(t, eng.IsTransformationPossible(ctx, contact, employee, nil))
}

func TestLoadFilesParseErrorAppliesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	eng, g := newEngine(t)

	writeFile(t, dir, "a.xml", xmlFile([2]string{"Contact:1.0.0", "Person:1.0.0"}))
	writeFile(t, dir, "b.toml", "[[transformation]\n")

	_, err := eng.LoadFiles(ctx, dir)
	require.Error(t, err)

	snap, err := g.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Edges)
}

func TestLoadFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.xml", xmlFile([2]string{"Contact:1.0.0", "Person:1.0.0"}))
	eng, _ := newEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.LoadFiles(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnloadFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	pub := &recordingPublisher{}
	eng, g := newEngine(t, WithPublisher(pub))

	path := writeFile(t, dir, "contacts.xml", xmlFile(
		[2]string{"Contact:1.0.0", "Person:1.0.0"},
		[2]string{"Person:1.0.0", "Employee:2.0.0"},
	))
	_, err := eng.LoadFile(ctx, path)
	require.NoError(t, err)

	removed, err := eng.UnloadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	snap, err := g.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Edges)
	assert.Len(t, snap.Nodes, 3, "nodes stay after their transformations are gone")
	assert.Equal(t, events.TopicFileUnloaded, pub.topics[len(pub.topics)-1])

	removed, err = eng.UnloadFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
