// Package events publishes model graph changes to an event bus.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/modelgraph/pkg/model"
)

// Event topic constants
const (
	TopicModelRegistered       = "modelgraph.model.registered"
	TopicModelUnregistered     = "modelgraph.model.unregistered"
	TopicTransformationSaved   = "modelgraph.transformation.saved"
	TopicTransformationDeleted = "modelgraph.transformation.deleted"
	TopicFileLoaded            = "modelgraph.file.loaded"
	TopicFileUnloaded          = "modelgraph.file.unloaded"

	// TopicAll matches every modelgraph topic.
	TopicAll = "modelgraph.>"
)

// Event is the envelope of every published message.
type Event struct {
	ID    string    `json:"id"`
	Topic string    `json:"topic"`
	Time  time.Time `json:"time"`
	Data  any       `json:"data"`
}

// New wraps data in an Event with a fresh id.
func New(topic string, data any) Event {
	return Event{
		ID:    uuid.NewString(),
		Topic: topic,
		Time:  time.Now().UTC(),
		Data:  data,
	}
}

// Event payloads

type ModelRegistered struct {
	Model  model.ModelDescription `json:"model"`
	Source string                 `json:"source,omitempty"`
}

type ModelUnregistered struct {
	Model  model.ModelDescription `json:"model"`
	Source string                 `json:"source,omitempty"`
}

type TransformationSaved struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	FileName string `json:"file_name,omitempty"`
}

type TransformationDeleted struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type FileLoaded struct {
	Path    string `json:"path"`
	Count   int    `json:"count"`
	Removed int    `json:"removed"`
}

type FileUnloaded struct {
	Path    string `json:"path"`
	Removed int    `json:"removed"`
}

// Saved builds the payload for a saved description.
func Saved(d *model.TransformationDescription) TransformationSaved {
	return TransformationSaved{
		ID:       d.ID,
		Source:   d.Source.Key(),
		Target:   d.Target.Key(),
		FileName: d.FileName,
	}
}

// Deleted builds the payload for a deleted description.
func Deleted(d *model.TransformationDescription) TransformationDeleted {
	return TransformationDeleted{
		ID:     d.ID,
		Source: d.Source.Key(),
		Target: d.Target.Key(),
	}
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
