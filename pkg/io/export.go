package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/modelgraph/pkg/graph"
	"github.com/matzehuels/modelgraph/pkg/model"
)

type snapshot struct {
	Models          []snapshotModel                    `json:"models"`
	Transformations []snapshotEdge                     `json:"transformations"`
	Descriptions    []*model.TransformationDescription `json:"descriptions,omitempty"`
}

type snapshotModel struct {
	Key    string `json:"key"`
	Active bool   `json:"active"`
}

type snapshotEdge struct {
	ID          string            `json:"id"`
	Source      string            `json:"source"`
	Target      string            `json:"target"`
	FileName    string            `json:"file_name,omitempty"`
	Connections map[string]string `json:"connections,omitempty"`
}

// WriteJSON encodes a graph snapshot as JSON and writes it to w.
// Models and transformations keep the snapshot's insertion order. With
// withSteps the full descriptions, including their steps, are added.
func WriteJSON(s graph.Snapshot, w io.Writer, withSteps bool) error {
	out := snapshot{
		Models:          make([]snapshotModel, len(s.Nodes)),
		Transformations: make([]snapshotEdge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		out.Models[i] = snapshotModel{Key: n.Key, Active: n.Active}
	}
	for i, e := range s.Edges {
		out.Transformations[i] = snapshotEdge{
			ID:          e.ID,
			Source:      e.From,
			Target:      e.To,
			FileName:    e.FileName,
			Connections: e.Connections,
		}
	}
	if withSteps {
		out.Descriptions = s.Transformations
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a graph snapshot to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(s graph.Snapshot, path string, withSteps bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(s, f, withSteps)
}

// WriteDescriptions encodes descriptions in the format read by [ReadJSON].
func WriteDescriptions(descs []*model.TransformationDescription, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(descs); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
