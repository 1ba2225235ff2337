package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{
			name: "defaults take embedded values",
			in:   Info{Version: "dev", Commit: "none", Date: "unknown"},
			want: Info{Version: "v1.4.0", Commit: "abc123", Date: "2026-01-02T03:04:05Z"},
		},
		{
			name: "ldflags win",
			in:   Info{Version: "v2.0.0", Commit: "fff", Date: "today"},
			want: Info{Version: "v2.0.0", Commit: "fff", Date: "today"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := merge(tt.in, bi); got != tt.want {
				t.Errorf("merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeDevelBuild(t *testing.T) {
	got := merge(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "dev" {
		t.Errorf("Version = %q, want dev", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(Get().String(), "go: go") {
		t.Errorf("String() missing Go version: %q", Get().String())
	}
}
