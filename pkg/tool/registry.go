package tool

import (
	"sort"

	"github.com/sameehj/warden/pkg/sandbox"
)

// Registry maps operation names to tools. It holds no state between calls
// beyond the sandbox and the immutable deletion toggle.
type Registry struct {
	tools       map[string]Tool
	order       []string
	allowDelete bool
}

func NewRegistry(sb *sandbox.Sandbox, allowDelete bool) *Registry {
	r := &Registry{tools: make(map[string]Tool), allowDelete: allowDelete}
	for _, t := range []Tool{
		&AnalyzeLogsTool{sandbox: sb},
		&SearchFilesTool{sandbox: sb},
		&OrganizeFilesTool{sandbox: sb},
		&ReplaceTextTool{sandbox: sb},
		&DeleteFileTool{sandbox: sb, enabled: allowDelete},
	} {
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	sort.Strings(r.order)
	return r
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists the operations currently announced to clients. delete_file is
// hidden while deletion is disabled, though the tool stays registered so a
// direct call still gets a descriptive refusal.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if name == deleteToolName && !r.allowDelete {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Definitions returns descriptors for the announced tools, applying the same
// gating as Names.
func (r *Registry) Definitions() []Descriptor {
	defs := make([]Descriptor, 0, len(r.order))
	for _, name := range r.Names() {
		t := r.tools[name]
		defs = append(defs, Descriptor{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		})
	}
	return defs
}
