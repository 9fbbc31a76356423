package mapc

import (
	"path/filepath"
)

// Tool names, in pipeline order.
const (
	ToolQBSP  = "qbsp"
	ToolLight = "light"
	ToolVis   = "vis"
)

// ToolNames lists the pipeline tools in execution order.
func ToolNames() []string { return []string{ToolQBSP, ToolLight, ToolVis} }

// Step is one external tool invocation in the pipeline.
type Step struct {
	Name string
	Path string
}

// ExecutableName appends the host executable suffix for goos.
func ExecutableName(name, goos string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

// ResolveSteps builds the qbsp, light, vis pipeline.
//
// Each tool resolves to <toolsDir>/<name><suffix> unless overrides names an
// explicit path for it.
func ResolveSteps(toolsDir string, overrides map[string]string, goos string) []Step {
	steps := make([]Step, 0, 3)
	for _, name := range ToolNames() {
		path := overrides[name]
		if path == "" {
			path = filepath.Join(toolsDir, ExecutableName(name, goos))
		}
		steps = append(steps, Step{Name: name, Path: path})
	}
	return steps
}
