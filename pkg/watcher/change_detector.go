package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ChangeAnalysis describes what changed and what a rebuild must reload.
type ChangeAnalysis struct {
	ReloadConfig bool
	ChangedFiles []string
	Reason       string
}

// AnalyzeChanges determines what needs to be reloaded for event.
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
		// Config changes may alter case metadata and input paths
		ReloadConfig: event.Type == ChangeTypeConfig,
	}

	names := make([]string, len(event.Paths))
	for i, p := range event.Paths {
		names[i] = filepath.Base(p)
	}
	switch len(names) {
	case 0:
		analysis.Reason = fmt.Sprintf("%s changed", event.Type)
	case 1:
		analysis.Reason = names[0] + " changed"
	default:
		analysis.Reason = strings.Join(names, ", ") + " changed"
	}

	return analysis
}
