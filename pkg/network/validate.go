package network

import (
	"fmt"

	"github.com/gridcase/csv2mgc/pkg/model"
	"github.com/gridcase/csv2mgc/pkg/topology"
)

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding codes.
const (
	CodeDuplicateID       = "duplicate_id"
	CodeDanglingReference = "dangling_reference"
	CodeInactiveReference = "inactive_reference"
	CodeDisconnected      = "disconnected"
)

// Finding is one validation diagnostic.
type Finding struct {
	Severity Severity   `json:"severity"`
	Kind     model.Kind `json:"kind"`
	ID       int64      `json:"id"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
}

// Report lists the findings of a validation run in the order they were found.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Failed reports whether any finding has error severity.
func (r Report) Failed() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of findings with code.
func (r Report) Count(code string) int {
	n := 0
	for _, f := range r.Findings {
		if f.Code == code {
			n++
		}
	}
	return n
}

func (r *Report) add(sev Severity, kind model.Kind, id int64, code, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: sev,
		Kind:     kind,
		ID:       id,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Validate checks id uniqueness per kind, edge endpoint references and
// connectivity. It never modifies c.
func Validate(c *model.Case) Report {
	var r Report

	for _, kind := range model.CollectionKinds {
		seen := make(map[int64]bool)
		for _, id := range c.IDs(kind) {
			if seen[id] {
				r.add(SeverityError, kind, id, CodeDuplicateID, "duplicate %s id %d", kind, id)
				break
			}
			seen[id] = true
		}
	}

	junctions := make(map[int64]*model.Junction, len(c.Junctions))
	for _, j := range c.Junctions {
		if _, ok := junctions[j.ID]; !ok {
			junctions[j.ID] = j
		}
	}
	for _, ke := range c.EdgeList() {
		for _, end := range []struct {
			name string
			id   int64
		}{
			{"from", ke.Edge.FromJunction},
			{"to", ke.Edge.ToJunction},
		} {
			j, ok := junctions[end.id]
			switch {
			case !ok:
				r.add(SeverityError, ke.Kind, ke.Edge.ID, CodeDanglingReference,
					"%s %d %s junction %d does not exist", ke.Kind, ke.Edge.ID, end.name, end.id)
			case !j.Active():
				r.add(SeverityError, ke.Kind, ke.Edge.ID, CodeInactiveReference,
					"%s %d %s junction %d is inactive", ke.Kind, ke.Edge.ID, end.name, end.id)
			}
		}
	}

	islands := topology.Islands(c)
	for _, island := range islands[min(1, len(islands)):] {
		r.add(SeverityWarning, model.KindJunction, island[0], CodeDisconnected,
			"%d junction(s) starting at %d are not connected to the main network", len(island), island[0])
	}

	return r
}
