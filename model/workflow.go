package model

import (
	"fmt"
	"slices"
	"time"
)

// Stage is one step of an approval workflow template.
type Stage struct {
	Name      string   `json:"name" yaml:"name"`
	Status    Status   `json:"status" yaml:"status"`
	Approvers []string `json:"approvers,omitempty" yaml:"approvers,omitempty"`
}

// ApprovalWorkflow is an ordered template of stages a client applies to
// new items.
type ApprovalWorkflow struct {
	ID          string    `json:"id" yaml:"id"`
	ClientID    string    `json:"clientId" yaml:"clientId"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Stages      []*Stage  `json:"stages" yaml:"stages"`
	IsDefault   bool      `json:"isDefault" yaml:"isDefault"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"-"`
}

// StageFor returns the stage targeting status, or nil.
func (w *ApprovalWorkflow) StageFor(status Status) *Stage {
	for _, s := range w.Stages {
		if s.Status == status {
			return s
		}
	}
	return nil
}

// Validate performs a structural validation of the workflow. The returned
// slice is empty when the workflow is sound; otherwise it contains
// human-readable error descriptions.
func (w *ApprovalWorkflow) Validate() []error {
	var issues []error
	if w.Name == "" {
		issues = append(issues, fmt.Errorf("workflow name is empty"))
	}
	if w.ClientID == "" {
		issues = append(issues, fmt.Errorf("workflow %s has no client", w.Name))
	}
	if len(w.Stages) == 0 {
		issues = append(issues, fmt.Errorf("workflow %s has no stages", w.Name))
	}
	seen := map[Status]bool{}
	for i, stage := range w.Stages {
		if stage == nil {
			issues = append(issues, fmt.Errorf("stage %d is nil", i))
			continue
		}
		if !stage.Status.Valid() {
			issues = append(issues, fmt.Errorf("stage %d has unknown status %q", i, stage.Status))
			continue
		}
		if seen[stage.Status] {
			issues = append(issues, fmt.Errorf("stage %d repeats status %s", i, stage.Status))
		}
		seen[stage.Status] = true
		if slices.Contains(stage.Approvers, "") {
			issues = append(issues, fmt.Errorf("stage %d has an empty approver id", i))
		}
	}
	return issues
}

// Clone returns a deep copy of the workflow.
func (w *ApprovalWorkflow) Clone() *ApprovalWorkflow {
	if w == nil {
		return nil
	}
	ret := *w
	ret.Stages = make([]*Stage, len(w.Stages))
	for i, s := range w.Stages {
		if s == nil {
			continue
		}
		stage := *s
		stage.Approvers = slices.Clone(s.Approvers)
		ret.Stages[i] = &stage
	}
	return &ret
}
