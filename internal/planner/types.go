// Package planner implements the Tiered Planner (§4.F): a two-stage request
// classifier and a per-step executor chooser, both backed by the local
// model. Grounded on the teacher's internal/generate/workflow.go for prompt
// assembly style (embedded templates, system-prompt concatenation) and on
// internal/nodes/agent.go for the turn-loop shape of talking to a model.
package planner

// ActionType is the planner's top-level verdict for a whole request.
type ActionType string

const (
	ActionLocalAnswer       ActionType = "LOCAL_ANSWER"
	ActionWorkflowExecution ActionType = "WORKFLOW_EXECUTION"
)

// Classification is the request-level planning result (§3).
type Classification struct {
	ActionType      ActionType
	LocalAnswer     string
	Categories      []string
	StepsPlan       []string
	NeedsSequential bool
	Reasoning       string
}

// StepKind tags the four-way variant of a step execution plan (§3).
type StepKind string

const (
	StepLocalAnswer      StepKind = "LOCAL_ANSWER"
	StepExecuteCommand   StepKind = "EXECUTE_COMMAND"
	StepNeedsExpansion   StepKind = "NEEDS_EXPANSION"
	StepNeedsNewWorkflow StepKind = "NEEDS_NEW_WORKFLOW"
)

// StepPlan is the step-level planning result (§3). Only the fields relevant
// to Kind are populated by the planner; the rest are left zero.
type StepPlan struct {
	Kind StepKind

	Text string // StepLocalAnswer

	Command string // StepExecuteCommand

	SubSteps []string // StepNeedsExpansion

	TargetNamespace string // StepNeedsNewWorkflow
	TargetAction    string // StepNeedsNewWorkflow
	Description     string // StepNeedsNewWorkflow
	PromptHint      string // StepNeedsNewWorkflow
}
