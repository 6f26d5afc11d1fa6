// Package onboarding runs the client-facing wizard that turns a public
// project link into a submission.
package onboarding

import "clientkit/internal/domain/project"

type StepKind string

const (
	StepBrief    StepKind = "brief"
	StepFiles    StepKind = "files"
	StepContract StepKind = "contract"
	StepPayment  StepKind = "payment"
	// StepComplete is the terminal state past the last real step. It is never
	// part of the list returned by Steps.
	StepComplete StepKind = "complete"
)

// Steps returns the ordered wizard steps for a project: brief and files
// always, then contract and payment when the project asks for them.
func Steps(p *project.Project) []StepKind {
	steps := []StepKind{StepBrief, StepFiles}
	if p.HasContract() {
		steps = append(steps, StepContract)
	}
	if p.PaymentEnabled {
		steps = append(steps, StepPayment)
	}
	return steps
}
