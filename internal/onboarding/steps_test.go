package onboarding

import (
	"testing"

	"clientkit/internal/domain/project"

	"github.com/stretchr/testify/assert"
)

func TestSteps(t *testing.T) {
	tests := []struct {
		name     string
		contract string
		payment  bool
		want     []StepKind
	}{
		{"brief and files only", "", false, []StepKind{StepBrief, StepFiles}},
		{"with contract", "contract.pdf", false, []StepKind{StepBrief, StepFiles, StepContract}},
		{"with payment", "", true, []StepKind{StepBrief, StepFiles, StepPayment}},
		{"everything", "contract.pdf", true, []StepKind{StepBrief, StepFiles, StepContract, StepPayment}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &project.Project{ContractFile: tt.contract, PaymentEnabled: tt.payment}
			assert.Equal(t, tt.want, Steps(p))
			assert.NotContains(t, Steps(p), StepComplete)
		})
	}
}
