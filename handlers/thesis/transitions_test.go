package thesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"thesistrack/backend/model"
)

func TestCanTransition_Student(t *testing.T) {
	tests := []struct {
		name    string
		from    model.ThesisStatus
		to      model.ThesisStatus
		allowed bool
	}{
		{"submit draft", model.StatusDraft, model.StatusSubmitted, true},
		{"same status is a no-op", model.StatusSubmitted, model.StatusSubmitted, true},
		{"cannot approve own thesis", model.StatusUnderReview, model.StatusApproved, false},
		{"cannot skip to under_review", model.StatusDraft, model.StatusUnderReview, false},
		{"cannot resubmit from needs_revision directly", model.StatusNeedsRevision, model.StatusSubmitted, false},
		{"cannot revert submission", model.StatusSubmitted, model.StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(model.RoleStudent, tt.from, tt.to))
		})
	}
}

func TestCanTransition_Reviewer(t *testing.T) {
	tests := []struct {
		name    string
		role    model.UserRole
		from    model.ThesisStatus
		to      model.ThesisStatus
		allowed bool
	}{
		{"professor starts review", model.RoleProfessor, model.StatusSubmitted, model.StatusUnderReview, true},
		{"professor requests revision early", model.RoleProfessor, model.StatusSubmitted, model.StatusNeedsRevision, true},
		{"assistant requests revision", model.RoleGraduationAssistant, model.StatusUnderReview, model.StatusNeedsRevision, true},
		{"professor approves", model.RoleProfessor, model.StatusUnderReview, model.StatusApproved, true},
		{"professor declines", model.RoleProfessor, model.StatusUnderReview, model.StatusDeclined, true},
		{"revised thesis back to submitted", model.RoleGraduationAssistant, model.StatusNeedsRevision, model.StatusSubmitted, true},
		{"revised thesis back under review", model.RoleProfessor, model.StatusNeedsRevision, model.StatusUnderReview, true},
		{"cannot approve from submitted", model.RoleProfessor, model.StatusSubmitted, model.StatusApproved, false},
		{"cannot touch drafts", model.RoleProfessor, model.StatusDraft, model.StatusSubmitted, false},
		{"approved is terminal", model.RoleProfessor, model.StatusApproved, model.StatusUnderReview, false},
		{"declined is terminal", model.RoleGraduationAssistant, model.StatusDeclined, model.StatusSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.role, tt.from, tt.to))
		})
	}
}

func TestCanTransition_InvalidTarget(t *testing.T) {
	assert.False(t, CanTransition(model.RoleProfessor, model.StatusSubmitted, model.ThesisStatus("archived")))
	assert.False(t, CanTransition(model.RoleStudent, model.StatusDraft, model.ThesisStatus("")))
}
