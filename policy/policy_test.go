package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"thesistrack/backend/model"
)

func user(id string, role model.UserRole) *model.User {
	return &model.User{ID: id, Role: role}
}

func thesisOwnedBy(studentID string) *model.Thesis {
	return &model.Thesis{ID: "t1", StudentID: studentID, Status: model.StatusSubmitted}
}

func TestEvaluate_ThesisCreate(t *testing.T) {
	assert.True(t, Evaluate(user("s1", model.RoleStudent), ThesisCreate, Resource{}).Allowed)
	assert.False(t, Evaluate(user("p1", model.RoleProfessor), ThesisCreate, Resource{}).Allowed)
	assert.False(t, Evaluate(user("a1", model.RoleGraduationAssistant), ThesisCreate, Resource{}).Allowed)
}

func TestEvaluate_ThesisRead(t *testing.T) {
	thesis := thesisOwnedBy("s1")

	tests := []struct {
		name    string
		actor   *model.User
		allowed bool
	}{
		{"owner reads own", user("s1", model.RoleStudent), true},
		{"other student denied", user("s2", model.RoleStudent), false},
		{"professor reads any", user("p1", model.RoleProfessor), true},
		{"assistant reads any", user("a1", model.RoleGraduationAssistant), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Evaluate(tt.actor, ThesisRead, Resource{Thesis: thesis})
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestEvaluate_ThesisDelete(t *testing.T) {
	draft := &model.Thesis{ID: "t1", StudentID: "s1", Status: model.StatusDraft}
	submitted := thesisOwnedBy("s1")

	assert.True(t, Evaluate(user("s1", model.RoleStudent), ThesisDelete, Resource{Thesis: draft}).Allowed)
	assert.False(t, Evaluate(user("s2", model.RoleStudent), ThesisDelete, Resource{Thesis: draft}).Allowed)
	assert.False(t, Evaluate(user("p1", model.RoleProfessor), ThesisDelete, Resource{Thesis: draft}).Allowed)

	decision := Evaluate(user("s1", model.RoleStudent), ThesisDelete, Resource{Thesis: submitted})
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "draft")
}

func TestEvaluate_CommentRules(t *testing.T) {
	thesis := thesisOwnedBy("s1")
	comment := &model.ThesisComment{ID: "c1", ThesisID: "t1", UserID: "s1"}

	// Authors edit their own comments, nobody else does
	assert.True(t, Evaluate(user("s1", model.RoleStudent), CommentEdit, Resource{Thesis: thesis, Comment: comment}).Allowed)
	assert.False(t, Evaluate(user("p1", model.RoleProfessor), CommentEdit, Resource{Thesis: thesis, Comment: comment}).Allowed)

	// Reviewer roles may resolve other users' comments
	assert.True(t, Evaluate(user("p1", model.RoleProfessor), CommentResolve, Resource{Thesis: thesis, Comment: comment}).Allowed)
	assert.True(t, Evaluate(user("a1", model.RoleGraduationAssistant), CommentResolve, Resource{Thesis: thesis, Comment: comment}).Allowed)
	assert.False(t, Evaluate(user("s2", model.RoleStudent), CommentResolve, Resource{Thesis: thesis, Comment: comment}).Allowed)

	// Author or any professor may delete
	assert.True(t, Evaluate(user("s1", model.RoleStudent), CommentDelete, Resource{Thesis: thesis, Comment: comment}).Allowed)
	assert.True(t, Evaluate(user("p1", model.RoleProfessor), CommentDelete, Resource{Thesis: thesis, Comment: comment}).Allowed)
	assert.False(t, Evaluate(user("a1", model.RoleGraduationAssistant), CommentDelete, Resource{Thesis: thesis, Comment: comment}).Allowed)
}

func TestEvaluate_CommentCreateOnDraft(t *testing.T) {
	draft := &model.Thesis{ID: "t1", StudentID: "s1", Status: model.StatusDraft}

	assert.True(t, Evaluate(user("s1", model.RoleStudent), CommentCreate, Resource{Thesis: draft}).Allowed)
	assert.False(t, Evaluate(user("p1", model.RoleProfessor), CommentCreate, Resource{Thesis: draft}).Allowed)

	submitted := thesisOwnedBy("s1")
	assert.True(t, Evaluate(user("p1", model.RoleProfessor), CommentCreate, Resource{Thesis: submitted}).Allowed)
}

func TestEvaluate_ReviewCreate(t *testing.T) {
	supervisorID := "a1"
	thesis := &model.Thesis{ID: "t1", StudentID: "s1", SupervisorID: &supervisorID, Status: model.StatusUnderReview}

	assert.True(t, Evaluate(user("a1", model.RoleGraduationAssistant), ReviewCreate, Resource{Thesis: thesis}).Allowed)

	// Assistants who are not the assigned supervisor are denied
	assert.False(t, Evaluate(user("a2", model.RoleGraduationAssistant), ReviewCreate, Resource{Thesis: thesis}).Allowed)

	// Professors cannot author reviews even when supervising
	profID := "p1"
	profThesis := &model.Thesis{ID: "t2", StudentID: "s1", SupervisorID: &profID}
	assert.False(t, Evaluate(user("p1", model.RoleProfessor), ReviewCreate, Resource{Thesis: profThesis}).Allowed)
}

func TestEvaluate_CommitteeApprove(t *testing.T) {
	thesis := thesisOwnedBy("s1")
	member := &model.ThesisCommitteeMember{ID: "m1", ThesisID: "t1", UserID: "p2"}

	assert.True(t, Evaluate(user("p2", model.RoleProfessor), CommitteeApprove, Resource{Thesis: thesis, Member: member}).Allowed)
	assert.False(t, Evaluate(user("p1", model.RoleProfessor), CommitteeApprove, Resource{Thesis: thesis, Member: member}).Allowed)
}

func TestEvaluate_DeadlineManage(t *testing.T) {
	assert.True(t, Evaluate(user("p1", model.RoleProfessor), DeadlineManage, Resource{}).Allowed)
	assert.True(t, Evaluate(user("a1", model.RoleGraduationAssistant), DeadlineManage, Resource{}).Allowed)
	assert.False(t, Evaluate(user("s1", model.RoleStudent), DeadlineManage, Resource{}).Allowed)
}

func TestEvaluate_EventAccess(t *testing.T) {
	thesisID := "t1"
	ownEvent := &model.Event{ID: "e1", UserID: "s1"}
	linkedEvent := &model.Event{ID: "e2", UserID: "s1", ThesisID: &thesisID}

	assert.True(t, Evaluate(user("s1", model.RoleStudent), EventRead, Resource{Event: ownEvent}).Allowed)
	assert.False(t, Evaluate(user("s2", model.RoleStudent), EventRead, Resource{Event: ownEvent}).Allowed)

	// Professors only reach other users' events through a thesis link
	assert.False(t, Evaluate(user("p1", model.RoleProfessor), EventRead, Resource{Event: ownEvent}).Allowed)
	assert.True(t, Evaluate(user("p1", model.RoleProfessor), EventUpdate, Resource{Event: linkedEvent}).Allowed)
}

func TestEvaluate_RequestRead(t *testing.T) {
	request := &model.AssistantRequest{ID: "r1", StudentID: "s1", AssistantID: "a1"}

	assert.True(t, Evaluate(user("s1", model.RoleStudent), RequestRead, Resource{Request: request}).Allowed)
	assert.True(t, Evaluate(user("a1", model.RoleGraduationAssistant), RequestRead, Resource{Request: request}).Allowed)
	assert.True(t, Evaluate(user("p1", model.RoleProfessor), RequestRead, Resource{Request: request}).Allowed)
	assert.False(t, Evaluate(user("s2", model.RoleStudent), RequestRead, Resource{Request: request}).Allowed)
}
