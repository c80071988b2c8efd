package thesis

import (
	"thesistrack/backend/model"
)

// Status transitions are pinned to an explicit table per actor class;
// anything outside it is rejected.

// studentTransitions are the moves the owning student may make.
var studentTransitions = map[model.ThesisStatus][]model.ThesisStatus{
	model.StatusDraft: {model.StatusSubmitted},
}

// reviewerTransitions are the moves supervisors and reviewer roles may make.
var reviewerTransitions = map[model.ThesisStatus][]model.ThesisStatus{
	model.StatusSubmitted:     {model.StatusUnderReview, model.StatusNeedsRevision},
	model.StatusUnderReview:   {model.StatusNeedsRevision, model.StatusApproved, model.StatusDeclined},
	model.StatusNeedsRevision: {model.StatusSubmitted, model.StatusUnderReview},
}

func transitionAllowed(table map[model.ThesisStatus][]model.ThesisStatus, from, to model.ThesisStatus) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition reports whether the actor may move a thesis from one
// status to another. Owners who also hold a reviewer role get the
// reviewer table.
func CanTransition(actorRole model.UserRole, from, to model.ThesisStatus) bool {
	if from == to {
		return true
	}
	if !to.IsValid() {
		return false
	}
	if actorRole.IsReviewer() {
		return transitionAllowed(reviewerTransitions, from, to)
	}
	return transitionAllowed(studentTransitions, from, to)
}
