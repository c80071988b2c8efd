// Package policy centralizes the role- and ownership-based access rules
// that gate every mutating operation. Handlers resolve the target entities,
// then consult Evaluate with a (actor, action, resource) triple instead of
// re-deriving role comparisons inline.
package policy

import (
	"thesistrack/backend/model"
)

// Action identifies an operation on a resource kind.
type Action string

const (
	ThesisCreate Action = "thesis:create"
	ThesisRead   Action = "thesis:read"
	ThesisUpdate Action = "thesis:update"
	ThesisDelete Action = "thesis:delete"

	CommentCreate  Action = "comment:create"
	CommentEdit    Action = "comment:edit"    // any field, author only
	CommentResolve Action = "comment:resolve" // is_resolved flag only
	CommentDelete  Action = "comment:delete"

	CommitteeManage  Action = "committee:manage" // add/remove members
	CommitteeUpdate  Action = "committee:update" // full update of a membership
	CommitteeApprove Action = "committee:approve" // member toggling own approval

	AttachmentUpload  Action = "attachment:upload"
	AttachmentReplace Action = "attachment:replace"
	AttachmentDelete  Action = "attachment:delete"

	ReviewCreate Action = "review:create"
	ReviewList   Action = "review:list"

	RequestRead Action = "request:read"

	DeadlineManage Action = "deadline:manage"

	EventRead   Action = "event:read"
	EventUpdate Action = "event:update"
	EventDelete Action = "event:delete"
)

// Resource carries the entities an access decision depends on. Only the
// fields relevant to the evaluated action need to be set; Thesis is
// required for every thesis-scoped action.
type Resource struct {
	Thesis     *model.Thesis
	Comment    *model.ThesisComment
	Member     *model.ThesisCommitteeMember
	Attachment *model.ThesisAttachment
	Request    *model.AssistantRequest
	Event      *model.Event
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string // human-readable denial reason, empty when allowed
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

func isSupervisor(actor *model.User, thesis *model.Thesis) bool {
	return thesis.SupervisorID != nil && *thesis.SupervisorID == actor.ID
}

func isOwner(actor *model.User, thesis *model.Thesis) bool {
	return thesis.StudentID == actor.ID
}

// Evaluate applies the access rule for the given actor, action and resource.
func Evaluate(actor *model.User, action Action, res Resource) Decision {
	switch action {

	case ThesisCreate:
		if actor.Role != model.RoleStudent {
			return deny("Only students can create theses")
		}
		return allow()

	case ThesisRead:
		if actor.Role == model.RoleStudent && !isOwner(actor, res.Thesis) {
			return deny("Not enough permissions to access this thesis")
		}
		return allow()

	case ThesisUpdate:
		if isOwner(actor, res.Thesis) || isSupervisor(actor, res.Thesis) || actor.Role.IsReviewer() {
			return allow()
		}
		return deny("Not enough permissions to update this thesis")

	case ThesisDelete:
		if !isOwner(actor, res.Thesis) {
			return deny("Not enough permissions to delete this thesis")
		}
		if res.Thesis.Status != model.StatusDraft {
			return deny("Cannot delete thesis that is not in draft status")
		}
		return allow()

	case CommentCreate:
		// Drafts accept comments from the owner only
		if res.Thesis.Status == model.StatusDraft && !isOwner(actor, res.Thesis) {
			return deny("Cannot comment on thesis in draft status")
		}
		return allow()

	case CommentEdit:
		if res.Comment.UserID != actor.ID {
			return deny("Not enough permissions to update this comment")
		}
		return allow()

	case CommentResolve:
		if res.Comment.UserID == actor.ID || actor.Role.IsReviewer() {
			return allow()
		}
		return deny("Not enough permissions to update this comment")

	case CommentDelete:
		if res.Comment.UserID == actor.ID || actor.Role == model.RoleProfessor {
			return allow()
		}
		return deny("Not enough permissions to delete this comment")

	case CommitteeManage:
		if actor.Role == model.RoleProfessor || isSupervisor(actor, res.Thesis) {
			return allow()
		}
		return deny("Only professors or the thesis supervisor can manage committee members")

	case CommitteeUpdate:
		if isSupervisor(actor, res.Thesis) || actor.Role == model.RoleProfessor {
			return allow()
		}
		return deny("Not enough permissions to update this committee member")

	case CommitteeApprove:
		if res.Member.UserID == actor.ID {
			return allow()
		}
		return deny("Only the committee member can update their approval")

	case AttachmentUpload:
		if isOwner(actor, res.Thesis) || actor.Role.IsReviewer() {
			return allow()
		}
		return deny("Not enough permissions to attach files to this thesis")

	case AttachmentReplace:
		if isOwner(actor, res.Thesis) || res.Attachment.UploadedBy == actor.ID {
			return allow()
		}
		return deny("Not enough permissions to replace this attachment")

	case AttachmentDelete:
		if isOwner(actor, res.Thesis) || res.Attachment.UploadedBy == actor.ID || isSupervisor(actor, res.Thesis) {
			return allow()
		}
		return deny("Not enough permissions to delete this attachment")

	case ReviewCreate:
		if actor.Role != model.RoleGraduationAssistant {
			return deny("Only graduation assistants can create reviews")
		}
		if !isSupervisor(actor, res.Thesis) {
			return deny("Only the assigned supervisor can review this thesis")
		}
		return allow()

	case ReviewList:
		if isOwner(actor, res.Thesis) || isSupervisor(actor, res.Thesis) || actor.Role == model.RoleProfessor {
			return allow()
		}
		return deny("Not enough permissions to view reviews for this thesis")

	case RequestRead:
		if actor.ID == res.Request.StudentID || actor.ID == res.Request.AssistantID || actor.Role == model.RoleProfessor {
			return allow()
		}
		return deny("Not authorized to access this request")

	case DeadlineManage:
		if actor.Role.IsReviewer() {
			return allow()
		}
		return deny("Only professors and graduation assistants can manage deadlines")

	case EventRead, EventUpdate, EventDelete:
		if res.Event.UserID == actor.ID {
			return allow()
		}
		// Professors may handle thesis-linked events of others
		if actor.Role == model.RoleProfessor && res.Event.ThesisID != nil {
			return allow()
		}
		return deny("Not enough permissions to access this event")
	}

	return deny("Unknown action")
}
