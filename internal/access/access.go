// Package access decides what an actor may see and do. Every function is pure.
package access

import (
	"fmt"

	"studyboard/internal/domain"
)

type Action string

const (
	CreateProject       Action = "create-project"
	CreateActivity      Action = "create-activity"
	EditProject         Action = "edit-project"
	EditProjectContents Action = "edit-project-contents"
	PinActivity         Action = "pin-activity"
	DeleteActivity      Action = "delete-activity"
	DeleteProject       Action = "delete-project"
	AccessSettings      Action = "access-settings"
	Comment             Action = "comment"
)

// Actions lists every gated action in display order.
var Actions = []Action{
	CreateProject, CreateActivity, EditProject, EditProjectContents,
	PinActivity, DeleteActivity, DeleteProject, AccessSettings, Comment,
}

// ForbiddenError indicates the actor's role rules out an action.
type ForbiddenError struct {
	Action Action
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("action %s not permitted", e.Action)
}

// Can reports whether actor's role allows action. Whether the target project is
// visible to the actor is decided by the caller before asking.
func Can(actor domain.Actor, action Action) bool {
	switch action {
	case CreateProject, CreateActivity, EditProject, EditProjectContents, PinActivity, DeleteActivity:
		return actor.Role == domain.RoleAdmin || actor.Role == domain.RoleMember
	case DeleteProject, AccessSettings:
		return actor.Role == domain.RoleAdmin
	case Comment:
		return true
	default:
		return false
	}
}

// Authorize is Can returning a ForbiddenError on denial.
func Authorize(actor domain.Actor, action Action) error {
	if !Can(actor, action) {
		return ForbiddenError{Action: action}
	}
	return nil
}

// Capabilities evaluates every action for actor.
func Capabilities(actor domain.Actor) map[Action]bool {
	out := make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		out[a] = Can(actor, a)
	}
	return out
}
