// Package policy holds the task-visibility and assignment rules as pure
// functions over user and task values. Nothing in here performs I/O or
// reads a clock; callers supply the directory snapshot and the loaded
// tasks, which keeps every decision deterministic and independently
// testable.
package policy

import (
	"sort"

	"github.com/clubware/taskhub/internal/models"
)

// Field identifies a mutable part of a task for permission checks.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldAssignees   Field = "assignees"
	FieldDeadline    Field = "deadline"
	FieldProgress    Field = "progress"
)

// AssignableTargets returns the users the actor may assign tasks to,
// by rank:
//
//   - levels 0-1 (presidium): everyone.
//   - level 2 (executive): everyone at level 3 or below in the hierarchy.
//   - level 3 (domain director): juniors within the actor's domain.
//   - level 4 (vertical lead): juniors within the actor's domain and
//     subdomain; a lead without a subdomain can assign to nobody.
//   - level 5 and beyond: nobody.
//
// The actor is never part of the result, regardless of rank.
func AssignableTargets(actor models.User, users []models.User) []models.User {
	var targets []models.User
	for _, u := range users {
		if u.ID == actor.ID {
			continue
		}
		if canAssignTo(actor, u) {
			targets = append(targets, u)
		}
	}
	return targets
}

func canAssignTo(actor, target models.User) bool {
	switch {
	case actor.Level <= models.LevelVicePresident:
		return true
	case actor.Level == models.LevelExecutive:
		return target.Level >= models.LevelDirector
	case actor.Level == models.LevelDirector:
		return target.Domain == actor.Domain && target.Level > actor.Level
	case actor.Level == models.LevelLead:
		return target.Domain == actor.Domain &&
			actor.Subdomain != "" &&
			target.Subdomain == actor.Subdomain &&
			target.Level > actor.Level
	default:
		return false
	}
}

// CanAssign reports whether the actor may assign a task to the target.
// It is the single-target form of AssignableTargets and obeys the same
// rules, including the self-exclusion.
func CanAssign(actor, target models.User) bool {
	if target.ID == actor.ID {
		return false
	}
	return canAssignTo(actor, target)
}

// VisibleTasks filters tasks down to the ones the actor may see and
// orders the result newest-first by creation time. Presidium members
// (levels 0-1) see every task; everyone else sees a task only when they
// are its assigner or one of its assignees. Callers are free to re-sort
// the returned slice; re-sorting never changes the visibility set.
func VisibleTasks(actor models.User, tasks []models.Task) []models.Task {
	visible := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if CanView(actor, t) {
			visible = append(visible, t)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible
}

// CanView reports whether the actor may see the task at all. The task's
// assignments must be loaded.
func CanView(actor models.User, task models.Task) bool {
	if actor.Level <= models.LevelVicePresident {
		return true
	}
	return actor.ID == task.AssignerID || task.HasAssignee(actor.ID)
}

// CanMutate reports whether the actor may change the given field of the
// task. Core fields (title, description, assignees, deadline) belong to
// the assigner; progress belongs to the assignees. The task's
// assignments must be loaded for progress checks.
func CanMutate(actor models.User, task models.Task, field Field) bool {
	switch field {
	case FieldTitle, FieldDescription, FieldAssignees, FieldDeadline:
		return actor.ID == task.AssignerID
	case FieldProgress:
		return task.HasAssignee(actor.ID)
	default:
		return false
	}
}

// CanDelete reports whether the actor may delete the task. Only the
// assigner can.
func CanDelete(actor models.User, task models.Task) bool {
	return actor.ID == task.AssignerID
}

// CanComment reports whether the actor may post a comment on the task.
// Commenting belongs to the people working the task: its assigner and
// its assignees. Presidium visibility alone does not grant it.
func CanComment(actor models.User, task models.Task) bool {
	return actor.ID == task.AssignerID || task.HasAssignee(actor.ID)
}

// CanViewActivity reports whether the actor may read the club-wide
// activity feed. Reserved for the presidium.
func CanViewActivity(actor models.User) bool {
	return actor.Level <= models.LevelVicePresident
}
