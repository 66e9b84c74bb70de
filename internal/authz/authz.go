// Package authz centralizes permission checks. Every operation asks
// Can(user, action, target) once instead of re-deriving role predicates
// at each call site.
package authz

import (
	"github.com/swisspharma/opsboard-backend/internal/models"
)

// Action is a permission-scoped operation.
type Action string

const (
	// ActionTaskDelete purges a completed task from the board.
	ActionTaskDelete Action = "task.delete"
	// ActionTaskAssign issues a directive to another user.
	ActionTaskAssign Action = "task.assign"
	// ActionAuditView reads the audit trail.
	ActionAuditView Action = "audit.view"
	// ActionPersonnelManage creates and updates personnel records and
	// designations.
	ActionPersonnelManage Action = "personnel.manage"
	// ActionAppraisalRun requests a KPI appraisal for a subordinate.
	ActionAppraisalRun Action = "appraisal.run"
	// ActionSnapshotManage exports or imports the full entity store.
	ActionSnapshotManage Action = "snapshot.manage"
)

// Can reports whether the user may perform the action. The target
// parameter carries the affected entity for checks that depend on it;
// pass nil when the action is global.
func Can(user *models.User, action Action, target interface{}) bool {
	if user == nil {
		return false
	}
	switch action {
	case ActionTaskDelete:
		// executives and department heads may purge completed tasks
		return user.Role.IsExecutive() || user.Role == models.RoleHOD
	case ActionTaskAssign:
		return user.Role.IsExecutive() || user.Role == models.RoleHOD || user.Role == models.RoleSenior
	case ActionAuditView:
		return user.Role == models.RoleChairman || user.Role == models.RoleCEO
	case ActionPersonnelManage, ActionSnapshotManage:
		return user.Role == models.RoleChairman
	case ActionAppraisalRun:
		if !user.Role.IsExecutive() && user.Role != models.RoleHOD {
			return false
		}
		if subject, ok := target.(*models.User); ok && user.Role == models.RoleHOD {
			return subject.Department == user.Department
		}
		return true
	}
	return false
}
