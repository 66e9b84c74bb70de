package authz

import (
	"testing"

	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

func user(role models.Role, dept models.Department) *models.User {
	return &models.User{ID: uuid.New(), Role: role, Department: dept}
}

func TestCan(t *testing.T) {
	t.Parallel()

	chairman := user(models.RoleChairman, models.DeptExecutive)
	ceo := user(models.RoleCEO, models.DeptExecutive)
	hodQA := user(models.RoleHOD, models.DeptQA)
	senior := user(models.RoleSenior, models.DeptQA)
	junior := user(models.RoleJunior, models.DeptSales)

	cases := []struct {
		name   string
		user   *models.User
		action Action
		target interface{}
		want   bool
	}{
		{"chairman deletes tasks", chairman, ActionTaskDelete, nil, true},
		{"hod deletes tasks", hodQA, ActionTaskDelete, nil, true},
		{"senior cannot delete", senior, ActionTaskDelete, nil, false},
		{"senior assigns tasks", senior, ActionTaskAssign, nil, true},
		{"junior cannot assign", junior, ActionTaskAssign, nil, false},
		{"ceo views audit", ceo, ActionAuditView, nil, true},
		{"hod cannot view audit", hodQA, ActionAuditView, nil, false},
		{"chairman manages personnel", chairman, ActionPersonnelManage, nil, true},
		{"ceo cannot manage personnel", ceo, ActionPersonnelManage, nil, false},
		{"chairman manages snapshots", chairman, ActionSnapshotManage, nil, true},
		{"hod cannot manage snapshots", hodQA, ActionSnapshotManage, nil, false},
		{"exec appraises anyone", ceo, ActionAppraisalRun, user(models.RoleJunior, models.DeptSales), true},
		{"hod appraises own department", hodQA, ActionAppraisalRun, user(models.RoleSenior, models.DeptQA), true},
		{"hod cannot appraise other department", hodQA, ActionAppraisalRun, user(models.RoleSenior, models.DeptSales), false},
		{"senior cannot appraise", senior, ActionAppraisalRun, user(models.RoleJunior, models.DeptQA), false},
		{"nil user denied", nil, ActionTaskAssign, nil, false},
		{"unknown action denied", chairman, Action("board.dissolve"), nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Can(tc.user, tc.action, tc.target); got != tc.want {
				t.Fatalf("Can(%v, %s) = %v, want %v", tc.user, tc.action, got, tc.want)
			}
		})
	}
}
