package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a rung in the organizational hierarchy. Custom designations
// created by the Chairman are carried as free-form Role values.
type Role string

const (
	RoleChairman Role = "Chairman"
	RoleCEO      Role = "CEO"
	RoleCOO      Role = "COO"
	RoleMD       Role = "MD"
	RoleCFO      Role = "CFO"
	RoleHOD      Role = "HOD"
	RoleSenior   Role = "Senior"
	RoleJunior   Role = "Junior"
)

// IsExecutive reports whether the role sits on the executive board.
func (r Role) IsExecutive() bool {
	switch r {
	case RoleChairman, RoleCEO, RoleCOO, RoleMD, RoleCFO:
		return true
	}
	return false
}

// Department is an organizational unit.
type Department string

const (
	DeptExecutive   Department = "Executive"
	DeptFinance     Department = "Finance"
	DeptEngineering Department = "Engineering"
	DeptBusinessDev Department = "Business Development"
	DeptRegulatory  Department = "Regulatory"
	DeptRD          Department = "R&D"
	DeptSales       Department = "Sales"
	DeptMarketing   Department = "Marketing"
	DeptProduction  Department = "Production"
	DeptSupplyChain Department = "Supply Chain"
	DeptQA          Department = "Quality Assurance"
	DeptQC          Department = "Quality Control"
	DeptExport      Department = "Export"
	DeptIT          Department = "IT"
)

// Team is a sales team grouping; None for everyone else.
type Team string

const (
	TeamNone       Team = "None"
	TeamAchievers  Team = "Achievers"
	TeamPassionate Team = "Passionate"
	TeamConcord    Team = "Concord"
	TeamDynamic    Team = "Dynamic"
)

// Region is a sales region; None for everyone else.
type Region string

const (
	RegionNone Region = "None"
	Region1    Region = "Region 1"
	Region2    Region = "Region 2"
	Region3    Region = "Region 3"
)

// User is a member of personnel. Created at hiring time by the Chairman,
// mutable by the same, never deleted.
type User struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Password   string     `json:"-"`
	FullName   string     `json:"full_name"`
	Role       Role       `json:"role"`
	Department Department `json:"department"`
	Team       Team       `json:"team"`
	Region     Region     `json:"region"`
	ReportsTo  *uuid.UUID `json:"reports_to,omitempty"`
	IsMSD      bool       `json:"is_msd"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Role       Role       `json:"role"`
	Department Department `json:"department"`
	Team       Team       `json:"team"`
	Region     Region     `json:"region"`
	ReportsTo  *uuid.UUID `json:"reports_to,omitempty"`
	IsMSD      bool       `json:"is_msd"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Designation is a custom role label added to the hierarchy at runtime.
type Designation struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Department: u.Department,
		Team:       u.Team,
		Region:     u.Region,
		ReportsTo:  u.ReportsTo,
		IsMSD:      u.IsMSD,
		CreatedAt:  u.CreatedAt,
	}
}
