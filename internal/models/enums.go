package models

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusPending         Status = "pending"
	StatusValidated       Status = "validated"
	StatusInProgress      Status = "in_progress"
	StatusAssigned        Status = "assigned"
	StatusEscalated       Status = "escalated"
	StatusResolved        Status = "resolved"
	StatusRejected        Status = "rejected"
	StatusPendingMoreInfo Status = "pending_more_info"
)

// AllStatuses lists every legal complaint status.
var AllStatuses = []Status{
	StatusPending,
	StatusValidated,
	StatusInProgress,
	StatusAssigned,
	StatusEscalated,
	StatusResolved,
	StatusRejected,
	StatusPendingMoreInfo,
}

// Valid reports whether s is one of AllStatuses.
func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal reports whether no further handler transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// Category classifies a complaint. The zero value means "not yet categorized".
type Category string

const (
	CategoryUnset          Category = ""
	CategoryAcademic       Category = "academic"
	CategoryAdministrative Category = "administrative"
)

// Valid reports whether c is a category a handler may assign.
func (c Category) Valid() bool {
	return c == CategoryAcademic || c == CategoryAdministrative
}

// Visibility controls whether the submitter's identity is shown to staff.
type Visibility string

const (
	VisibilityStandard  Visibility = "standard"
	VisibilityAnonymous Visibility = "anonymous"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityStandard || v == VisibilityAnonymous
}

// Role is the discriminator carried by every authenticated user.
type Role string

const (
	RoleUser             Role = "user"
	RoleHandler          Role = "handler"
	RoleDepartmentHead   Role = "department_head"
	RoleCollegeDean      Role = "college_dean"
	RoleAcademicVP       Role = "academic_vp"
	RoleAdministrativeVP Role = "administrative_vp"
	RolePresident        Role = "president"
	RoleAdmin            Role = "admin"
)

// AuthorityRoles are the responsible bodies that can receive assignments and escalations.
var AuthorityRoles = []Role{
	RoleDepartmentHead,
	RoleCollegeDean,
	RoleAcademicVP,
	RoleAdministrativeVP,
	RolePresident,
}

// IsAuthority reports whether r is a responsible body.
func (r Role) IsAuthority() bool {
	for _, a := range AuthorityRoles {
		if r == a {
			return true
		}
	}
	return false
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleHandler || r == RoleAdmin || r.IsAuthority()
}

// ActionType distinguishes the two kinds of hand-off in the escalation ledger.
type ActionType string

const (
	ActionAssignment ActionType = "assignment"
	ActionEscalation ActionType = "escalation"
)

// EscalationStatus is the sub-state of a single hand-off.
type EscalationStatus string

const (
	EscalationPending  EscalationStatus = "pending"
	EscalationResolved EscalationStatus = "resolved"
)

// DecisionStatus marks how a decision should be read by its receiver.
type DecisionStatus string

const (
	DecisionPending        DecisionStatus = "pending"
	DecisionActionRequired DecisionStatus = "action_required"
	DecisionFinal          DecisionStatus = "final"
)

// Valid reports whether s is a known decision status.
func (s DecisionStatus) Valid() bool {
	return s == DecisionPending || s == DecisionActionRequired || s == DecisionFinal
}
