// Package workflow is the single authority on complaint status transitions.
//
// Every handler, authority and complainant action is expressed as an Event.
// Apply checks the actor's role, the current status, and the guard for the
// event against a snapshot of the complaint and its most recent escalation,
// and returns the status the complaint moves to. Apply never mutates its
// inputs; the caller writes the result inside a transaction.
package workflow

import (
	"fmt"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
)

// Event names a requested workflow action.
type Event string

const (
	EventSubmit             Event = "submit"
	EventCategorize         Event = "categorize"
	EventValidate           Event = "validate"
	EventClaim              Event = "claim"
	EventAssign             Event = "assign"
	EventEscalate           Event = "escalate"
	EventMarkNeedsCommittee Event = "mark_needs_committee"
	EventAssignCommittee    Event = "assign_committee"
	EventRequestVideoChat   Event = "request_video_chat"
	EventCompleteVideoChat  Event = "complete_video_chat"
	EventResolve            Event = "resolve"
	EventReject             Event = "reject"
	EventRequestMoreInfo    Event = "request_more_info"
	EventProvideInfo        Event = "provide_info"
	EventSendFinalDecision  Event = "send_final_decision"
	EventResolveEscalation  Event = "resolve_escalation"
	EventForwardEscalation  Event = "forward_escalation"
)

// Actor is the authenticated user requesting an event.
type Actor struct {
	ID   uint
	Role models.Role
}

type guardFunc func(c *models.Complaint, latest *models.Escalation, a Actor) error

type rule struct {
	from []models.Status
	// to is empty when the event leaves the status unchanged.
	to    models.Status
	roles []models.Role
	guard guardFunc
}

var handlerOnly = []models.Role{models.RoleHandler}

var resolverRoles = append([]models.Role{models.RoleHandler}, models.AuthorityRoles...)

var handedOff = []models.Status{
	models.StatusInProgress,
	models.StatusAssigned,
	models.StatusEscalated,
}

var nonTerminal = []models.Status{
	models.StatusPending,
	models.StatusValidated,
	models.StatusInProgress,
	models.StatusAssigned,
	models.StatusEscalated,
	models.StatusPendingMoreInfo,
}

var transitions = map[Event]rule{
	EventCategorize: {
		from:  []models.Status{models.StatusPending},
		roles: handlerOnly,
		guard: all(ownerOrUnclaimed, categoryUnset),
	},
	EventValidate: {
		from:  []models.Status{models.StatusPending},
		to:    models.StatusValidated,
		roles: handlerOnly,
		guard: all(owner, categorySet, noPendingEscalation),
	},
	EventClaim: {
		from:  []models.Status{models.StatusPending, models.StatusValidated},
		roles: handlerOnly,
		guard: unclaimed,
	},
	EventAssign: {
		from:  []models.Status{models.StatusValidated},
		to:    models.StatusInProgress,
		roles: handlerOnly,
		guard: all(owner, noCommitteeRoute, noPendingEscalation),
	},
	EventEscalate: {
		from:  []models.Status{models.StatusValidated, models.StatusInProgress, models.StatusEscalated},
		to:    models.StatusEscalated,
		roles: handlerOnly,
		guard: all(owner, noCommitteeRoute, noPendingEscalation),
	},
	EventMarkNeedsCommittee: {
		from:  []models.Status{models.StatusValidated},
		roles: handlerOnly,
		guard: all(owner, committeeNotRequested, noPendingEscalation),
	},
	EventAssignCommittee: {
		from:  []models.Status{models.StatusValidated},
		roles: handlerOnly,
		guard: all(owner, committeeRequested),
	},
	EventRequestVideoChat: {
		from:  []models.Status{models.StatusValidated},
		roles: handlerOnly,
		guard: all(owner, committeeAssigned, videoChatNotRequested),
	},
	EventCompleteVideoChat: {
		from:  []models.Status{models.StatusValidated},
		roles: handlerOnly,
		guard: all(owner, videoChatOutstanding),
	},
	EventResolve: {
		from: []models.Status{
			models.StatusValidated,
			models.StatusInProgress,
			models.StatusAssigned,
			models.StatusEscalated,
		},
		to:    models.StatusResolved,
		roles: resolverRoles,
		guard: guardResolve,
	},
	EventReject: {
		from:  nonTerminal,
		to:    models.StatusRejected,
		roles: handlerOnly,
		guard: all(ownerOrUnclaimed, noPendingEscalation),
	},
	EventRequestMoreInfo: {
		from:  []models.Status{models.StatusPending, models.StatusValidated, models.StatusInProgress},
		to:    models.StatusPendingMoreInfo,
		roles: handlerOnly,
		guard: all(ownerOrUnclaimed, noPendingEscalation),
	},
	EventProvideInfo: {
		from:  []models.Status{models.StatusPendingMoreInfo},
		to:    models.StatusPending,
		roles: []models.Role{models.RoleUser},
		guard: submitter,
	},
	EventSendFinalDecision: {
		from:  []models.Status{models.StatusResolved},
		roles: handlerOnly,
		guard: owner,
	},
	EventResolveEscalation: {
		from:  handedOff,
		roles: models.AuthorityRoles,
		guard: escalationTarget,
	},
	EventForwardEscalation: {
		from:  handedOff,
		to:    models.StatusEscalated,
		roles: models.AuthorityRoles,
		guard: escalationTarget,
	},
}

// Apply validates ev against the complaint snapshot and returns the resulting status.
// For EventSubmit c must be nil.
func Apply(c *models.Complaint, latest *models.Escalation, ev Event, a Actor) (models.Status, error) {
	if ev == EventSubmit {
		if a.Role != models.RoleUser {
			return "", roleError(ev, a.Role)
		}
		return models.StatusPending, nil
	}

	r, ok := transitions[ev]
	if !ok {
		return "", apperr.Validation("workflow.unknown_event", fmt.Sprintf("unknown workflow event %q", ev))
	}
	if c == nil {
		return "", apperr.NotFound("complaint.not_found", "complaint not found")
	}
	if !hasRole(r.roles, a.Role) {
		return "", roleError(ev, a.Role)
	}
	if !containsStatus(r.from, c.Status) {
		if c.Status.Terminal() {
			return "", apperr.Conflict("complaint.closed",
				fmt.Sprintf("complaint is already %s", c.Status))
		}
		return "", apperr.Conflict("workflow.invalid_transition",
			fmt.Sprintf("cannot %s a complaint with status '%s'", humanEvent(ev), c.Status))
	}
	if r.guard != nil {
		if err := r.guard(c, latest, a); err != nil {
			return "", err
		}
	}
	if r.to == "" {
		return c.Status, nil
	}
	return r.to, nil
}

// Allowed reports whether ev would currently succeed. It is used to build the
// action list shown with a complaint.
func Allowed(c *models.Complaint, latest *models.Escalation, ev Event, a Actor) bool {
	_, err := Apply(c, latest, ev, a)
	return err == nil
}

// AvailableEvents lists the events the actor may request on c right now.
func AvailableEvents(c *models.Complaint, latest *models.Escalation, a Actor) []Event {
	var events []Event
	for _, ev := range orderedEvents {
		if Allowed(c, latest, ev, a) {
			events = append(events, ev)
		}
	}
	return events
}

var orderedEvents = []Event{
	EventClaim,
	EventCategorize,
	EventValidate,
	EventAssign,
	EventEscalate,
	EventMarkNeedsCommittee,
	EventAssignCommittee,
	EventRequestVideoChat,
	EventCompleteVideoChat,
	EventResolve,
	EventReject,
	EventRequestMoreInfo,
	EventProvideInfo,
	EventSendFinalDecision,
	EventResolveEscalation,
	EventForwardEscalation,
}

// ClaimsImplicitly reports whether a successful ev on an unclaimed complaint
// makes the actor its handler.
func ClaimsImplicitly(ev Event) bool {
	switch ev {
	case EventClaim, EventCategorize, EventReject, EventRequestMoreInfo:
		return true
	}
	return false
}

func hasRole(roles []models.Role, r models.Role) bool {
	for _, role := range roles {
		if role == r {
			return true
		}
	}
	return false
}

func containsStatus(list []models.Status, s models.Status) bool {
	for _, st := range list {
		if st == s {
			return true
		}
	}
	return false
}

func roleError(ev Event, r models.Role) error {
	return apperr.Forbidden("auth.role_forbidden",
		fmt.Sprintf("role '%s' may not %s a complaint", r, humanEvent(ev)))
}

func humanEvent(ev Event) string {
	switch ev {
	case EventMarkNeedsCommittee:
		return "request a committee for"
	case EventAssignCommittee:
		return "assign a committee to"
	case EventRequestVideoChat:
		return "request a video chat for"
	case EventCompleteVideoChat:
		return "complete the video chat for"
	case EventRequestMoreInfo:
		return "request more information on"
	case EventProvideInfo:
		return "provide information on"
	case EventSendFinalDecision:
		return "send a final decision on"
	case EventResolveEscalation:
		return "resolve the escalation of"
	case EventForwardEscalation:
		return "forward"
	}
	return string(ev)
}
