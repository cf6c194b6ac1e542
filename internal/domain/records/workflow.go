package records

import "civil-registry/internal/domain/users"

// Matriz de transiciones del workflow:
//
//	PENDING      -> UNDER_REVIEW | APPROVED | REJECTED
//	UNDER_REVIEW -> APPROVED | REJECTED
//	APPROVED     -> (terminal)
//	REJECTED     -> (terminal)
var allowedTransitions = map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
}

// RoleCanReview reporta si el role puede mover registros por el workflow.
func RoleCanReview(role users.Role) bool {
	return role == users.RoleAdmin || role == users.RoleSupervisor
}

// TransitionAllowed reporta si la transición from -> to existe en la matriz.
func TransitionAllowed(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransition centraliza la autorización del workflow: role permitido
// y transición válida. Es el único punto donde se chequean roles contra
// cambios de status.
func CanTransition(role users.Role, from, to Status) bool {
	return RoleCanReview(role) && TransitionAllowed(from, to)
}
