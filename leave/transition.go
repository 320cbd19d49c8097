package leave

// =============================================================================
// TRANSITION TABLE - The explicit lifecycle state machine
// =============================================================================
//
// apply ──▶ pending ──▶ forwarded ──▶ approved ──▶ cancelled
//              │             │  ▲          │
//              │             └──┘          │ (re-forward along the chain)
//              ├──▶ approved               │
//              ├──▶ rejected   forwarded ──┼──▶ rejected
//              └──▶ cancelled  forwarded ──┴──▶ cancelled
//
// rejected and cancelled are terminal. approved is terminal except for
// cancellation by the owner.

var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusApproved:  true,
		StatusForwarded: true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
	StatusForwarded: {
		StatusApproved:  true,
		StatusForwarded: true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
	StatusApproved: {
		StatusCancelled: true,
	},
	StatusRejected:  {},
	StatusCancelled: {},
}

// CanTransition reports whether a request may move from one status to
// another. Lifecycle operations call transition() instead of assigning
// Status directly, so illegal moves fail before any side effect.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// transition moves the request to the target status or returns a
// TransitionError. Approver bookkeeping stays with the caller.
func (r *Request) transition(to Status) error {
	if !CanTransition(r.Status, to) {
		return &TransitionError{From: r.Status, To: to}
	}
	r.Status = to
	return nil
}
