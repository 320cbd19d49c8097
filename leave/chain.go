/*
chain.go - Approval chain construction

PURPOSE:

	Derives the ordered sequence of approvers a request must pass through
	before final approval. The chain is built eagerly at apply time, not
	lazily per step, so the whole route is visible on the request from the
	moment it is created.

ESCALATION RULES (role of the current approver -> next approver):

	| current approver      | next approver                  |
	|-----------------------|--------------------------------|
	| none (first call)     | applicant's reporting manager  |
	| manager, duration <=3 | the sole HR employee           |
	| manager, duration > 3 | the sole Director employee     |
	| director              | the sole HR employee           |
	| hr                    | none (chain terminates)        |

CYCLE GUARD:

	Build stops when NextApprover returns an approver already in the
	chain. A misconfigured reporting graph (e.g. the Director reporting to
	a Manager) therefore produces a finite chain instead of a loop.

SEE ALSO:
  - service.go: Builds the chain at apply time, asks for the next
    approver when forwarding
*/
package leave

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// CHAIN BUILDER
// =============================================================================

// ChainBuilder resolves approvers against the employee directory.
type ChainBuilder struct {
	Directory Directory
}

// NextApprover returns the approver after current for the given
// applicant and leave duration, or nil when the chain terminates.
//
// With current == nil it resolves the first approver: the applicant's
// reporting manager (ErrNoManager when none is configured). Singleton
// role lookups surface directory misconfiguration as ErrRoleNotFound /
// ErrRoleAmbiguous.
func (b *ChainBuilder) NextApprover(ctx context.Context, applicant *Employee, duration int, current *Employee) (*Employee, error) {
	if current == nil {
		if applicant.ReportingManagerID == nil {
			return nil, fmt.Errorf("applicant %s: %w", applicant.ID, ErrNoManager)
		}
		manager, err := b.Directory.FindByID(ctx, *applicant.ReportingManagerID)
		if err != nil {
			if IsNotFound(err) {
				return nil, fmt.Errorf("applicant %s references missing manager %s: %w",
					applicant.ID, *applicant.ReportingManagerID, ErrNoManager)
			}
			return nil, err
		}
		return manager, nil
	}

	switch current.Role {
	case RoleHR:
		return nil, nil
	case RoleDirector:
		return b.Directory.FindByRole(ctx, RoleHR)
	case RoleManager:
		if duration > 3 {
			return b.Directory.FindByRole(ctx, RoleDirector)
		}
		return b.Directory.FindByRole(ctx, RoleHR)
	default:
		// Developers and interns never approve; a chain can't pass
		// through them, so treat as terminated.
		return nil, nil
	}
}

// Build constructs the full approval chain for an applicant, walking
// NextApprover from the reporting manager until termination or until an
// approver repeats (cycle guard). Every link starts pending.
func (b *ChainBuilder) Build(ctx context.Context, applicant *Employee, duration int, at time.Time) ([]ChainLink, error) {
	var chain []ChainLink
	seen := make(map[EmployeeID]bool)

	approver, err := b.NextApprover(ctx, applicant, duration, nil)
	if err != nil {
		return nil, err
	}

	for approver != nil && !seen[approver.ID] {
		chain = append(chain, ChainLink{
			ApproverID: approver.ID,
			Role:       approver.Role,
			Status:     StatusPending,
			Timestamp:  at,
		})
		seen[approver.ID] = true

		approver, err = b.NextApprover(ctx, applicant, duration, approver)
		if err != nil {
			return nil, err
		}
	}

	return chain, nil
}
