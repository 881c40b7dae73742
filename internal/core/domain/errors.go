package domain

import "errors"

// Error kinds returned by the allocation engine and the lifecycle
// controller. Callers classify failures with errors.Is; adapters wrap the
// underlying cause next to the kind, e.g.
// fmt.Errorf("%w: load campaign: %w", ErrUpstreamUnavailable, err).
var (
	// ErrInvalidParameters is fatal for the pass: no allocation is produced
	// and the previous output stays authoritative.
	ErrInvalidParameters = errors.New("invalid allocation parameters")

	// ErrNoEligibleNodes describes a ranking that yielded nothing. It is
	// informational: the pass still completes with a zero-spend output.
	ErrNoEligibleNodes = errors.New("no eligible allocation nodes")

	// ErrPersistConflict is returned by an AllocationStore when the stored
	// version no longer matches the expected one.
	ErrPersistConflict = errors.New("allocation record version conflict")

	// ErrUpstreamUnavailable marks a collaborator (store, queue) failure.
	// The scheduler owns retry and backoff for it.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvariantViolation indicates a distributor defect such as a
	// negative budget or a total above the remaining budget.
	ErrInvariantViolation = errors.New("allocation invariant violated")

	ErrCampaignNotFound = errors.New("campaign not found")
	ErrLineageCycle     = errors.New("lineage cycle detected")
	ErrHistoryOrder     = errors.New("history entries must have increasing period start")
)

// ErrorKind names the kind of err for metrics and wire replies.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, ErrCampaignNotFound):
		return "not_found"
	case errors.Is(err, ErrPersistConflict):
		return "conflict"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream"
	default:
		return "internal"
	}
}
