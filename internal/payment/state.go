package payment

import (
	"github.com/pkg/errors"
)

// State names one stage of the privacy payment pipeline.
type State string

const (
	StateStart               State = "start"
	StateWaitingForFunding   State = "waiting_for_funding"
	StateVerifyingBalance    State = "verifying_balance"
	StateDepositingToPool    State = "depositing_to_pool"
	StateWithdrawingFromPool State = "withdrawing_from_pool"
	StateIssuingActivation   State = "issuing_activation"
	StateComplete            State = "complete"
	StateFailed              State = "failed"
)

var ErrInvalidTransition = errors.New("invalid pipeline state transition")

// canTransition encodes the strictly linear stage order. Failed is absorbing
// and reachable from every non-terminal state.
func canTransition(current, next State) bool {
	if next == StateFailed {
		return current != StateComplete && current != StateFailed
	}

	switch current {
	case StateStart:
		return next == StateWaitingForFunding
	case StateWaitingForFunding:
		return next == StateVerifyingBalance
	case StateVerifyingBalance:
		return next == StateDepositingToPool
	case StateDepositingToPool:
		return next == StateWithdrawingFromPool
	case StateWithdrawingFromPool:
		return next == StateIssuingActivation
	case StateIssuingActivation:
		return next == StateComplete
	default:
		return false
	}
}

// pipeline tracks the current stage of one run.
type pipeline struct {
	state State
}

func newPipeline() *pipeline {
	return &pipeline{state: StateStart}
}

func (p *pipeline) transition(next State) error {
	if !canTransition(p.state, next) {
		return errors.Wrapf(ErrInvalidTransition, "from %s to %s", p.state, next)
	}

	p.state = next

	return nil
}
