package payment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
	"github.com/RankoXXX/exidvpn-server/internal/metrics"
	"github.com/RankoXXX/exidvpn-server/internal/pool"
	"github.com/RankoXXX/exidvpn-server/internal/provision"
	"github.com/RankoXXX/exidvpn-server/internal/session"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

// ExecuteRequest identifies the session to run and, optionally, the funding
// transaction to wait on. An empty FundingSignature skips the confirmation
// stage (funding was verified out of band).
type ExecuteRequest struct {
	SessionID        string
	FundingSignature string
}

// ExecuteResult is the all-or-nothing outcome of a successful pipeline run.
type ExecuteResult struct {
	DeviceID          string
	DeviceToken       string
	ActivationRef     string
	DepositSignature  string
	WithdrawSignature string
}

// Service orchestrates the privacy payment pipeline: funding confirmation,
// balance verification, the two-phase pool relay, and activation issuance,
// with session cleanup on success only.
type Service struct {
	sessions session.Store
	ledger   ledger.Client
	relay    *pool.Relay
	issuer   *provision.Issuer
	metrics  *metrics.Service

	confirmPolicy RetryPolicy
	balancePolicy RetryPolicy
	amountMinor   uint64

	inflight *inflightGuard
}

// NewService wires the orchestrator.
func NewService(
	sessions session.Store,
	ledgerClient ledger.Client,
	relay *pool.Relay,
	issuer *provision.Issuer,
	metricsService *metrics.Service,
	confirmPolicy RetryPolicy,
	balancePolicy RetryPolicy,
	amountMinor uint64,
) *Service {
	return &Service{
		sessions:      sessions,
		ledger:        ledgerClient,
		relay:         relay,
		issuer:        issuer,
		metrics:       metricsService,
		confirmPolicy: confirmPolicy,
		balancePolicy: balancePolicy,
		amountMinor:   amountMinor,
		inflight:      newInflightGuard(),
	}
}

// Execute runs the full pipeline for one session. On any failure the session
// is left in the store so the client may retry within the TTL window; the
// session is deleted if and only if every stage succeeded.
func (s *Service) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	log := util.LogFromContext(ctx)

	if !s.inflight.acquire(req.SessionID) {
		return nil, ErrRunInFlight
	}
	defer s.inflight.release(req.SessionID)

	run := newPipeline()

	sess, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		s.fail(run, StateStart)
		return nil, ErrSessionNotFound
	}

	if err := run.transition(StateWaitingForFunding); err != nil {
		return nil, err
	}
	if req.FundingSignature != "" {
		if err := s.runStage(ctx, run, StateWaitingForFunding, func() error {
			return NewConfirmationWaiter(s.ledger, s.confirmPolicy).Wait(ctx, req.FundingSignature)
		}); err != nil {
			return nil, err
		}
	} else {
		log.Info().
			Str("session_id", sess.ID).
			Msg("No funding signature supplied, skipping confirmation wait")
	}

	if err := run.transition(StateVerifyingBalance); err != nil {
		return nil, err
	}
	if err := s.runStage(ctx, run, StateVerifyingBalance, func() error {
		_, verr := NewBalanceVerifier(s.ledger, s.balancePolicy).Verify(ctx, sess.DepositAddress, s.amountMinor)
		return verr
	}); err != nil {
		return nil, err
	}

	if err := run.transition(StateDepositingToPool); err != nil {
		return nil, err
	}
	var relayRun *pool.Run
	if err := s.runStage(ctx, run, StateDepositingToPool, func() error {
		var rerr error
		relayRun, rerr = s.relay.Deposit(ctx, sess.Burner)
		return rerr
	}); err != nil {
		return nil, err
	}

	// the settling delay is accounted to the withdrawal stage
	if err := run.transition(StateWithdrawingFromPool); err != nil {
		return nil, err
	}
	var withdrawSignature string
	if err := s.runStage(ctx, run, StateWithdrawingFromPool, func() error {
		var werr error
		withdrawSignature, werr = relayRun.Withdraw(ctx)
		return werr
	}); err != nil {
		return nil, err
	}

	if err := run.transition(StateIssuingActivation); err != nil {
		return nil, err
	}
	var activation *provision.Activation
	if err := s.runStage(ctx, run, StateIssuingActivation, func() error {
		var ierr error
		activation, ierr = s.issuer.Issue(ctx)
		return ierr
	}); err != nil {
		return nil, err
	}

	if err := run.transition(StateComplete); err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		// the payment went through; a stuck store entry only costs one TTL
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to delete consumed session")
	}

	s.metrics.IncRun("success")
	log.Info().
		Str("session_id", sess.ID).
		Str("withdraw_signature", withdrawSignature).
		Msg("Privacy payment pipeline complete")

	return &ExecuteResult{
		DeviceID:          activation.DeviceID,
		DeviceToken:       activation.DeviceToken,
		ActivationRef:     activation.ActivationRef,
		DepositSignature:  relayRun.DepositSignature,
		WithdrawSignature: withdrawSignature,
	}, nil
}

// SendTransaction relays client-signed transaction bytes to the ledger with
// preflight enabled and bounded node-side retries. It never inspects the
// transaction.
func (s *Service) SendTransaction(ctx context.Context, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("signed transaction is empty")
	}

	signature, err := s.ledger.SendRawTransaction(ctx, raw, ledger.SendOptions{
		SkipPreflight: false,
		MaxRetries:    3,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to relay transaction")
	}

	s.metrics.IncRelayedTransaction()

	return signature, nil
}

func (s *Service) runStage(ctx context.Context, run *pipeline, stage State, fn func() error) error {
	started := time.Now()
	err := fn()
	s.metrics.ObserveStage(string(stage), time.Since(started))

	if err != nil {
		s.fail(run, stage)
		util.LogFromContext(ctx).Warn().
			Err(err).
			Str("stage", string(stage)).
			Msg("Pipeline stage failed, session kept for retry")
		return err
	}

	return nil
}

func (s *Service) fail(run *pipeline, stage State) {
	_ = run.transition(StateFailed)
	s.metrics.IncRun("failed_" + string(stage))
}
