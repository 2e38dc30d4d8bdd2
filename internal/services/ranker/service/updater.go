package service

import (
	"context"
	"sync"

	"rankbot/internal/platform/logger"
	"rankbot/internal/services/ranker/domain"
)

// apply realizes every Decision into an Outcome. Noops and dry-run holds are
// recorded without any network call; updates dispatch onto a bounded worker
// pool. On cancellation, in-flight updates finish and undispatched ones are
// reported as cancelled rather than silently dropped
func (s *Service) apply(ctx context.Context, decisions []domain.Decision) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(decisions))
	var pending []domain.Decision
	for _, d := range decisions {
		switch {
		case d.Action == domain.ActionNoop:
			outcomes = append(outcomes, domain.Outcome{Decision: d, Result: domain.ResultSkipped})
		case s.Cfg.DryRun:
			logger.C(ctx).Info().
				Int64("user_id", d.Member.UserID).
				Str("from", d.Member.Role).
				Str("to", d.TargetRole).
				Msg("dry-run: would update role")
			outcomes = append(outcomes, domain.Outcome{Decision: d, Result: domain.ResultSkipped, Reason: "dry-run"})
		default:
			pending = append(pending, d)
		}
	}
	if len(pending) == 0 {
		return outcomes
	}

	w := max(s.Cfg.Workers, 1)
	jobs := make(chan domain.Decision)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for n := 0; n < w; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				o := s.updateOne(ctx, d)
				mu.Lock()
				outcomes = append(outcomes, o)
				mu.Unlock()
			}
		}()
	}

	i := 0
dispatch:
	for ; i < len(pending); i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- pending[i]:
		}
	}
	close(jobs)
	wg.Wait()

	for ; i < len(pending); i++ {
		outcomes = append(outcomes, domain.Outcome{
			Decision: pending[i],
			Result:   domain.ResultCancelled,
			Reason:   "run cancelled before dispatch",
		})
	}
	return outcomes
}

// updateOne applies a single role change with the per-call retry policy.
// The mutation itself runs detached from cancellation so a stop request
// never tears an update in flight; only retry pauses observe ctx
func (s *Service) updateOne(ctx context.Context, d domain.Decision) domain.Outcome {
	callCtx := context.WithoutCancel(ctx)
	err := s.callWithRetry(ctx, "set role", func() error {
		return s.Groups.SetMemberRole(callCtx, s.Cfg.GroupID, d.Member.UserID, d.TargetRoleID)
	})
	if err != nil {
		logger.C(ctx).Error().
			Int64("user_id", d.Member.UserID).
			Str("from", d.Member.Role).
			Str("to", d.TargetRole).
			Err(err).
			Msg("role update failed")
		return domain.Outcome{Decision: d, Result: domain.ResultFailed, Reason: err.Error()}
	}
	logger.C(ctx).Info().
		Int64("user_id", d.Member.UserID).
		Str("from", d.Member.Role).
		Str("to", d.TargetRole).
		Msg("role updated")
	return domain.Outcome{Decision: d, Result: domain.ResultApplied}
}
