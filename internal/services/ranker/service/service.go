// Package service provides the ranker service implementation
package service

import (
	"context"
	"strconv"
	"time"

	"rankbot/internal/core/tenure"
	perr "rankbot/internal/platform/errors"
	"rankbot/internal/platform/logger"
	"rankbot/internal/services/ranker/domain"

	"github.com/google/uuid"
)

// Config holds configuration options for the ranker service
type Config struct {
	GroupID      int64
	ScannedRoles []string
	Policy       *tenure.Policy

	// DryRun computes and logs decisions without mutating the group
	DryRun bool

	// Workers bounds concurrency for role scans and member updates; <=0 -> 1
	Workers int

	// Per-call retry
	MaxRetries int           // attempts per remote call; <=0 -> 1
	RetryBase  time.Duration // base backoff for transient errors; <=0 -> 500ms

	// RateLimitCooldown is the wait when the remote rate-limits without a
	// retry hint; <=0 -> 60s
	RateLimitCooldown time.Duration
}

// Service implements the ranker service
type Service struct {
	Groups domain.GroupsPort
	Cfg    Config

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs the ranker service
func New(g domain.GroupsPort, cfg Config) *Service {
	if g == nil {
		panic("ranker.Service requires a non nil GroupsPort")
	}
	if cfg.Policy == nil {
		panic("ranker.Service requires a validated Policy")
	}
	if len(cfg.ScannedRoles) == 0 {
		panic("ranker.Service requires at least one scanned role")
	}
	return &Service{Groups: g, Cfg: cfg, now: time.Now, sleep: sleepCtx}
}

// Run implements domain.RunnerPort: authenticate, resolve, scan, decide,
// apply, summarize. Per-member and per-role failures land in the Summary;
// only credential failure, role resolution failure, and a run where every
// scan failed escalate to the returned error
func (s *Service) Run(ctx context.Context) (domain.Summary, error) {
	sum := domain.Summary{
		RunID:   uuid.NewString(),
		GroupID: s.Cfg.GroupID,
		DryRun:  s.Cfg.DryRun,
		Started: s.now(),
	}
	ctx = logger.WithRun(ctx, sum.RunID, strconv.FormatInt(s.Cfg.GroupID, 10))
	log := logger.C(ctx)

	me, err := s.Groups.Verify(ctx)
	if err != nil {
		sum.Finished = s.now()
		return sum, perr.WithOp(err, "ranker.verify")
	}
	log.Info().Int64("user_id", me.ID).Str("user", me.Name).Msg("credential verified")

	roles, err := s.resolveRoles(ctx)
	if err != nil {
		sum.Finished = s.now()
		return sum, err
	}

	members, prefails, scanErrs := s.scanAll(ctx, roles)
	sum.Scanned = len(members) + len(prefails)
	sum.ScanErrors = scanErrs
	if len(scanErrs) == len(s.Cfg.ScannedRoles) {
		sum.Finished = s.now()
		return sum, perr.Unavailablef("all %d role scans failed", len(s.Cfg.ScannedRoles))
	}

	decisions := s.decide(members, roles, s.now())
	outcomes := s.apply(ctx, decisions)
	outcomes = append(outcomes, prefails...)

	for _, o := range outcomes {
		switch o.Result {
		case domain.ResultApplied:
			sum.Updated++
		case domain.ResultSkipped:
			sum.Skipped++
		case domain.ResultCancelled:
			sum.Cancelled++
		case domain.ResultFailed:
			sum.Failed++
			sum.Failures = append(sum.Failures, o)
		}
	}
	sum.Finished = s.now()

	log.Info().
		Int("scanned", sum.Scanned).
		Int("updated", sum.Updated).
		Int("skipped", sum.Skipped).
		Int("cancelled", sum.Cancelled).
		Int("failed", sum.Failed).
		Int("scan_errors", len(sum.ScanErrors)).
		Bool("clean", sum.Clean()).
		Msg("run complete")
	return sum, nil
}

// resolveRoles maps every configured role name (scanned, thresholds,
// wildcard) to its remote role. A name the group does not know is fatal:
// the policy cannot be applied as written
func (s *Service) resolveRoles(ctx context.Context) (map[string]domain.Role, error) {
	var listed []domain.Role
	err := s.callWithRetry(ctx, "group roles", func() error {
		var e error
		listed, e = s.Groups.GroupRoles(ctx, s.Cfg.GroupID)
		return e
	})
	if err != nil {
		return nil, perr.WithOp(err, "ranker.resolve")
	}

	byName := make(map[string]domain.Role, len(listed))
	for _, r := range listed {
		byName[r.Name] = r
	}

	out := make(map[string]domain.Role)
	for _, name := range s.Cfg.ScannedRoles {
		r, ok := byName[name]
		if !ok {
			return nil, perr.NotFoundf("scanned role %q not found in group %d", name, s.Cfg.GroupID)
		}
		out[name] = r
	}
	for _, name := range s.Cfg.Policy.Roles() {
		r, ok := byName[name]
		if !ok {
			return nil, perr.NotFoundf("policy role %q not found in group %d", name, s.Cfg.GroupID)
		}
		out[name] = r
	}
	return out, nil
}

// decide is total: exactly one Decision per member, no I/O.
// Demotions are not special-cased; the target is whatever the policy says
func (s *Service) decide(members []domain.Member, roles map[string]domain.Role, now time.Time) []domain.Decision {
	out := make([]domain.Decision, 0, len(members))
	for _, m := range members {
		target := s.Cfg.Policy.Classify(m.Created, now)
		d := domain.Decision{
			Member:       m,
			TargetRole:   target,
			TargetRoleID: roles[target].ID,
			Action:       domain.ActionUpdate,
		}
		if target == m.Role {
			d.Action = domain.ActionNoop
		}
		out = append(out, d)
	}
	return out
}
