package service

import (
	"context"

	"rankbot/internal/platform/logger"
	"rankbot/internal/services/ranker/domain"

	"golang.org/x/sync/errgroup"
)

// roleScan is the finished result of one role's membership walk
type roleScan struct {
	members  []domain.Member
	prefails []domain.Outcome
	err      error
}

// scanAll walks every configured scanned role. Roles fan out on an errgroup
// bounded by Workers; member order within a role follows the remote's page
// order, and roles flatten back in configuration order.
// A role whose scan fails is reported and dropped whole, never truncated
func (s *Service) scanAll(ctx context.Context, roles map[string]domain.Role) ([]domain.Member, []domain.Outcome, []domain.ScanError) {
	results := make([]roleScan, len(s.Cfg.ScannedRoles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Cfg.Workers, 1))
	for i, name := range s.Cfg.ScannedRoles {
		i, name := i, name
		g.Go(func() error {
			results[i] = s.scanRole(gctx, roles[name])
			// scan failures are per-role data, not group-level errors
			return nil
		})
	}
	_ = g.Wait()

	var members []domain.Member
	var prefails []domain.Outcome
	var scanErrs []domain.ScanError
	for i, name := range s.Cfg.ScannedRoles {
		r := results[i]
		if r.err != nil {
			logger.C(ctx).Error().Str("role", name).Err(r.err).Msg("role scan failed")
			scanErrs = append(scanErrs, domain.ScanError{Role: name, Err: r.err})
			continue
		}
		members = append(members, r.members...)
		prefails = append(prefails, r.prefails...)
	}
	return members, prefails, scanErrs
}

// scanRole pages through one role's membership. Pages retry individually;
// a page that still fails aborts the whole role's scan
func (s *Service) scanRole(ctx context.Context, role domain.Role) roleScan {
	var out roleScan
	cursor := ""
	for {
		var rows []domain.MemberRow
		var next string
		err := s.callWithRetry(ctx, "role page", func() error {
			var e error
			rows, next, e = s.Groups.RolePage(ctx, s.Cfg.GroupID, role.ID, cursor)
			return e
		})
		if err != nil {
			return roleScan{err: err}
		}

		for _, row := range rows {
			m := domain.Member{
				UserID:   row.UserID,
				Username: row.Username,
				Created:  row.Created,
				Role:     role.Name,
				RoleID:   role.ID,
			}
			if m.Created.IsZero() {
				if err := s.enrich(ctx, &m); err != nil {
					// the member was seen; record the failure and move on
					out.prefails = append(out.prefails, domain.Outcome{
						Decision: domain.Decision{Member: m},
						Result:   domain.ResultFailed,
						Reason:   "account created date unavailable: " + err.Error(),
					})
					continue
				}
			}
			out.members = append(out.members, m)
		}

		if next == "" {
			return out
		}
		cursor = next
	}
}

// enrich backfills the created timestamp from the user details endpoint
func (s *Service) enrich(ctx context.Context, m *domain.Member) error {
	return s.callWithRetry(ctx, "user details", func() error {
		u, err := s.Groups.UserDetails(ctx, m.UserID)
		if err != nil {
			return err
		}
		m.Created = u.Created
		return nil
	})
}
