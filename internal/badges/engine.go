package badges

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campusevents/internal/domain"
	"campusevents/internal/metrics"
)

type engine struct {
	repo    domain.UserStatsRepository
	catalog Catalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates a BadgeEngine over the given stats storage and catalog.
// The catalog is treated as immutable; callers should not mutate it after
// construction.
func NewEngine(repo domain.UserStatsRepository, catalog Catalog, logger *slog.Logger) domain.BadgeEngine {
	return &engine{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

func (e *engine) IncrementStat(ctx context.Context, userID string, stat domain.StatName, amount int, bctx *domain.BadgeContext) (domain.Stats, []domain.Badge, error) {
	stats, err := e.repo.GetStats(ctx, userID)
	if err != nil {
		if err == domain.ErrUserNotFound || err == domain.ErrNotFound {
			return domain.Stats{}, nil, domain.ErrUserNotFound
		}
		return domain.Stats{}, nil, fmt.Errorf("get stats: %w", err)
	}

	switch stat {
	case domain.StatEventsAttended:
		stats.EventsAttended += amount
	case domain.StatEventsOrganized:
		stats.EventsOrganized += amount
	case domain.StatCommentsPosted:
		stats.CommentsPosted += amount
	default:
		return domain.Stats{}, nil, fmt.Errorf("%w: unknown stat %q", domain.ErrInvalidInput, stat)
	}

	if err := e.repo.UpdateStats(ctx, userID, stats); err != nil {
		return domain.Stats{}, nil, fmt.Errorf("update stats: %w", err)
	}

	awarded, err := e.evaluate(ctx, userID, stats, bctx)
	if err != nil {
		return stats, nil, err
	}
	return stats, awarded, nil
}

func (e *engine) EvaluateBadges(ctx context.Context, userID string, bctx *domain.BadgeContext) ([]domain.Badge, error) {
	stats, err := e.repo.GetStats(ctx, userID)
	if err != nil {
		if err == domain.ErrUserNotFound || err == domain.ErrNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return e.evaluate(ctx, userID, stats, bctx)
}

// evaluate awards every catalog badge not yet held whose criterion holds.
// The held set is keyed by badge name, so awarding is idempotent even if the
// same criterion holds across calls.
func (e *engine) evaluate(ctx context.Context, userID string, stats domain.Stats, bctx *domain.BadgeContext) ([]domain.Badge, error) {
	held, err := e.repo.ListBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	heldNames := make(map[string]struct{}, len(held))
	for _, b := range held {
		heldNames[b.Name] = struct{}{}
	}

	var awarded []domain.Badge
	for _, rule := range e.catalog {
		if _, ok := heldNames[rule.Name]; ok {
			continue
		}
		if !rule.Criteria(stats, bctx) {
			continue
		}
		badge := domain.Badge{
			Name:        rule.Name,
			Description: rule.Description,
			Icon:        rule.Icon,
			EarnedAt:    e.now(),
		}
		inserted, err := e.repo.AwardBadge(ctx, userID, badge)
		if err != nil {
			return awarded, fmt.Errorf("award badge %q: %w", rule.Name, err)
		}
		// A concurrent evaluation may have inserted the same badge first;
		// the unique constraint makes that a no-op here.
		if inserted {
			awarded = append(awarded, badge)
			metrics.BadgesAwarded.Inc()
		}
	}

	if len(awarded) > 0 && e.logger != nil {
		names := make([]string, len(awarded))
		for i, b := range awarded {
			names[i] = b.Name
		}
		e.logger.InfoContext(ctx, "badges awarded", "user_id", userID, "badges", names)
	}
	return awarded, nil
}

func (e *engine) Catalog() []domain.BadgeInfo {
	infos := make([]domain.BadgeInfo, len(e.catalog))
	for i, rule := range e.catalog {
		infos[i] = domain.BadgeInfo{
			Name:        rule.Name,
			Description: rule.Description,
			Icon:        rule.Icon,
		}
	}
	return infos
}
