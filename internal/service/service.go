package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"frontoffice/internal/billing"
	"frontoffice/internal/cache"
	"frontoffice/internal/domain"
	"frontoffice/internal/events"
	"frontoffice/internal/navigation"
	"frontoffice/internal/store"
	"frontoffice/internal/xid"
)

// ErrForbidden is returned when the actor works at a different branch.
var ErrForbidden = errors.New("branch not permitted for this user")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo            store.Repository
	policy          *billing.PolicyTable
	dashboard       cache.DashboardCache
	dashboardTTL    time.Duration
	publisher       events.Publisher
	defaultBranchID string
	now             func() time.Time
}

func New(repo store.Repository, policy *billing.PolicyTable, defaultBranchID string) *Service {
	if policy == nil {
		policy = billing.MustDefaultPolicyTable()
	}
	if defaultBranchID == "" {
		defaultBranchID = "anna-salai"
	}

	return &Service{
		repo:            repo,
		policy:          policy,
		dashboard:       cache.NoopDashboardCache{},
		dashboardTTL:    30 * time.Second,
		publisher:       events.NoopPublisher{},
		defaultBranchID: defaultBranchID,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithDashboardCache(c cache.DashboardCache, ttl time.Duration) *Service {
	if c != nil {
		s.dashboard = c
	}
	if ttl > 0 {
		s.dashboardTTL = ttl
	}
	return s
}

func (s *Service) WithPublisher(p events.Publisher) *Service {
	if p != nil {
		s.publisher = p
	}
	return s
}

func (s *Service) Branches() []domain.Branch {
	return s.policy.List()
}

func (s *Service) Me(ctx context.Context) (domain.MeResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.MeResponse{}, ErrForbidden
	}
	branch, err := s.policy.Lookup(defaultString(actor.BranchID, s.defaultBranchID))
	if err != nil {
		return domain.MeResponse{}, err
	}
	return domain.MeResponse{
		Username: actor.Username,
		Role:     actor.Role,
		Branch:   branch,
		Sections: navigation.VisibleSections(actor.Role),
	}, nil
}

// resolveBranch fills in the actor's home branch when branchID is blank,
// looks the branch up and checks the actor may work there. Only admins
// cross branches; calls without an actor (CLI, jobs) are unrestricted.
func (s *Service) resolveBranch(ctx context.Context, branchID string) (domain.Branch, error) {
	branchID = strings.TrimSpace(branchID)
	actor, hasActor := ActorFromContext(ctx)
	if branchID == "" {
		if hasActor && actor.BranchID != "" {
			branchID = actor.BranchID
		} else {
			branchID = s.defaultBranchID
		}
	}

	branch, err := s.policy.Lookup(branchID)
	if err != nil {
		return domain.Branch{}, err
	}
	if hasActor && actor.Role != domain.RoleAdmin && actor.BranchID != branch.ID {
		return domain.Branch{}, fmt.Errorf("%w: %s", ErrForbidden, branch.ID)
	}
	return branch, nil
}

func (s *Service) logAudit(ctx context.Context, branchID string, action string, entityType string, entityID string, detail string) {
	if branchID == "" {
		branchID = s.defaultBranchID
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		BranchID:      branchID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     s.now(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[service] WARN: failed to publish %s: %v", event.RoutingKey(), err)
	}
}

func (s *Service) invalidateDashboard(ctx context.Context, branchID string) {
	if err := s.dashboard.Invalidate(ctx, branchID); err != nil {
		log.Printf("[cache] WARN: failed to invalidate dashboard branch=%s: %v", branchID, err)
	}
}

func actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.Username != "" {
		return actor.Username
	}
	return "system"
}

// dayRange parses YYYY-MM-DD into a [from, to) UTC window. A blank date means today.
func (s *Service) dayRange(date string) (time.Time, time.Time, error) {
	date = strings.TrimSpace(date)
	var from time.Time
	if date == "" {
		now := s.now()
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, time.Time{}, &billing.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		from = parsed.UTC()
	}
	return from, from.Add(24 * time.Hour), nil
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// RecordUserCreated audits a staff account created through the auth layer.
func (s *Service) RecordUserCreated(ctx context.Context, user domain.StaffUser) {
	s.logAudit(ctx, user.BranchID, domain.AuditUserCreate, "user", user.Username, fmt.Sprintf("role=%s", user.Role))
}
