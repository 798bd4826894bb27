package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

const dashboardRecentResults = 5

// DashboardRepositories groups the stores the dashboard aggregates.
type DashboardRepositories struct {
	Users    repository.UserRepository
	Attempts repository.AttemptRepository
	Results  repository.ExamResultRepository
	Payments repository.PaymentRepository
	Camps    repository.CampRepository
}

// DashboardService builds the role-aware summary shown after login.
type DashboardService interface {
	Summary(ctx context.Context, actor Actor) (dto.DashboardResponse, error)
}

type dashboardService struct {
	repos  DashboardRepositories
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewDashboardService constructs the dashboard service. cache may be nil.
func NewDashboardService(repos DashboardRepositories, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &dashboardService{
		repos:  repos,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "dashboard_service").Logger(),
		now:    time.Now,
	}
}

func (s *dashboardService) Summary(ctx context.Context, actor Actor) (dto.DashboardResponse, error) {
	key := dashboardCacheKey(actor.ID)
	var cached dto.DashboardResponse
	if cacheGet(ctx, s.cache, "dashboard", key, &cached) && cached.Role == actor.Role {
		cached.CacheHit = true
		return cached, nil
	}

	response := dto.DashboardResponse{Role: actor.Role, GeneratedAt: s.now().UTC()}
	if actor.IsAdmin() {
		overview, err := s.adminOverview(ctx)
		if err != nil {
			return dto.DashboardResponse{}, err
		}
		response.Admin = &overview
	} else {
		member, err := s.memberDashboard(ctx, actor.ID)
		if err != nil {
			return dto.DashboardResponse{}, err
		}
		response.Member = &member

		if actor.Role == models.RolePresident {
			association, err := s.associationOverview(ctx, actor.ID)
			if err != nil {
				return dto.DashboardResponse{}, err
			}
			response.Association = association
		}
	}

	cacheSet(ctx, s.cache, s.logger, key, response, s.ttl)
	return response, nil
}

func (s *dashboardService) memberDashboard(ctx context.Context, userID uint) (dto.MemberDashboard, error) {
	inProgress, err := s.repos.Attempts.CountByUser(ctx, userID, models.AttemptStatusInProgress)
	if err != nil {
		return dto.MemberDashboard{}, err
	}
	completed, err := s.repos.Attempts.CountByUser(ctx, userID, models.AttemptStatusGraded, models.AttemptStatusAutoSubmitted, models.AttemptStatusSubmitted)
	if err != nil {
		return dto.MemberDashboard{}, err
	}

	published := true
	results, _, err := s.repos.Results.List(ctx, repository.ExamResultFilter{
		UserID:    uintPtr(userID),
		Published: &published,
		Page:      1,
		PageSize:  dashboardRecentResults,
	})
	if err != nil {
		return dto.MemberDashboard{}, err
	}
	recent := make([]dto.ExamResultResponse, 0, len(results))
	for _, result := range results {
		recent = append(recent, dto.NewExamResultResponse(result))
	}

	payments, err := s.repos.Payments.CountByStatus(ctx, uintPtr(userID))
	if err != nil {
		return dto.MemberDashboard{}, err
	}
	registrations, err := s.repos.Camps.CountRegistrationsByUser(ctx, userID)
	if err != nil {
		return dto.MemberDashboard{}, err
	}

	return dto.MemberDashboard{
		AttemptsInProgress: inProgress,
		AttemptsCompleted:  completed,
		PublishedResults:   recent,
		PaymentsByStatus:   payments,
		CampRegistrations:  registrations,
	}, nil
}

func (s *dashboardService) associationOverview(ctx context.Context, userID uint) (*dto.AssociationOverview, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "user")
	}
	if user.AssociationID == nil {
		return nil, nil
	}

	members, err := s.repos.Users.CountByAssociation(ctx, *user.AssociationID)
	if err != nil {
		return nil, err
	}
	pending, err := s.repos.Payments.CountPendingByAssociation(ctx, *user.AssociationID)
	if err != nil {
		return nil, err
	}
	return &dto.AssociationOverview{
		AssociationID:   *user.AssociationID,
		MemberCount:     members,
		PendingPayments: pending,
	}, nil
}

func (s *dashboardService) adminOverview(ctx context.Context) (dto.AdminOverview, error) {
	byRole, err := s.repos.Users.CountByRole(ctx)
	if err != nil {
		return dto.AdminOverview{}, err
	}
	payments, err := s.repos.Payments.CountByStatus(ctx, nil)
	if err != nil {
		return dto.AdminOverview{}, err
	}
	unpublished, err := s.repos.Results.CountUnpublished(ctx)
	if err != nil {
		return dto.AdminOverview{}, err
	}
	openCamps, err := s.repos.Camps.CountOpen(ctx)
	if err != nil {
		return dto.AdminOverview{}, err
	}
	return dto.AdminOverview{
		UsersByRole:        byRole,
		PendingPayments:    payments[models.PaymentStatusPending],
		UnpublishedResults: unpublished,
		OpenCamps:          openCamps,
	}, nil
}
