package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

func dashboardRepos(db *gorm.DB) DashboardRepositories {
	return DashboardRepositories{
		Users:    repository.NewUserRepository(db),
		Attempts: repository.NewAttemptRepository(db),
		Results:  repository.NewExamResultRepository(db),
		Payments: repository.NewPaymentRepository(db),
		Camps:    repository.NewCampRepository(db),
	}
}

func seedPayment(t *testing.T, db *gorm.DB, userID uint, status string) {
	t.Helper()
	payment := models.Payment{UserID: userID, Type: "membership_fee", Amount: 100, ReceiptURL: "/uploads/receipts/r.png", Status: status}
	require.NoError(t, repository.NewPaymentRepository(db).Create(context.Background(), &payment))
}

func TestDashboardSummaryByRole(t *testing.T) {
	db := setupServiceDB(t)
	association := models.Association{Name: "Central", Code: "CENTRAL"}
	require.NoError(t, db.Create(&association).Error)

	president := seedUser(t, db, "president@example.com", models.RolePresident, &association.ID)
	member := seedUser(t, db, "member@example.com", models.RoleMember, &association.ID)
	seedPayment(t, db, member.ID, models.PaymentStatusPending)
	seedPayment(t, db, member.ID, models.PaymentStatusApproved)
	seedPayment(t, db, president.ID, models.PaymentStatusPending)

	svc := NewDashboardService(dashboardRepos(db), nil, 0, testLogger())
	ctx := context.Background()

	memberView, err := svc.Summary(ctx, Actor{ID: member.ID, Role: member.Role})
	require.NoError(t, err)
	require.NotNil(t, memberView.Member)
	require.Nil(t, memberView.Admin)
	require.Nil(t, memberView.Association)
	require.EqualValues(t, 1, memberView.Member.PaymentsByStatus[models.PaymentStatusPending])
	require.EqualValues(t, 1, memberView.Member.PaymentsByStatus[models.PaymentStatusApproved])

	presidentView, err := svc.Summary(ctx, Actor{ID: president.ID, Role: president.Role})
	require.NoError(t, err)
	require.NotNil(t, presidentView.Association)
	require.EqualValues(t, 2, presidentView.Association.MemberCount)
	require.EqualValues(t, 2, presidentView.Association.PendingPayments)

	adminView, err := svc.Summary(ctx, Actor{ID: 99, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, adminView.Admin)
	require.Nil(t, adminView.Member)
	require.EqualValues(t, 2, adminView.Admin.PendingPayments)
	require.EqualValues(t, 1, adminView.Admin.UsersByRole[models.RoleMember])
}

func TestDashboardSummaryCachesPerUser(t *testing.T) {
	db := setupServiceDB(t)
	_, client := setupTestRedis(t)
	member := seedUser(t, db, "member@example.com", models.RoleMember, nil)
	svc := NewDashboardService(dashboardRepos(db), client, 0, testLogger())
	ctx := context.Background()
	actor := Actor{ID: member.ID, Role: member.Role}

	first, err := svc.Summary(ctx, actor)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := svc.Summary(ctx, actor)
	require.NoError(t, err)
	require.True(t, second.CacheHit)

	promoted, err := svc.Summary(ctx, Actor{ID: member.ID, Role: models.RolePresident})
	require.NoError(t, err)
	require.False(t, promoted.CacheHit)
	require.Equal(t, models.RolePresident, promoted.Role)
}
