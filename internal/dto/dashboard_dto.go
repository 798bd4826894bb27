package dto

import "time"

// DashboardResponse is the role-aware summary shown after login.
type DashboardResponse struct {
	Role        string               `json:"role"`
	Member      *MemberDashboard     `json:"member,omitempty"`
	Association *AssociationOverview `json:"association,omitempty"`
	Admin       *AdminOverview       `json:"admin,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	CacheHit    bool                 `json:"cache_hit"`
}

// MemberDashboard summarises the caller's own activity.
type MemberDashboard struct {
	AttemptsInProgress int64                `json:"attempts_in_progress"`
	AttemptsCompleted  int64                `json:"attempts_completed"`
	PublishedResults   []ExamResultResponse `json:"published_results"`
	PaymentsByStatus   map[string]int64     `json:"payments_by_status"`
	CampRegistrations  int64                `json:"camp_registrations"`
}

// AssociationOverview is shown to presidents.
type AssociationOverview struct {
	AssociationID   uint  `json:"association_id"`
	MemberCount     int64 `json:"member_count"`
	PendingPayments int64 `json:"pending_payments"`
}

// AdminOverview aggregates portal-wide counters.
type AdminOverview struct {
	UsersByRole        map[string]int64 `json:"users_by_role"`
	PendingPayments    int64            `json:"pending_payments"`
	UnpublishedResults int64            `json:"unpublished_results"`
	OpenCamps          int64            `json:"open_camps"`
}
