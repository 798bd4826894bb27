package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// SeedConfig names the bootstrap account created on first start.
type SeedConfig struct {
	SuperadminEmail    string
	SuperadminPassword string
	UserCodePrefix     string
	BcryptCost         int
}

// SeedReport summarises what a bootstrap run changed.
type SeedReport struct {
	SuperadminCreated bool
	HomepageSections  int64
}

// SeedService prepares a fresh database: the first superadmin and the default homepage layout.
type SeedService interface {
	Bootstrap(ctx context.Context) (SeedReport, error)
}

type seedService struct {
	users    repository.UserRepository
	homepage repository.HomepageRepository
	cfg      SeedConfig
	logger   zerolog.Logger
}

// NewSeedService constructs the seeding service.
func NewSeedService(users repository.UserRepository, homepage repository.HomepageRepository, cfg SeedConfig, logger zerolog.Logger) SeedService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.UserCodePrefix == "" {
		cfg.UserCodePrefix = "MBR"
	}
	return &seedService{
		users:    users,
		homepage: homepage,
		cfg:      cfg,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

// DefaultHomepageSections is the layout inserted when the keys are missing.
func DefaultHomepageSections() []models.HomepageSection {
	return []models.HomepageSection{
		{Key: "hero", Title: "Welcome", Body: "<p>Welcome to the membership portal.</p>", Position: 0, IsVisible: true},
		{Key: "about", Title: "About us", Position: 1, IsVisible: true},
		{Key: "camps", Title: "Upcoming camps", Position: 2, IsVisible: true},
		{Key: "contact", Title: "Contact", Position: 3, IsVisible: false},
	}
}

func (s *seedService) Bootstrap(ctx context.Context) (SeedReport, error) {
	report := SeedReport{}

	created, err := s.ensureSuperadmin(ctx)
	if err != nil {
		return report, err
	}
	report.SuperadminCreated = created

	inserted, err := s.homepage.EnsureDefaults(ctx, DefaultHomepageSections())
	if err != nil {
		return report, fmt.Errorf("seed homepage: %w", err)
	}
	report.HomepageSections = inserted

	s.logger.Info().
		Bool("superadmin_created", report.SuperadminCreated).
		Int64("homepage_sections", report.HomepageSections).
		Msg("bootstrap completed")
	return report, nil
}

func (s *seedService) ensureSuperadmin(ctx context.Context) (bool, error) {
	email := normalizeEmail(s.cfg.SuperadminEmail)
	if email == "" || strings.TrimSpace(s.cfg.SuperadminPassword) == "" {
		return false, nil
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check superadmin: %w", err)
	}
	if taken {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.SuperadminPassword), s.cfg.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash superadmin password: %w", err)
	}

	user := models.User{
		Name:         "Superadmin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleSuperadmin,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Register(ctx, &user, repository.RegisterOptions{CodePrefix: s.cfg.UserCodePrefix}); err != nil {
		return false, fmt.Errorf("create superadmin: %w", err)
	}
	return true, nil
}
