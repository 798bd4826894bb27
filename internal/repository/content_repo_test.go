package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

func TestAnnouncementRepositoryListActiveFiltersAndPaginates(t *testing.T) {
	db := setupContentTestDB(t, &models.Announcement{})
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-48 * time.Hour)
	soon := now.Add(1 * time.Hour)
	ended := now.Add(-time.Hour)

	pinned := models.Announcement{Slug: "pinned", Title: "Pinned", Body: "<p>pinned</p>", StartsAt: past, IsPinned: true}
	active := models.Announcement{Slug: "active", Title: "Active", Body: "<p>active</p>", StartsAt: past, EndsAt: &soon}
	upcoming := models.Announcement{Slug: "upcoming", Title: "Future", Body: "future", StartsAt: future}
	expired := models.Announcement{Slug: "expired", Title: "Expired", Body: "expired", StartsAt: past, EndsAt: &ended}

	require.NoError(t, db.Create(&pinned).Error)
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&upcoming).Error)
	require.NoError(t, db.Create(&expired).Error)

	items, total, err := repo.ListActive(context.Background(), AnnouncementFilter{}, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	require.Equal(t, "pinned", items[0].Slug, "pinned announcement should appear first")
	require.Equal(t, "active", items[1].Slug)

	paged, total, err := repo.ListActive(context.Background(), AnnouncementFilter{Page: 2, PageSize: 1}, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, paged, 1)
	require.Equal(t, "active", paged[0].Slug)

	all, total, err := repo.ListAll(context.Background(), AnnouncementFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Len(t, all, 4)
}

func TestAnnouncementRepositoryDeleteMissing(t *testing.T) {
	db := setupContentTestDB(t, &models.Announcement{})
	repo := NewAnnouncementRepository(db)

	err := repo.Delete(context.Background(), 42)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGalleryRepositoryListFiltersSearchAndPagination(t *testing.T) {
	db := setupContentTestDB(t, &models.GalleryItem{})
	repo := NewGalleryRepository(db)

	now := time.Now()
	robotics := models.GalleryItem{Slug: "robotics", Title: "Robotics Club", Caption: "Robots", ImagePath: "robot.jpg", Tags: []string{"Robotics", "STEM"}, CreatedAt: now.Add(-time.Hour)}
	art := models.GalleryItem{Slug: "art", Title: "Art Show", Caption: "Paintings", ImagePath: "art.jpg", Tags: []string{"Art"}, CreatedAt: now}

	require.NoError(t, db.Create(&robotics).Error)
	require.NoError(t, db.Create(&art).Error)

	filtered, total, err := repo.List(context.Background(), GalleryFilter{Tags: []string{" art "}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)
	require.Equal(t, "art", filtered[0].Slug)
	require.Equal(t, []string{"art"}, filtered[0].Tags)

	searched, total, err := repo.List(context.Background(), GalleryFilter{Search: "robot"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, searched, 1)
	require.Equal(t, "robotics", searched[0].Slug)

	paged, total, err := repo.List(context.Background(), GalleryFilter{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, paged, 1)
	require.Equal(t, "Art Show", paged[0].Title, "newest item first")
}

func TestBlogRepositoryPublishedBySlug(t *testing.T) {
	db := setupContentTestDB(t, &models.BlogPost{})
	repo := NewBlogRepository(db)
	ctx := context.Background()

	published := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, &models.BlogPost{Slug: "hello", Title: "Hello", Body: "body", AuthorID: 1, Status: models.BlogStatusPublished, PublishedAt: &published, Tags: []string{"News"}}))
	require.NoError(t, repo.Create(ctx, &models.BlogPost{Slug: "draft", Title: "Draft", Body: "body", AuthorID: 1, Status: models.BlogStatusDraft}))

	post, err := repo.GetPublishedBySlug(ctx, "hello")
	require.NoError(t, err)
	require.Equal(t, []string{"news"}, post.Tags)

	_, err = repo.GetPublishedBySlug(ctx, "draft")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	items, total, err := repo.List(ctx, BlogFilter{PublishedOnly: true, Tag: "news"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "hello", items[0].Slug)

	exists, err := repo.SlugExists(ctx, "hello", post.ID)
	require.NoError(t, err)
	require.False(t, exists)
	exists, err = repo.SlugExists(ctx, "hello", 0)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestHomepageRepositoryEnsureDefaultsKeepsExisting(t *testing.T) {
	db := setupContentTestDB(t, &models.HomepageSection{})
	repo := NewHomepageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.HomepageSection{Key: "hero", Title: "Edited", IsVisible: true}))

	_, err := repo.EnsureDefaults(ctx, []models.HomepageSection{
		{Key: "hero", Title: "Default hero", IsVisible: true},
		{Key: "about", Title: "About", Position: 1, IsVisible: false},
	})
	require.NoError(t, err)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Edited", all[0].Title)

	visible, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
}

func TestAdvertisementRepositoryListLiveWindow(t *testing.T) {
	db := setupContentTestDB(t, &models.Advertisement{})
	repo := NewAdvertisementRepository(db)
	ctx := context.Background()

	now := time.Now()
	ended := now.Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, &models.Advertisement{Title: "Live", ImageURL: "a.png", Placement: "sidebar", StartsAt: now.Add(-time.Hour), IsActive: true}))
	require.NoError(t, repo.Create(ctx, &models.Advertisement{Title: "Ended", ImageURL: "b.png", Placement: "sidebar", StartsAt: now.Add(-time.Hour), EndsAt: &ended, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &models.Advertisement{Title: "Paused", ImageURL: "c.png", Placement: "sidebar", StartsAt: now.Add(-time.Hour), IsActive: false}))
	require.NoError(t, repo.Create(ctx, &models.Advertisement{Title: "Banner", ImageURL: "d.png", Placement: "header", StartsAt: now.Add(-time.Hour), IsActive: true}))

	ads, err := repo.ListLive(ctx, "sidebar", now)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	require.Equal(t, "Live", ads[0].Title)

	ads, err = repo.ListLive(ctx, "", now)
	require.NoError(t, err)
	require.Len(t, ads, 2)
}

func TestMediaRepositoryCreate(t *testing.T) {
	db := setupContentTestDB(t, &models.MediaAsset{})
	repo := NewMediaRepository(db)

	record := models.MediaAsset{FileName: "report.pdf", URL: "https://cdn.example.com/report.pdf", MimeType: "application/pdf", SizeBytes: 2048, Checksum: "abc123"}
	require.NoError(t, repo.Create(context.Background(), &record))
	require.NotZero(t, record.ID)

	items, total, err := repo.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "application/pdf", items[0].MimeType)
}

func setupContentTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}
