package dto

import (
	"time"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// ContentListRequest holds the common list filters for content modules.
type ContentListRequest struct {
	Page     int
	PageSize int
	Search   string
	Tags     []string
}

// AnnouncementRequest creates or updates an announcement.
type AnnouncementRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Body     string `json:"body" validate:"required,min=3"`
	StartsAt string `json:"starts_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndsAt   string `json:"ends_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	IsPinned bool   `json:"is_pinned"`
}

// AnnouncementResponse represents an announcement payload.
type AnnouncementResponse struct {
	ID        uint       `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	IsPinned  bool       `json:"is_pinned"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewAnnouncementResponse converts a model into a DTO.
func NewAnnouncementResponse(model models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        model.ID,
		Slug:      model.Slug,
		Title:     model.Title,
		Body:      model.Body,
		StartsAt:  model.StartsAt,
		EndsAt:    model.EndsAt,
		IsPinned:  model.IsPinned,
		CreatedAt: model.CreatedAt,
	}
}

// AnnouncementListResponse contains paginated announcements.
type AnnouncementListResponse struct {
	Items      []AnnouncementResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
	CacheHit   bool                   `json:"cache_hit"`
}

// GalleryRequest creates or updates a gallery item.
type GalleryRequest struct {
	Title    string   `json:"title" validate:"required,min=3,max=255"`
	Caption  string   `json:"caption" validate:"omitempty,max=2000"`
	ImageURL string   `json:"image_url" validate:"required,max=512"`
	Tags     []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=32"`
}

// GalleryItemResponse represents an item in the gallery feed.
type GalleryItemResponse struct {
	ID        uint      `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption"`
	ImageURL  string    `json:"image_url"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// NewGalleryItemResponse converts a model into a DTO.
func NewGalleryItemResponse(item models.GalleryItem) GalleryItemResponse {
	return GalleryItemResponse{
		ID:        item.ID,
		Slug:      item.Slug,
		Title:     item.Title,
		Caption:   item.Caption,
		ImageURL:  item.ImagePath,
		Tags:      append([]string{}, item.Tags...),
		CreatedAt: item.CreatedAt,
	}
}

// GalleryListResponse contains paginated gallery items.
type GalleryListResponse struct {
	Items      []GalleryItemResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// BlogPostRequest creates or updates a blog post.
type BlogPostRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=255"`
	Body          string   `json:"body" validate:"required,min=3"`
	Excerpt       string   `json:"excerpt" validate:"omitempty,max=512"`
	CoverImageURL string   `json:"cover_image_url" validate:"omitempty,max=512"`
	Status        string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags          []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=32"`
}

// BlogPostResponse serializes a blog post.
type BlogPostResponse struct {
	ID            uint       `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	Excerpt       string     `json:"excerpt"`
	CoverImageURL string     `json:"cover_image_url"`
	AuthorID      uint       `json:"author_id"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"published_at"`
	Tags          []string   `json:"tags"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewBlogPostResponse converts a model into a DTO.
func NewBlogPostResponse(post models.BlogPost) BlogPostResponse {
	return BlogPostResponse{
		ID:            post.ID,
		Slug:          post.Slug,
		Title:         post.Title,
		Body:          post.Body,
		Excerpt:       post.Excerpt,
		CoverImageURL: post.CoverImageURL,
		AuthorID:      post.AuthorID,
		Status:        post.Status,
		PublishedAt:   post.PublishedAt,
		Tags:          append([]string{}, post.Tags...),
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

// BlogListResponse wraps paginated blog posts.
type BlogListResponse struct {
	Items      []BlogPostResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// HomepageSectionRequest creates or updates a homepage section.
type HomepageSectionRequest struct {
	Key       string `json:"key" validate:"required,min=2,max=64"`
	Title     string `json:"title" validate:"omitempty,max=255"`
	Body      string `json:"body" validate:"omitempty"`
	Position  int    `json:"position" validate:"gte=0"`
	IsVisible bool   `json:"is_visible"`
}

// HomepageSectionResponse serializes a homepage section.
type HomepageSectionResponse struct {
	ID        uint      `json:"id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Position  int       `json:"position"`
	IsVisible bool      `json:"is_visible"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewHomepageSectionResponse converts a model into a DTO.
func NewHomepageSectionResponse(section models.HomepageSection) HomepageSectionResponse {
	return HomepageSectionResponse{
		ID:        section.ID,
		Key:       section.Key,
		Title:     section.Title,
		Body:      section.Body,
		Position:  section.Position,
		IsVisible: section.IsVisible,
		UpdatedAt: section.UpdatedAt,
	}
}

// AdvertisementRequest creates or updates an advertisement.
type AdvertisementRequest struct {
	Title     string `json:"title" validate:"required,min=2,max=255"`
	ImageURL  string `json:"image_url" validate:"required,max=512"`
	LinkURL   string `json:"link_url" validate:"omitempty,url,max=512"`
	Placement string `json:"placement" validate:"required,min=2,max=64"`
	StartsAt  string `json:"starts_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndsAt    string `json:"ends_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	IsActive  bool   `json:"is_active"`
}

// AdvertisementResponse serializes an advertisement.
type AdvertisementResponse struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	ImageURL  string     `json:"image_url"`
	LinkURL   string     `json:"link_url"`
	Placement string     `json:"placement"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	IsActive  bool       `json:"is_active"`
}

// NewAdvertisementResponse converts a model into a DTO.
func NewAdvertisementResponse(ad models.Advertisement) AdvertisementResponse {
	return AdvertisementResponse{
		ID:        ad.ID,
		Title:     ad.Title,
		ImageURL:  ad.ImageURL,
		LinkURL:   ad.LinkURL,
		Placement: ad.Placement,
		StartsAt:  ad.StartsAt,
		EndsAt:    ad.EndsAt,
		IsActive:  ad.IsActive,
	}
}

// AdvertisementListResponse wraps paginated advertisements.
type AdvertisementListResponse struct {
	Items      []AdvertisementResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}
