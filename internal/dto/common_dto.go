package dto

import "gorm.io/datatypes"

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// UploadResponse describes the stored asset metadata returned to the client.
type UploadResponse struct {
	ID        uint   `json:"id"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
	Checksum  string `json:"checksum"`
	FileName  string `json:"file_name"`
}

// MediaListResponse wraps paginated media assets.
type MediaListResponse struct {
	Items      []UploadResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

func metadataFromJSON(data datatypes.JSONMap) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}(data)
}
