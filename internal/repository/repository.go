package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrStaleRecord indicates a conditional update matched no row because the record left the expected state.
var ErrStaleRecord = errors.New("record is no longer in the expected state")

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	return query.Offset(offset).Limit(pageSize)
}

func countAndPaginate(query *gorm.DB, page, pageSize int) (*gorm.DB, int64, error) {
	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return paginate(query, page, pageSize), total, nil
}
