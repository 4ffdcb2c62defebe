package services

import (
	"net/url"

	"gorm.io/gorm"

	"github.com/cppla/schoolsite/utils"
)

// DefaultPerPage is the admin and public listing page size.
const DefaultPerPage = 10

// PageRequest selects one page of a listing. BaseURL is the absolute listing URL used for links.
type PageRequest struct {
	Page    int
	PerPage int
	BaseURL string
	Query   url.Values
}

func (r PageRequest) normalized() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PerPage < 1 || r.PerPage > 100 {
		r.PerPage = DefaultPerPage
	}
	return r
}

// Page is one page of rows plus its pager links.
type Page[T any] struct {
	Data        []T                    `json:"data"`
	Links       []utils.PaginationLink `json:"links"`
	CurrentPage int                    `json:"current_page"`
	LastPage    int                    `json:"last_page"`
	PerPage     int                    `json:"per_page"`
	Total       int64                  `json:"total"`
}

// paginate counts q, then loads the requested page newest first. scopes only shape the row
// query (preloads, computed columns) and never the count.
func paginate[T any](q *gorm.DB, req PageRequest, scopes ...func(*gorm.DB) *gorm.DB) (Page[T], error) {
	req = req.normalized()
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	rows := []T{}
	if err := base.Scopes(scopes...).Order("created_at DESC").Order("id DESC").
		Offset((req.Page - 1) * req.PerPage).Limit(req.PerPage).
		Find(&rows).Error; err != nil {
		return Page[T]{}, err
	}

	last := utils.LastPage(total, req.PerPage)
	return Page[T]{
		Data:        rows,
		Links:       utils.BuildPaginationLinks(req.BaseURL, req.Query, req.Page, last),
		CurrentPage: req.Page,
		LastPage:    last,
		PerPage:     req.PerPage,
		Total:       total,
	}, nil
}

// preload is a paginate scope that eager loads the named associations.
func preload(names ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, n := range names {
			db = db.Preload(n)
		}
		return db
	}
}
