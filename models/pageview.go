package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PageView stores aggregated public page view counts per day and path.
type PageView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"uniqueIndex:idx_pv_date_path;type:date;not null" json:"date"`
	Path      string    `gorm:"uniqueIndex:idx_pv_date_path;size:191;not null" json:"path"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayStart truncates t to local midnight so it lines up with the DATE column.
func DayStart(t time.Time) time.Time {
	local := t.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// IncrementPageView bumps the counter for path on the day of at.
func IncrementPageView(db *gorm.DB, path string, at time.Time) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": at}),
	}).Create(&PageView{Date: DayStart(at), Path: path, Count: 1}).Error
}
