package models

import "time"

// Teacher is a staff photo with its caption.
type Teacher struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Alt               string `gorm:"size:255;not null" json:"alt"`
	Src               string `gorm:"size:512;not null" json:"src"`
	TeacherCategoryID uint   `gorm:"index;not null" json:"teacher_category_id"`
	Audit
	CreatedAt       time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	TeacherCategory *CategoryTag `gorm:"foreignKey:TeacherCategoryID" json:"teacher_category,omitempty"`
}

// Facility is a campus facility photo.
type Facility struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	Alt                string `gorm:"size:255;not null" json:"alt"`
	Src                string `gorm:"size:512;not null" json:"src"`
	FacilityCategoryID *uint  `gorm:"index" json:"facility_category_id"`
	Audit
	CreatedAt        time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	FacilityCategory *CategoryTag `gorm:"foreignKey:FacilityCategoryID" json:"facility_category,omitempty"`
}

// Gallery is a photo in the public gallery.
type Gallery struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Alt string `gorm:"size:255;not null" json:"alt"`
	Src string `gorm:"size:512;not null" json:"src"`
	Audit
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the primary key.
func (t Teacher) GetID() uint { return t.ID }

// GetID returns the primary key.
func (f Facility) GetID() uint { return f.ID }

// GetID returns the primary key.
func (g Gallery) GetID() uint { return g.ID }

// ImageFields exposes the caption and image URL for shared photo handling.
func (t *Teacher) ImageFields() (alt, src *string) { return &t.Alt, &t.Src }

// ImageFields exposes the caption and image URL for shared photo handling.
func (f *Facility) ImageFields() (alt, src *string) { return &f.Alt, &f.Src }

// ImageFields exposes the caption and image URL for shared photo handling.
func (g *Gallery) ImageFields() (alt, src *string) { return &g.Alt, &g.Src }
