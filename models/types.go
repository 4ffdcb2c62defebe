package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Publication status shared by posts and category tags.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// StringList is a list of strings persisted as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	*l = items
	return nil
}

// Audit records which admin created and last updated a row.
type Audit struct {
	CreatedUserID uint  `gorm:"index;not null" json:"created_user_id"`
	UpdatedUserID *uint `gorm:"index" json:"updated_user_id"`
}

// StampCreate sets the creator of a new row.
func (a *Audit) StampCreate(userID uint) {
	a.CreatedUserID = userID
}

// StampUpdate sets the last editor of an existing row.
func (a *Audit) StampUpdate(userID uint) {
	id := userID
	a.UpdatedUserID = &id
}

// All lists every model for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&CategoryTag{},
		&Post{},
		&PostCategoryTag{},
		&Teacher{},
		&Facility{},
		&Gallery{},
		&Comment{},
		&PageView{},
		&StoredFile{},
	}
}
