package models

import "time"

// Dataset is one uploaded CSV snapshot owned by a user.
type Dataset struct {
	ID         int64     `db:"id" json:"id"`
	OwnerID    int64     `db:"owner_id" json:"-"`
	Name       string    `db:"name" json:"name"`
	RowCount   int       `db:"row_count" json:"row_count"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}
