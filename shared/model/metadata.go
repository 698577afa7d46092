package model

import "time"

type Metadata struct {
	CreatedAt  time.Time `db:"created_at"`
	ModifiedAt time.Time `db:"modified_at"`
}

// Touch stamps both fields for a freshly created record.
func (m *Metadata) Touch(now time.Time) {
	m.CreatedAt = now
	m.ModifiedAt = now
}
