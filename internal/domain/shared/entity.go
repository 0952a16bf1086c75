package shared

import "time"

// Audit holds the bookkeeping fields every stored entity carries.
type Audit struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `json:"is_deleted"`
	CreatedBy string     `json:"created_by,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
}

// NewAudit starts the bookkeeping for a freshly constructed entity.
func NewAudit(now time.Time) Audit {
	return Audit{CreatedAt: now.UTC()}
}

// Touch stamps the last-update time.
func (a *Audit) Touch(now time.Time) {
	t := now.UTC()
	a.UpdatedAt = &t
}

// MarkDeleted soft-deletes the entity.
func (a *Audit) MarkDeleted(now time.Time) {
	a.IsDeleted = true
	a.Touch(now)
}
