package directory

import "time"

// Read models for the organization directories this engine consumes. Their
// lifecycle (CRUD, validation) belongs to an upstream service; bookwise only
// resolves references, always scoped to an organization.

type Organization struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Timezone string `db:"timezone" json:"timezone"`
}

type Service struct {
	ID              int64  `db:"id" json:"id"`
	OrganizationID  int64  `db:"organization_id" json:"organization_id"`
	Name            string `db:"name" json:"name"`
	DurationMinutes int    `db:"duration_minutes" json:"duration_minutes"`
	// Capacity is nil for one-on-one services; set for capacity-limited
	// classes.
	Capacity   *int   `db:"capacity" json:"capacity,omitempty"`
	IsClass    bool   `db:"is_class" json:"is_class"`
	PriceCents *int64 `db:"price_cents" json:"price_cents,omitempty"`
}

type Resource struct {
	ID             int64  `db:"id" json:"id"`
	OrganizationID int64  `db:"organization_id" json:"organization_id"`
	Name           string `db:"name" json:"name"`
	Type           string `db:"type" json:"type"`
}

type Location struct {
	ID             int64  `db:"id" json:"id"`
	OrganizationID int64  `db:"organization_id" json:"organization_id"`
	Name           string `db:"name" json:"name"`
}

type User struct {
	ID             int64     `db:"id" json:"id"`
	OrganizationID int64     `db:"organization_id" json:"organization_id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	Role           string    `db:"role" json:"role"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
