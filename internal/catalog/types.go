package catalog

import "time"

// Organization groups users for org-mediated project access. Slug is
// unique and stored lowercase.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// OrganizationMember records a user's membership in an organization.
// Role is a free-form org-level string, unrelated to app roles.
type OrganizationMember struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Language is a catalog entry projects reference. Code is unique and
// stored lowercase.
type Language struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is the unit of work access grants attach to.
type Project struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	LanguageID          string    `json:"language_id"`
	Description         string    `json:"description,omitempty"`
	Latitude            *float64  `json:"latitude,omitempty"`
	Longitude           *float64  `json:"longitude,omitempty"`
	LocationDisplayName string    `json:"location_display_name,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProjectUserAccess grants one user direct access to one project.
type ProjectUserAccess struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectOrganizationAccess grants every member of an organization
// access to one project.
type ProjectOrganizationAccess struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Phase is a reusable unit of project work, sequenced via dependencies.
type Phase struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectPhase attaches a phase to a project, unique per pair.
type ProjectPhase struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	PhaseID   string `json:"phase_id"`
}

// PhaseDependency says PhaseID cannot start before DependsOnID.
type PhaseDependency struct {
	ID          string `json:"id"`
	PhaseID     string `json:"phase_id"`
	DependsOnID string `json:"depends_on_id"`
}
