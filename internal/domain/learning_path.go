package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LearningPath-specific validation errors
var (
	// ErrLearningPathIDEmpty is returned when a learning path ID is the nil UUID.
	ErrLearningPathIDEmpty = fmt.Errorf("%w: learning path ID cannot be empty", ErrValidation)

	// ErrLearningPathNameEmpty is returned when a learning path name is blank.
	ErrLearningPathNameEmpty = fmt.Errorf("%w: learning path name cannot be empty", ErrValidation)
)

var learningPathFieldErrors = map[string]error{
	"EstimatedDurationDays": ErrInvalidDuration,
}

// LearningPath is the top-level container of a learning journey, for example
// "Machine Learning Fundamentals" or "AWS Solutions Architect Prep".
// A path owns an ordered list of modules. Paths are archived rather than
// deleted during normal use.
type LearningPath struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Description           *string   `json:"description,omitempty"`
	Goal                  *string   `json:"goal,omitempty"`
	EstimatedDurationDays *int      `json:"estimated_duration_days,omitempty" validate:"omitempty,gte=0"`
	IsActive              bool      `json:"is_active"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	// Derived by the store on read; never written.
	ModuleCount        int `json:"module_count"`
	TotalResources     int `json:"total_resources"`
	CompletedResources int `json:"-"`
}

// LearningPathOptions carries the optional fields accepted by NewLearningPath.
type LearningPathOptions struct {
	Description           *string
	Goal                  *string
	EstimatedDurationDays *int
}

// LearningPathUpdate lists the fields UpdateInfo may overwrite.
// A nil field means "leave unchanged".
type LearningPathUpdate struct {
	Name                  *string
	Description           *string
	Goal                  *string
	EstimatedDurationDays *int
}

// IsEmpty reports whether the update would change nothing.
func (u LearningPathUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Goal == nil && u.EstimatedDurationDays == nil
}

// NewLearningPath creates an active LearningPath with a fresh ID and timestamps.
// Returns an error if validation fails.
func NewLearningPath(name string, opts LearningPathOptions) (*LearningPath, error) {
	now := time.Now().UTC()
	path := &LearningPath{
		ID:                    uuid.New(),
		Name:                  name,
		Description:           cloneString(opts.Description),
		Goal:                  cloneString(opts.Goal),
		EstimatedDurationDays: cloneInt(opts.EstimatedDurationDays),
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := path.Validate(); err != nil {
		return nil, err
	}

	return path, nil
}

// Validate checks if the LearningPath has valid data.
func (p *LearningPath) Validate() error {
	if p.ID == uuid.Nil {
		return ErrLearningPathIDEmpty
	}

	if strings.TrimSpace(p.Name) == "" {
		return ErrLearningPathNameEmpty
	}

	return validateFields(p, learningPathFieldErrors)
}

// Archive marks the path inactive. Calling it on an archived path only
// refreshes UpdatedAt.
func (p *LearningPath) Archive() {
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
}

// Restore reactivates an archived path.
func (p *LearningPath) Restore() {
	p.IsActive = true
	p.UpdatedAt = time.Now().UTC()
}

// UpdateInfo overwrites only the fields set in u. An empty update is a no-op.
// If the result would be invalid the path is left untouched and the
// validation error is returned.
func (p *LearningPath) UpdateInfo(u LearningPathUpdate) error {
	if u.IsEmpty() {
		return nil
	}

	next := *p
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.Description != nil {
		next.Description = cloneString(u.Description)
	}
	if u.Goal != nil {
		next.Goal = cloneString(u.Goal)
	}
	if u.EstimatedDurationDays != nil {
		next.EstimatedDurationDays = cloneInt(u.EstimatedDurationDays)
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*p = next
	return nil
}

// PercentComplete returns the share of resources in this path that have at
// least one delivered schedule, between 0 and 100.
func (p *LearningPath) PercentComplete() float64 {
	if p.TotalResources <= 0 {
		return 0
	}
	return float64(p.CompletedResources) / float64(p.TotalResources) * 100
}

// ToMap converts the path into a plain mapping for JSON serialization.
// Timestamps are rendered as ISO-8601 strings.
func (p *LearningPath) ToMap() map[string]any {
	return map[string]any{
		"id":                      p.ID.String(),
		"name":                    p.Name,
		"description":             derefString(p.Description),
		"goal":                    derefString(p.Goal),
		"estimated_duration_days": derefInt(p.EstimatedDurationDays),
		"is_active":               p.IsActive,
		"created_at":              formatTimestamp(p.CreatedAt),
		"updated_at":              formatTimestamp(p.UpdatedAt),
		"module_count":            p.ModuleCount,
		"total_resources":         p.TotalResources,
		"percent_complete":        p.PercentComplete(),
	}
}

// String returns the path name.
func (p *LearningPath) String() string {
	return p.Name
}
