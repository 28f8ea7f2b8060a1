package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResourceType describes the kind of learning material.
type ResourceType string

// Supported resource types
const (
	ResourceTypeVideo         ResourceType = "video"
	ResourceTypeArticle       ResourceType = "article"
	ResourceTypeBook          ResourceType = "book"
	ResourceTypeCourse        ResourceType = "course"
	ResourceTypePodcast       ResourceType = "podcast"
	ResourceTypeDocumentation ResourceType = "documentation"
	ResourceTypePaper         ResourceType = "paper"
	ResourceTypeTutorial      ResourceType = "tutorial"
	ResourceTypeOther         ResourceType = "other"
)

// Difficulty is the expected level of a resource.
type Difficulty string

// Supported difficulty levels
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// LearningResource-specific validation errors
var (
	ErrLearningResourceIDEmpty       = fmt.Errorf("%w: learning resource ID cannot be empty", ErrValidation)
	ErrLearningResourceModuleIDEmpty = fmt.Errorf("%w: learning resource module ID cannot be empty", ErrValidation)
	ErrLearningResourceTitleEmpty    = fmt.Errorf("%w: learning resource title cannot be empty", ErrValidation)
	ErrInvalidResourceType           = fmt.Errorf("%w: invalid resource type", ErrValidation)
	ErrInvalidDifficulty             = fmt.Errorf("%w: invalid difficulty", ErrValidation)
	ErrInvalidResourceURL            = fmt.Errorf("%w: resource URL must be an absolute http(s) URL", ErrValidation)
	ErrInvalidEstimatedTime          = fmt.Errorf("%w: estimated time must be greater than or equal to 0", ErrValidation)
)

var learningResourceFieldErrors = map[string]error{
	"ResourceType":      ErrInvalidResourceType,
	"Difficulty":        ErrInvalidDifficulty,
	"URL":               ErrInvalidResourceURL,
	"EstimatedTimeMins": ErrInvalidEstimatedTime,
	"OrderIndex":        ErrInvalidOrderIndex,
}

// LearningResource is a single piece of learning material (a video, an
// article, a paper...) within a module, ordered by OrderIndex among the
// resources of the same module.
type LearningResource struct {
	ID                uuid.UUID     `json:"id"`
	ModuleID          uuid.UUID     `json:"module_id"`
	Title             string        `json:"title"`
	OrderIndex        int           `json:"order_index" validate:"gte=0"`
	ResourceType      *ResourceType `json:"resource_type,omitempty" validate:"omitempty,oneof=video article book course podcast documentation paper tutorial other"`
	URL               *string       `json:"url,omitempty" validate:"omitempty,http_url"`
	FilePath          *string       `json:"file_path,omitempty"`
	Content           *string       `json:"content,omitempty"`
	Summary           *string       `json:"summary,omitempty"`
	KeyConcepts       []string      `json:"key_concepts,omitempty"`
	Difficulty        *Difficulty   `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	EstimatedTimeMins *int          `json:"estimated_time_mins,omitempty" validate:"omitempty,gte=0"`
	SourceMetadata    Attributes    `json:"source_metadata,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// LearningResourceOptions carries the optional fields accepted by
// NewLearningResource.
type LearningResourceOptions struct {
	ResourceType      *ResourceType
	URL               *string
	FilePath          *string
	Content           *string
	Summary           *string
	KeyConcepts       []string
	Difficulty        *Difficulty
	EstimatedTimeMins *int
	SourceMetadata    Attributes
}

// LearningResourceUpdate lists the fields UpdateLearningResource may
// overwrite. Nil pointers, slices and maps mean "leave unchanged".
type LearningResourceUpdate struct {
	OrderIndex        *int
	Title             *string
	ResourceType      *ResourceType
	URL               *string
	FilePath          *string
	Content           *string
	Summary           *string
	KeyConcepts       []string
	Difficulty        *Difficulty
	EstimatedTimeMins *int
	SourceMetadata    Attributes
}

// IsEmpty reports whether the update would change nothing.
func (u LearningResourceUpdate) IsEmpty() bool {
	return u.OrderIndex == nil && u.Title == nil && u.ResourceType == nil &&
		u.URL == nil && u.FilePath == nil && u.Content == nil && u.Summary == nil &&
		u.KeyConcepts == nil && u.Difficulty == nil && u.EstimatedTimeMins == nil &&
		u.SourceMetadata == nil
}

// NewLearningResource creates a resource inside the given module at orderIndex.
// Returns an error if validation fails.
func NewLearningResource(
	moduleID uuid.UUID,
	orderIndex int,
	title string,
	opts LearningResourceOptions,
) (*LearningResource, error) {
	now := time.Now().UTC()
	resource := &LearningResource{
		ID:                uuid.New(),
		ModuleID:          moduleID,
		Title:             title,
		OrderIndex:        orderIndex,
		ResourceType:      cloneResourceType(opts.ResourceType),
		URL:               cloneString(opts.URL),
		FilePath:          cloneString(opts.FilePath),
		Content:           cloneString(opts.Content),
		Summary:           cloneString(opts.Summary),
		KeyConcepts:       cloneStrings(opts.KeyConcepts),
		Difficulty:        cloneDifficulty(opts.Difficulty),
		EstimatedTimeMins: cloneInt(opts.EstimatedTimeMins),
		SourceMetadata:    opts.SourceMetadata.Clone(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := resource.Validate(); err != nil {
		return nil, err
	}

	return resource, nil
}

// Validate checks if the LearningResource has valid data.
func (r *LearningResource) Validate() error {
	if r.ID == uuid.Nil {
		return ErrLearningResourceIDEmpty
	}

	if r.ModuleID == uuid.Nil {
		return ErrLearningResourceModuleIDEmpty
	}

	if strings.TrimSpace(r.Title) == "" {
		return ErrLearningResourceTitleEmpty
	}

	if err := validateFields(r, learningResourceFieldErrors); err != nil {
		return err
	}

	if err := validateKeyConcepts(r.KeyConcepts); err != nil {
		return err
	}

	return r.SourceMetadata.Validate()
}

// UpdateLearningResource overwrites only the fields set in u. An empty update
// is a no-op. On validation failure the resource is left untouched.
func (r *LearningResource) UpdateLearningResource(u LearningResourceUpdate) error {
	if u.IsEmpty() {
		return nil
	}

	next := *r
	if u.OrderIndex != nil {
		next.OrderIndex = *u.OrderIndex
	}
	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.ResourceType != nil {
		next.ResourceType = cloneResourceType(u.ResourceType)
	}
	if u.URL != nil {
		next.URL = cloneString(u.URL)
	}
	if u.FilePath != nil {
		next.FilePath = cloneString(u.FilePath)
	}
	if u.Content != nil {
		next.Content = cloneString(u.Content)
	}
	if u.Summary != nil {
		next.Summary = cloneString(u.Summary)
	}
	if u.KeyConcepts != nil {
		next.KeyConcepts = cloneStrings(u.KeyConcepts)
	}
	if u.Difficulty != nil {
		next.Difficulty = cloneDifficulty(u.Difficulty)
	}
	if u.EstimatedTimeMins != nil {
		next.EstimatedTimeMins = cloneInt(u.EstimatedTimeMins)
	}
	if u.SourceMetadata != nil {
		next.SourceMetadata = u.SourceMetadata.Clone()
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*r = next
	return nil
}

// ToMap converts the resource into a plain mapping for JSON serialization.
func (r *LearningResource) ToMap() map[string]any {
	var resourceType, difficulty, concepts, metadata any
	if r.ResourceType != nil {
		resourceType = string(*r.ResourceType)
	}
	if r.Difficulty != nil {
		difficulty = string(*r.Difficulty)
	}
	if r.KeyConcepts != nil {
		concepts = cloneStrings(r.KeyConcepts)
	}
	if r.SourceMetadata != nil {
		metadata = map[string]any(r.SourceMetadata.Clone())
	}

	return map[string]any{
		"id":                  r.ID.String(),
		"module_id":           r.ModuleID.String(),
		"title":               r.Title,
		"order_index":         r.OrderIndex,
		"resource_type":       resourceType,
		"url":                 derefString(r.URL),
		"file_path":           derefString(r.FilePath),
		"content":             derefString(r.Content),
		"summary":             derefString(r.Summary),
		"key_concepts":        concepts,
		"difficulty":          difficulty,
		"estimated_time_mins": derefInt(r.EstimatedTimeMins),
		"source_metadata":     metadata,
		"created_at":          formatTimestamp(r.CreatedAt),
		"updated_at":          formatTimestamp(r.UpdatedAt),
	}
}

// String returns the resource title.
func (r *LearningResource) String() string {
	return r.Title
}

func cloneResourceType(t *ResourceType) *ResourceType {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneDifficulty(d *Difficulty) *Difficulty {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
