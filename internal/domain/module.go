package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Module-specific validation errors
var (
	ErrModuleIDEmpty             = fmt.Errorf("%w: module ID cannot be empty", ErrValidation)
	ErrModuleLearningPathIDEmpty = fmt.Errorf("%w: module learning path ID cannot be empty", ErrValidation)
	ErrModuleNameEmpty           = fmt.Errorf("%w: module name cannot be empty", ErrValidation)
)

var moduleFieldErrors = map[string]error{
	"OrderIndex":   ErrInvalidOrderIndex,
	"DurationDays": ErrInvalidDuration,
}

// Module is a topical unit within a learning path. Modules are ordered by
// OrderIndex among the modules of the same path and own an ordered list of
// learning resources.
type Module struct {
	ID                 uuid.UUID  `json:"id"`
	LearningPathID     uuid.UUID  `json:"learning_path_id"`
	Name               string     `json:"name"`
	Description        *string    `json:"description,omitempty"`
	OrderIndex         int        `json:"order_index" validate:"gte=0"`
	DurationDays       *int       `json:"duration_days,omitempty" validate:"omitempty,gte=0"`
	Prerequisites      Attributes `json:"prereqs_json,omitempty"`
	LearningObjectives *string    `json:"learning_objectives,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// LearningResourceCount is derived by the store on read.
	LearningResourceCount int `json:"learning_resource_count"`
}

// ModuleOptions carries the optional fields accepted by NewModule.
type ModuleOptions struct {
	Description        *string
	DurationDays       *int
	Prerequisites      Attributes
	LearningObjectives *string
}

// ModuleUpdate lists the fields UpdateInfo may overwrite.
// Nil pointers and a nil Prerequisites map mean "leave unchanged".
type ModuleUpdate struct {
	Name               *string
	LearningPathID     *uuid.UUID
	OrderIndex         *int
	Description        *string
	DurationDays       *int
	Prerequisites      Attributes
	LearningObjectives *string
}

// IsEmpty reports whether the update would change nothing.
func (u ModuleUpdate) IsEmpty() bool {
	return u.Name == nil && u.LearningPathID == nil && u.OrderIndex == nil &&
		u.Description == nil && u.DurationDays == nil && u.Prerequisites == nil &&
		u.LearningObjectives == nil
}

// NewModule creates a Module attached to the given learning path at orderIndex.
// Returns an error if validation fails.
func NewModule(name string, learningPathID uuid.UUID, orderIndex int, opts ModuleOptions) (*Module, error) {
	now := time.Now().UTC()
	module := &Module{
		ID:                 uuid.New(),
		LearningPathID:     learningPathID,
		Name:               name,
		Description:        cloneString(opts.Description),
		OrderIndex:         orderIndex,
		DurationDays:       cloneInt(opts.DurationDays),
		Prerequisites:      opts.Prerequisites.Clone(),
		LearningObjectives: cloneString(opts.LearningObjectives),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := module.Validate(); err != nil {
		return nil, err
	}

	return module, nil
}

// Validate checks if the Module has valid data.
func (m *Module) Validate() error {
	if m.ID == uuid.Nil {
		return ErrModuleIDEmpty
	}

	if m.LearningPathID == uuid.Nil {
		return ErrModuleLearningPathIDEmpty
	}

	if strings.TrimSpace(m.Name) == "" {
		return ErrModuleNameEmpty
	}

	if err := validateFields(m, moduleFieldErrors); err != nil {
		return err
	}

	return m.Prerequisites.Validate()
}

// UpdateInfo overwrites only the fields set in u. An empty update is a no-op.
// On validation failure the module is left untouched.
func (m *Module) UpdateInfo(u ModuleUpdate) error {
	if u.IsEmpty() {
		return nil
	}

	next := *m
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.LearningPathID != nil {
		next.LearningPathID = *u.LearningPathID
	}
	if u.OrderIndex != nil {
		next.OrderIndex = *u.OrderIndex
	}
	if u.Description != nil {
		next.Description = cloneString(u.Description)
	}
	if u.DurationDays != nil {
		next.DurationDays = cloneInt(u.DurationDays)
	}
	if u.Prerequisites != nil {
		next.Prerequisites = u.Prerequisites.Clone()
	}
	if u.LearningObjectives != nil {
		next.LearningObjectives = cloneString(u.LearningObjectives)
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*m = next
	return nil
}

// ToMap converts the module into a plain mapping for JSON serialization.
func (m *Module) ToMap() map[string]any {
	var prereqs any
	if m.Prerequisites != nil {
		prereqs = map[string]any(m.Prerequisites.Clone())
	}
	return map[string]any{
		"id":                      m.ID.String(),
		"learning_path_id":        m.LearningPathID.String(),
		"name":                    m.Name,
		"description":             derefString(m.Description),
		"order_index":             m.OrderIndex,
		"duration_days":           derefInt(m.DurationDays),
		"prereqs_json":            prereqs,
		"learning_objectives":     derefString(m.LearningObjectives),
		"created_at":              formatTimestamp(m.CreatedAt),
		"updated_at":              formatTimestamp(m.UpdatedAt),
		"learning_resource_count": m.LearningResourceCount,
	}
}

// String returns the module name.
func (m *Module) String() string {
	return m.Name
}
