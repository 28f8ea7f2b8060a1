// Package domain contains the core learning-tracker entities: learning paths,
// their ordered modules, the ordered resources inside each module, and the
// delivery schedules attached to resources. Entities are plain records with
// factories that apply defaults, narrow update methods with partial-update
// semantics, and ToMap serializers. Persistence lives elsewhere.
package domain
