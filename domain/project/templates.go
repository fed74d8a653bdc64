package project

import (
	"errors"
	"portal/domain"
)

var (
	errTemplateOrPhases = errors.New("exactly one of template or phases is required")
	errUnknownTemplate  = errors.New("unknown project template")
)

// Templates are the built-in phase sequences a project can start from.
var Templates = map[string][]string{
	"website":  {"Discovery", "Design", "Development", "Launch"},
	"branding": {"Research", "Concepts", "Refinement", "Delivery"},
}

// ResolvePhases expands a creation request into phase specifiers in sequence order.
func ResolvePhases(c *domain.ProjectCreating) ([]domain.PhaseSpecifier, error) {
	if (c.Template == "") == (len(c.Phases) == 0) {
		return nil, errTemplateOrPhases
	}
	if len(c.Phases) > 0 {
		return c.Phases, nil
	}
	names, found := Templates[c.Template]
	if !found {
		return nil, errUnknownTemplate
	}
	specs := make([]domain.PhaseSpecifier, 0, len(names))
	for _, name := range names {
		specs = append(specs, domain.PhaseSpecifier{Name: name})
	}
	return specs, nil
}
