package core

// ParsedProject is the structured description extracted from a project's sources.
// It is rebuilt from scratch on every extraction.
type ParsedProject struct {
	Models []ModelDefinition `json:"models" yaml:"models"`
	Routes []RouteDefinition `json:"routes" yaml:"routes"`
	Errors []Diagnostic      `json:"errors" yaml:"errors"`
}

// ModelNames returns model names in declaration order.
func (p *ParsedProject) ModelNames() []string {
	names := make([]string, 0, len(p.Models))
	for _, m := range p.Models {
		names = append(names, m.Name)
	}
	return names
}

// HasModel reports whether a model with the exact name exists.
func (p *ParsedProject) HasModel(name string) bool {
	for _, m := range p.Models {
		if m.Name == name {
			return true
		}
	}
	return false
}
