package validate

import (
	"slices"

	"github.com/leapstack-labs/forge/pkg/core"
)

// Context provides the project being validated to each rule.
// It is built fresh for every validation run.
type Context struct {
	project    *core.ParsedProject
	modelNames []string
}

// NewContext wraps a project for validation. A nil project is treated as empty.
func NewContext(project *core.ParsedProject) *Context {
	if project == nil {
		project = &core.ParsedProject{}
	}
	return &Context{
		project:    project,
		modelNames: project.ModelNames(),
	}
}

// Models returns the project's models in declaration order.
func (c *Context) Models() []core.ModelDefinition {
	return c.project.Models
}

// Routes returns the project's routes in declaration order.
func (c *Context) Routes() []core.RouteDefinition {
	return c.project.Routes
}

// ModelNames returns every model name, duplicates included.
func (c *Context) ModelNames() []string {
	return c.modelNames
}

// IsModel checks if a given name is a declared model.
func (c *Context) IsModel(name string) bool {
	return slices.Contains(c.modelNames, name)
}
