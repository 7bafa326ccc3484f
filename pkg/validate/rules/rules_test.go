package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/validate"
)

func field(name, typ string, constraints ...string) core.ModelField {
	f := core.ModelField{Name: name, Type: typ, Constraints: constraints}
	for _, c := range constraints {
		if c == "optional" {
			f.Optional = true
		}
	}
	return f
}

func model(name string, fields ...core.ModelField) core.ModelDefinition {
	return core.ModelDefinition{Name: name, Fields: fields}
}

func pk() core.ModelField {
	return field("id", "uuid", "primary")
}

func route(method, path string) core.RouteDefinition {
	return core.RouteDefinition{
		Method:     method,
		Path:       path,
		Parameters: core.ParametersFromPath(path),
		Handler:    core.NewCodeFragment("lambda ctx: None"),
	}
}

func run(check validate.Check, project *core.ParsedProject) []core.Diagnostic {
	return check(validate.NewContext(project))
}

func bySeverity(diags []core.Diagnostic, sev core.Severity) []string {
	var out []string
	for _, d := range diags {
		if d.Severity == sev {
			out = append(out, d.Message)
		}
	}
	return out
}

func countContaining(msgs []string, substr string) int {
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

func TestRulesRegistered(t *testing.T) {
	var ids []string
	for _, r := range validate.GetAll() {
		ids = append(ids, r.ID)
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Description)
		assert.NotEmpty(t, r.Checks)
		assert.NotEmpty(t, r.Rationale)
		assert.NotNil(t, r.Check)
	}
	assert.Equal(t, []string{"DSL01", "DSL02", "DSL03", "DSL04"}, ids)
}

func TestDSL01_Models(t *testing.T) {
	tests := []struct {
		name         string
		models       []core.ModelDefinition
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:   "valid unique names",
			models: []core.ModelDefinition{model("User", pk()), model("_Post2", pk()), model("blog_entry", pk())},
		},
		{
			name:       "duplicate name",
			models:     []core.ModelDefinition{model("User", pk()), model("User", pk())},
			wantErrors: []string{"Duplicate model name: User"},
		},
		{
			name:       "every repeat is reported",
			models:     []core.ModelDefinition{model("User", pk()), model("User", pk()), model("User", pk())},
			wantErrors: []string{"Duplicate model name: User", "Duplicate model name: User"},
		},
		{
			name:   "names are case-sensitive",
			models: []core.ModelDefinition{model("User", pk()), model("user", pk())},
		},
		{
			name:       "invalid identifier",
			models:     []core.ModelDefinition{model("1User", pk()), model("Blog-Post", pk())},
			wantErrors: []string{"Invalid model name: 1User. Must be a valid identifier.", "Invalid model name: Blog-Post. Must be a valid identifier."},
		},
		{
			name:         "no primary key",
			models:       []core.ModelDefinition{model("Tag", field("label", "string"))},
			wantWarnings: []string{"Model Tag has no primary key field"},
		},
		{
			name:   "primary matched as substring",
			models: []core.ModelDefinition{model("Tag", field("id", "uuid", "primaryKey"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := run(checkModels, &core.ParsedProject{Models: tt.models})
			assert.Equal(t, tt.wantErrors, bySeverity(diags, core.SeverityError))
			assert.Equal(t, tt.wantWarnings, bySeverity(diags, core.SeverityWarning))
		})
	}
}

func TestDSL01_ValidNamesNeverProduceNameErrors(t *testing.T) {
	names := []string{"User", "user", "_private", "A1", "snake_case_name", "X"}
	var models []core.ModelDefinition
	for _, n := range names {
		models = append(models, model(n, pk()))
	}

	diags := run(checkModels, &core.ParsedProject{Models: models})
	assert.Empty(t, diags)
}

func TestDSL01_LocationFallsBackToModelName(t *testing.T) {
	located := model("User")
	located.Location = "api/schema.star:3:1"

	diags := run(checkModels, &core.ParsedProject{Models: []core.ModelDefinition{located, model("Post")}})
	require.Len(t, diags, 2)
	assert.Equal(t, "api/schema.star:3:1", diags[0].Location)
	assert.Equal(t, "Post", diags[1].Location)
}

func TestDSL02_Fields(t *testing.T) {
	tests := []struct {
		name         string
		fields       []core.ModelField
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "all valid",
			fields: []core.ModelField{
				pk(),
				field("email", "string", "email", "unique"),
				field("name", "string", "min(2)", "max(100)"),
				field("age", "number", "min(0)"),
				field("createdAt", "datetime", "defaultNow"),
				field("updatedAt", "datetime", "onUpdate"),
				field("authorId", "uuid", `references("User", "id")`),
				field("bio", "text", "optional"),
				field("seq", "number", "autoincrement", "default(1)"),
				field("meta", "json"),
				field("active", "boolean"),
				field("birthday", "date"),
			},
		},
		{
			name:       "duplicate field",
			fields:     []core.ModelField{pk(), field("id", "uuid")},
			wantErrors: []string{"Duplicate field name: id in model User"},
		},
		{
			name:       "invalid field name",
			fields:     []core.ModelField{pk(), field("first-name", "string")},
			wantErrors: []string{"Invalid field name: first-name in model User. Must be a valid identifier."},
		},
		{
			name:       "invalid type",
			fields:     []core.ModelField{pk(), field("count", "integer")},
			wantErrors: []string{"Invalid field type: integer for field count in model User"},
		},
		{
			name:       "missing type",
			fields:     []core.ModelField{pk(), field("count", "")},
			wantErrors: []string{"Invalid field type:  for field count in model User"},
		},
		{
			name:         "unknown constraint",
			fields:       []core.ModelField{pk(), field("name", "string", "trim", "lower()")},
			wantWarnings: []string{"Unknown constraint: trim on field name in model User", "Unknown constraint: lower on field name in model User"},
		},
		{
			name:       "optional primary key",
			fields:     []core.ModelField{field("id", "uuid", "primary", "optional")},
			wantErrors: []string{"Primary key field id in model User cannot be optional"},
		},
		{
			name:         "optional unique",
			fields:       []core.ModelField{pk(), field("nick", "string", "unique", "optional")},
			wantWarnings: []string{"Unique field nick in model User is optional, which may cause issues"},
		},
		{
			name:       "email on non-string",
			fields:     []core.ModelField{pk(), field("contact", "text", "email")},
			wantErrors: []string{"Email constraint on field contact in model User can only be used with string fields"},
		},
		{
			name:       "min and max on boolean",
			fields:     []core.ModelField{pk(), field("flag", "boolean", "min(1)", "max(2)")},
			wantErrors: []string{"min constraint on field flag in model User can only be used with string or number fields", "max constraint on field flag in model User can only be used with string or number fields"},
		},
		{
			name:       "datetime constraints on date",
			fields:     []core.ModelField{pk(), field("day", "date", "defaultNow", "onUpdate")},
			wantErrors: []string{"defaultNow constraint on field day in model User can only be used with datetime fields", "onUpdate constraint on field day in model User can only be used with datetime fields"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := &core.ParsedProject{Models: []core.ModelDefinition{model("User", tt.fields...)}}
			diags := run(checkFields, project)
			assert.Equal(t, tt.wantErrors, bySeverity(diags, core.SeverityError))
			assert.Equal(t, tt.wantWarnings, bySeverity(diags, core.SeverityWarning))
		})
	}
}

func TestDSL02_NoShortCircuit(t *testing.T) {
	project := &core.ParsedProject{Models: []core.ModelDefinition{
		model("User", field("bad-name", "nope", "email", "optional", "primary")),
		model("Post", field("id", "uuid", "primary"), field("id", "uuid")),
	}}

	errs := bySeverity(run(checkFields, project), core.SeverityError)
	assert.Equal(t, []string{
		"Invalid field name: bad-name in model User. Must be a valid identifier.",
		"Invalid field type: nope for field bad-name in model User",
		"Email constraint on field bad-name in model User can only be used with string fields",
		"Primary key field bad-name in model User cannot be optional",
		"Duplicate field name: id in model Post",
	}, errs)
}

func TestDSL03_Routes(t *testing.T) {
	models := []core.ModelDefinition{model("User", pk()), model("Post", pk())}

	withTypes := func(r core.RouteDefinition, body, response string) core.RouteDefinition {
		r.Body = body
		r.Response = response
		return r
	}

	tests := []struct {
		name         string
		routes       []core.RouteDefinition
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "valid routes",
			routes: []core.RouteDefinition{
				withTypes(route("GET", "/api/users"), "", "UserList"),
				withTypes(route("GET", "/api/users/:id"), "", "User"),
				withTypes(route("POST", "/api/users"), "UserCreate", "User"),
				withTypes(route("PATCH", "/api/posts/:id"), "PostPatch", "Post"),
				withTypes(route("PUT", "/api/posts/:id"), "Post", "Post"),
				route("delete", "/api/posts/:id"),
				route("HEAD", "/health"),
				route("Options", "/api"),
			},
		},
		{
			name:       "invalid method",
			routes:     []core.RouteDefinition{route("FETCH", "/api/users")},
			wantErrors: []string{"Invalid HTTP method: FETCH for route /api/users"},
		},
		{
			name:       "path without leading slash",
			routes:     []core.RouteDefinition{route("GET", "api/users")},
			wantErrors: []string{"Route path must start with '/': api/users"},
		},
		{
			name:         "unknown response",
			routes:       []core.RouteDefinition{withTypes(route("GET", "/api/users"), "", "Users")},
			wantWarnings: []string{"Response type Users for route GET /api/users does not reference a known model"},
		},
		{
			name:         "unknown body",
			routes:       []core.RouteDefinition{withTypes(route("POST", "/api/users"), "UserInput", "User")},
			wantWarnings: []string{"Body type UserInput for route POST /api/users does not follow known naming patterns"},
		},
		{
			name:         "body suffix on unknown model",
			routes:       []core.RouteDefinition{withTypes(route("POST", "/api/tags"), "TagCreate", "")},
			wantWarnings: []string{"Body type TagCreate for route POST /api/tags does not follow known naming patterns"},
		},
		{
			name: "blank handler",
			routes: []core.RouteDefinition{
				{Method: "GET", Path: "/a"},
				{Method: "GET", Path: "/b", Handler: core.NewCodeFragment("  \n")},
			},
			wantErrors: []string{"Route GET /a has no handler", "Route GET /b has no handler"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := run(checkRoutes, &core.ParsedProject{Models: models, Routes: tt.routes})
			assert.Equal(t, tt.wantErrors, bySeverity(diags, core.SeverityError))
			assert.Equal(t, tt.wantWarnings, bySeverity(diags, core.SeverityWarning))
		})
	}
}

func TestDSL03_DuplicateRouteReportedOncePerSignature(t *testing.T) {
	project := &core.ParsedProject{Routes: []core.RouteDefinition{
		route("GET", "/api/users"),
		route("GET", "/api/users"),
		route("GET", "/api/users"),
		route("POST", "/api/users"),
	}}

	errs := bySeverity(run(checkRoutes, project), core.SeverityError)
	assert.Equal(t, 1, countContaining(errs, "Duplicate route"))
	assert.Equal(t, []string{"Duplicate route: GET /api/users"}, errs)
}

func TestDSL03_UndeclaredPathParameter(t *testing.T) {
	r := route("GET", "/api/users/:id/:postId")
	r.Parameters = []core.RouteParameter{{Name: "id", Type: "string"}}

	diags := run(checkRoutes, &core.ParsedProject{Routes: []core.RouteDefinition{r}})

	assert.Empty(t, bySeverity(diags, core.SeverityError))
	warnings := bySeverity(diags, core.SeverityWarning)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "postId")
	assert.Equal(t, "Path parameter :postId in route GET /api/users/:id/:postId is not defined in parameters", warnings[0])
}

func TestDSL03_UnusedDeclaredParameter(t *testing.T) {
	r := route("GET", "/api/users")
	r.Parameters = []core.RouteParameter{{Name: "id", Type: "string"}}

	warnings := bySeverity(run(checkRoutes, &core.ParsedProject{Routes: []core.RouteDefinition{r}}), core.SeverityWarning)
	assert.Equal(t, []string{"Parameter id is defined but not used in path /api/users"}, warnings)
}

func TestDSL03_NoModels(t *testing.T) {
	r := route("POST", "/api/users")
	r.Body = "Create"
	r.Response = "UserList"

	warnings := bySeverity(run(checkRoutes, &core.ParsedProject{Routes: []core.RouteDefinition{r}}), core.SeverityWarning)
	// With no models the body pattern degenerates to ^()(Create|Update|Patch)$.
	assert.Equal(t, []string{"Response type UserList for route POST /api/users does not reference a known model"}, warnings)
}

func TestDSL03_ModelNamesAreQuotedInBodyPattern(t *testing.T) {
	models := []core.ModelDefinition{model("A.B", pk())}
	r := route("POST", "/x")
	r.Body = "AxBCreate"

	warnings := bySeverity(run(checkRoutes, &core.ParsedProject{Models: models, Routes: []core.RouteDefinition{r}}), core.SeverityWarning)
	assert.Len(t, warnings, 1)
}

func TestDSL04_Relationships(t *testing.T) {
	rel := func(name, kind, target, fk string) core.RelationshipDefinition {
		return core.RelationshipDefinition{Name: name, Kind: kind, Target: target, ForeignKey: fk}
	}
	withRels := func(m core.ModelDefinition, rels ...core.RelationshipDefinition) core.ModelDefinition {
		m.Relationships = rels
		return m
	}

	tests := []struct {
		name         string
		models       []core.ModelDefinition
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "valid relationships",
			models: []core.ModelDefinition{
				withRels(model("User", pk()), rel("posts", "hasMany", "Post", ""), rel("profile", "hasOne", "Profile", "")),
				withRels(model("Post", pk(), field("userId", "uuid"), field("editorId", "uuid")),
					rel("user", "belongsTo", "User", ""),
					rel("editor", "belongsTo", "User", "editorId")),
				model("Profile", pk()),
			},
		},
		{
			name: "missing target",
			models: []core.ModelDefinition{
				withRels(model("User", pk()), rel("posts", "hasMany", "Post", "")),
			},
			wantErrors: []string{"Relationship posts in model User references non-existent model Post"},
		},
		{
			name: "invalid kind",
			models: []core.ModelDefinition{
				withRels(model("User", pk()), rel("friends", "manyToMany", "User", "")),
			},
			wantErrors: []string{"Invalid relationship type: manyToMany for relationship friends in model User"},
		},
		{
			name: "missing conventional foreign key",
			models: []core.ModelDefinition{
				model("BlogUser", pk()),
				withRels(model("Post", pk(), field("blogUserId", "uuid")), rel("author", "belongsTo", "BlogUser", "")),
			},
			wantWarnings: []string{"belongsTo relationship author in model Post expects foreign key field bloguserId but it's not defined"},
		},
		{
			name: "missing explicit foreign key",
			models: []core.ModelDefinition{
				model("User", pk()),
				withRels(model("Post", pk(), field("userId", "uuid")), rel("author", "belongsTo", "User", "authorId")),
			},
			wantWarnings: []string{"belongsTo relationship author in model Post expects foreign key field authorId but it's not defined"},
		},
		{
			name: "all checks apply together",
			models: []core.ModelDefinition{
				withRels(model("Post", pk()), rel("author", "belongsTo", "Ghost", "")),
			},
			wantErrors:   []string{"Relationship author in model Post references non-existent model Ghost"},
			wantWarnings: []string{"belongsTo relationship author in model Post expects foreign key field ghostId but it's not defined"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := run(checkRelationships, &core.ParsedProject{Models: tt.models})
			assert.Equal(t, tt.wantErrors, bySeverity(diags, core.SeverityError))
			assert.Equal(t, tt.wantWarnings, bySeverity(diags, core.SeverityWarning))
		})
	}
}

func TestValidate_AddingTargetModelClearsError(t *testing.T) {
	post := model("Post", pk(), field("userId", "uuid"))
	post.Relationships = []core.RelationshipDefinition{{Name: "user", Kind: "belongsTo", Target: "User"}}
	project := &core.ParsedProject{Models: []core.ModelDefinition{post}}

	v := validate.NewValidator(nil)

	result := v.Validate(project)
	assert.False(t, result.IsValid)
	assert.Equal(t, 1, countContaining(bySeverity(result.Errors, core.SeverityError), "references non-existent model"))

	project.Models = append(project.Models, model("User", pk()))
	result = v.Validate(project)
	assert.True(t, result.IsValid)
	assert.Zero(t, countContaining(bySeverity(result.Errors, core.SeverityError), "references non-existent model"))
}

func TestValidate_DuplicateModelName(t *testing.T) {
	project := &core.ParsedProject{Models: []core.ModelDefinition{model("User", pk()), model("User", pk())}}

	result := validate.NewValidator(nil).Validate(project)
	assert.False(t, result.IsValid)
	assert.GreaterOrEqual(t, countContaining(bySeverity(result.Errors, core.SeverityError), "Duplicate model name"), 1)
	assert.Equal(t, "DSL01", result.Errors[0].RuleID)
}

func TestValidate_EmptyProject(t *testing.T) {
	result := validate.NewValidator(nil).Validate(&core.ParsedProject{})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_Idempotent(t *testing.T) {
	post := model("Post", pk(), field("title", "string", "min(1)", "optional", "unique"))
	post.Relationships = []core.RelationshipDefinition{{Name: "author", Kind: "belongsTo", Target: "Ghost"}}
	r := route("GET", "/api/posts/:id")
	r.Response = "Posts"

	project := &core.ParsedProject{
		Models: []core.ModelDefinition{post, model("Post"), model("9lives")},
		Routes: []core.RouteDefinition{r, r, {Method: "BREW", Path: "coffee"}},
	}

	v := validate.NewValidator(nil)
	first := v.Validate(project)
	second := v.Validate(project)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Errors)
	assert.NotEmpty(t, first.Warnings)
}

func TestValidate_DisabledRule(t *testing.T) {
	project := &core.ParsedProject{Routes: []core.RouteDefinition{{Method: "GET", Path: "/"}}}

	cfg := validate.NewConfig()
	cfg.DisabledRules["DSL03"] = true

	assert.False(t, validate.NewValidator(nil).Validate(project).IsValid)
	assert.True(t, validate.NewValidator(cfg).Validate(project).IsValid)
}
