package schema_test

import (
	"errors"
	"testing"

	"github.com/aretw0/formstate/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person() *schema.Schema {
	return schema.Object(
		schema.Field("name", schema.String().Min(1)),
		schema.Field("age", schema.Int().Min(18)),
	)
}

func TestParse_Success(t *testing.T) {
	result, err := person().Parse(map[string]any{"name": "Ada", "age": 30.0})
	require.NoError(t, err)
	assert.Equal(t, schema.Result{"name": "Ada", "age": 30}, result)
}

func TestParse_FieldIssues(t *testing.T) {
	_, err := person().Parse(map[string]any{"name": "", "age": 10.0})
	issues, ok := schema.AsIssues(err)
	require.True(t, ok, "error should be Issues, got %T", err)

	assert.Equal(t, map[string]string{
		"name": "String must contain at least 1 character(s)",
		"age":  "Number must be greater than or equal to 18",
	}, issues.FieldErrors())
	assert.Empty(t, issues.FormErrors())
	assert.Equal(t, []string{"name"}, issues[0].Path)
}

func TestParse_MissingField(t *testing.T) {
	_, err := person().Parse(map[string]any{"name": "Ada"})
	issues, ok := schema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, "Required", issues[0].Message)
	assert.Equal(t, schema.CodeInvalidType, issues[0].Code)
}

func TestParse_StripsUnknownKeys(t *testing.T) {
	result, err := person().Parse(map[string]any{"name": "Ada", "age": 30, "admin": true})
	require.NoError(t, err)
	assert.NotContains(t, result, "admin")
}

func TestParse_DefaultsAndOptional(t *testing.T) {
	s := schema.Object(
		schema.Field("age", schema.Int().Min(18).Max(99).Default(18)),
		schema.Field("website", schema.String().Optional()),
		schema.Field("day", schema.String().Default("2024-05-01").Describe("date")),
	)

	result, err := s.Parse(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 18, result["age"])
	assert.Equal(t, "2024-05-01", result["day"])
	_, present := result["website"]
	assert.False(t, present, "absent optional fields are omitted")

	result, err = s.Parse(map[string]any{"age": 40, "website": "https://ada.dev", "day": nil})
	require.NoError(t, err)
	assert.Equal(t, 40, result["age"])
	assert.Equal(t, "https://ada.dev", result["website"])
	assert.Equal(t, "2024-05-01", result["day"], "nil counts as absent")
}

func TestParse_Refine(t *testing.T) {
	register := schema.Object(
		schema.Field("password", schema.String().Min(6).Describe("password")),
		schema.Field("confirm", schema.String().Describe("password")),
	).Refine(func(r schema.Result) bool {
		return r["password"] == r["confirm"]
	}, "Passwords don't match", "confirm")

	_, err := register.Parse(map[string]any{"password": "secret1", "confirm": "secret2"})
	issues, ok := schema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"confirm": "Passwords don't match"}, issues.FieldErrors())

	// Refinements wait for the fields to be valid.
	_, err = register.Parse(map[string]any{"password": "123", "confirm": "456"})
	issues, _ = schema.AsIssues(err)
	assert.Equal(t, map[string]string{"password": "String must contain at least 6 character(s)"}, issues.FieldErrors())

	formWide := schema.Object(schema.Field("a", schema.Int()), schema.Field("b", schema.Int())).
		Refine(func(r schema.Result) bool { return r["a"].(int) < r["b"].(int) }, "a must be lower than b")
	_, err = formWide.Parse(map[string]any{"a": 2, "b": 1})
	issues, _ = schema.AsIssues(err)
	assert.Equal(t, []string{"a must be lower than b"}, issues.FormErrors())
}

func TestMergePickOmit(t *testing.T) {
	auth := schema.Object(schema.Field("email", schema.String().Email()))
	basic := schema.Object(
		schema.Field("name", schema.String().Min(1)),
		schema.Field("age", schema.Int().Min(18)),
	)

	merged := auth.Merge(basic)
	assert.Equal(t, []string{"email", "name", "age"}, merged.Names())
	assert.Equal(t, []string{"email"}, auth.Names(), "merge must not modify the receiver")

	override := merged.Merge(schema.Object(schema.Field("email", schema.String())))
	assert.Equal(t, []string{"email", "name", "age"}, override.Names(), "override keeps position")
	_, err := override.Parse(map[string]any{"email": "not-an-email", "name": "A", "age": 20})
	assert.NoError(t, err)

	step := merged.Pick("age", "email")
	assert.Equal(t, []string{"email", "age"}, step.Names(), "pick keeps declaration order")

	rest := merged.Omit("email")
	assert.Equal(t, []string{"name", "age"}, rest.Names())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, schema.Validate(nil, map[string]any{"x": 1}))
	err := schema.Validate(person(), map[string]any{})
	var issues schema.Issues
	assert.True(t, errors.As(err, &issues))
	assert.Len(t, issues, 2)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestResult_Decode(t *testing.T) {
	type Application struct {
		Name string `form:"name"`
		Age  int    `form:"age"`
	}

	result, err := person().Parse(map[string]any{"name": "Ada", "age": 30})
	require.NoError(t, err)

	var app Application
	require.NoError(t, result.Decode(&app))
	assert.Equal(t, Application{Name: "Ada", Age: 30}, app)
}
