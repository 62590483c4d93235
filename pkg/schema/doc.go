// Package schema provides the declarative validation contract forms are built from.
//
// A Schema is an ordered set of named fields. Each field has a Type carrying an
// explicit Kind (text, number or boolean), optional constraints, an optional
// default and an optional description. Optional and Default are wrapper layers
// around an inner type.
//
// Basic usage:
//
//	basicInfo := schema.Object(
//	    schema.Field("name", schema.String().Min(1)),
//	    schema.Field("age", schema.Int().Min(18).Max(99).Default(18)),
//	    schema.Field("phone", schema.String().Min(10).Describe("tel")),
//	    schema.Field("email", schema.String().Email().Optional()),
//	)
//
//	result, err := basicInfo.Parse(map[string]any{"name": "Ada", "age": 30})
//	if issues, ok := schema.AsIssues(err); ok {
//	    // issues[0].Path, issues[0].Message
//	}
//
// Schemas compose with Merge, Pick and Omit, and carry cross-field checks with Refine:
//
//	register := schema.Object(
//	    schema.Field("password", schema.String().Min(6).Describe("password")),
//	    schema.Field("confirm", schema.String().Describe("password")),
//	).Refine(func(r schema.Result) bool {
//	    return r["password"] == r["confirm"]
//	}, "Passwords don't match", "confirm")
//
// Schemas can also be loaded from YAML or JSON documents with LoadFile.
package schema
