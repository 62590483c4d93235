package formstate_test

import (
	"context"
	"fmt"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/pkg/schema"
)

func ExampleForm_Validate() {
	ctx := context.Background()
	signup := schema.Object(
		schema.Field("name", schema.String().Min(1)),
		schema.Field("age", schema.Int().Min(18)),
		schema.Field("newsletter", schema.Bool().Default(false)),
	)

	form, _ := formstate.New(signup)
	_ = form.OnChange(ctx, formstate.ChangeEvent{Name: "age", Value: "16", Type: "number"})

	outcome := form.Validate(ctx)
	fmt.Println(outcome.Errors["name"])
	fmt.Println(outcome.Errors["age"])

	_ = form.OnChange(ctx, formstate.ChangeEvent{Name: "name", Value: "Ada"})
	_ = form.OnChange(ctx, formstate.ChangeEvent{Name: "age", Value: "36", Type: "number"})

	outcome = form.Validate(ctx)
	fmt.Println(outcome.Valid(), outcome.Result["name"], outcome.Result["age"], outcome.Result["newsletter"])
	// Output:
	// String must contain at least 1 character(s)
	// Number must be greater than or equal to 18
	// true Ada 36 false
}

func ExampleForm_State() {
	s := schema.Object(
		schema.Field("email", schema.String().Email()),
		schema.Field("password", schema.String().Min(8).Describe("password")),
		schema.Field("terms", schema.Bool()),
	)

	form, _ := formstate.New(s)
	for name, f := range form.State().All() {
		fmt.Printf("%s: %s %q\n", name, f.Config.Type, f.Value.String())
	}
	// Output:
	// email: text ""
	// password: password ""
	// terms: checkbox ""
}
