/*
Package runner fills forms interactively.

A Runner walks the fields of a formstate.Form in schema order and asks for
each one through a PromptDriver. After every pass the form (or the current
wizard step) is validated; fields that failed are asked again with their
message shown as help. Progress is snapshotted after each step and when the
user stops, so the next Fill on the same key resumes where they left off.

# Drivers

  - SurveyDriver: interactive terminal prompts (survey).
  - LineDriver: one answer per line, for pipes and scripts.
  - JSONDriver: JSON Lines prompts and answers, for programmatic hosts.

# Usage

	form, _ := formstate.Open(ctx, s, formstate.WithStore(store), formstate.WithKey("signup"))
	r := runner.NewRunner(runner.NewSurveyDriver(), runner.WithSignals(true))

	result, err := r.Fill(ctx, form)
	if errors.Is(err, runner.ErrAborted) {
		log.Println("progress saved")
	}
*/
package runner
