/*
Package formstate is a schema-driven form state engine.

A declarative schema (field name, kind, constraints, optional default and
description) is turned into an editable, serializable form state. Changes flow
through a reducer, validation reports typed results or per-field messages, and
snapshots let a half-filled form survive reloads.

# Concept

The schema is the single source of truth. Introspection derives the initial
state: numbers start at 0 and render as "number", booleans start unanswered and
render as "checkbox", text starts empty. A declared default replaces the
initial value and a description replaces the presentation type. Every mutation
produces a new FormState, so hosts can compare states by identity.

# Key Features

  - Typed values: a checkbox distinguishes "not answered" from "answered false".
  - Step validation: validate a Pick of the schema for one step of a wizard.
  - Pluggable persistence: memory, file, Redis and SQLite stores, with
    encryption and masking middleware.
  - Observability: lifecycle hooks, Prometheus metrics and structured logs.
  - Hosts: a JSON/SSE HTTP API, an MCP server for agents and a terminal filler.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/formstate"
		"github.com/aretw0/formstate/pkg/adapters/memory"
		"github.com/aretw0/formstate/pkg/schema"
	)

	func main() {
		ctx := context.Background()
		signup := schema.Object(
			schema.Field("name", schema.String().Min(1)),
			schema.Field("age", schema.Int().Min(18)),
		)

		form, err := formstate.Open(ctx, signup,
			formstate.WithStore(memory.NewStore()),
			formstate.WithKey("signup"),
		)
		if err != nil {
			log.Fatal(err)
		}

		_ = form.OnChange(ctx, formstate.ChangeEvent{Name: "name", Value: "Ada"})
		_ = form.OnChange(ctx, formstate.ChangeEvent{Name: "age", Value: "30", Type: "number"})
		_ = form.Snapshot(ctx)

		outcome := form.Validate(ctx)
		if outcome.Valid() {
			log.Println(outcome.Result)
		}
	}
*/
package formstate
