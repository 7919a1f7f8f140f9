/*
Package dsl provides a fluent Go builder for constructing Reel graphs
programmatically, instead of relying on external YAML assets. This is
useful for inline scene scripts, unit tests, and dynamic graph generation
with IDE type-checking.

Example usage:

	g, err := dsl.NewGraph("intro").
		Blocking().
		Param("greeting", domain.TypeString, domain.StringValue("Hello")).
		Say("narrator", "").LineParam("greeting").For(1.5).
		Wait(2).
		CheckVar("door_open").PassTo(3).FailEnd().
		SetVar("visited_intro", domain.IntValue(1)).
		Build()

Node positions are assigned in authoring order; branch targets address
those positions directly.
*/
package dsl
