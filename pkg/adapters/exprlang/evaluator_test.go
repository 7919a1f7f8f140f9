package exprlang_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelvm/reel/pkg/adapters/exprlang"
)

func TestEvaluator_Conditions(t *testing.T) {
	e := exprlang.New()
	ctx := context.Background()
	env := map[string]any{
		"score":     int64(42),
		"name":      "lara",
		"door_open": true,
		"health":    0.5,
	}

	cases := []struct {
		expr string
		want bool
	}{
		{"score > 10", true},
		{"score > 100", false},
		{`name == "lara"`, true},
		{"door_open", true},
		{"door_open && score >= 42", true},
		{"!door_open || health < 0.1", false},
		{"score", true},             // non-zero number coerces to true
		{"health - 0.5", false},     // zero coerces to false
		{"name", true},              // non-empty string coerces to true
		{"missing_variable", false}, // undefined resolves to nil
		{`(missing_variable ?? "x") != ""`, true},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := e.Evaluate(ctx, tc.expr, env)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluator_Errors(t *testing.T) {
	e := exprlang.New()
	ctx := context.Background()

	_, err := e.Evaluate(ctx, "", nil)
	assert.Error(t, err, "empty condition is an authoring mistake")

	_, err = e.Evaluate(ctx, "score >", nil)
	assert.Error(t, err, "syntax errors surface at evaluation")

	_, err = e.Evaluate(ctx, "[1, 2, 3]", nil)
	assert.Error(t, err, "non-scalar results cannot branch")

	_, err = e.Evaluate(ctx, `missing ?? "x" != ""`, nil)
	assert.Error(t, err, "expr requires parentheses when coalescing mixes with comparison")
}

func TestEvaluator_NilEnv(t *testing.T) {
	e := exprlang.New()
	got, err := e.Evaluate(context.Background(), "1 == 1", nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluator_CacheReuse(t *testing.T) {
	e := exprlang.New()
	ctx := context.Background()

	// Same expression, different environments: the cached program must not
	// capture the first env.
	got, err := e.Evaluate(ctx, "n > 5", map[string]any{"n": int64(10)})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = e.Evaluate(ctx, "n > 5", map[string]any{"n": int64(1)})
	require.NoError(t, err)
	assert.False(t, got)
}
