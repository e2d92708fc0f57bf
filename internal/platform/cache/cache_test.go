package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetOrComputeMemoizes(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrCompute(context.Background(), c, "k", time.Minute, []string{"t"}, compute)
		if err != nil {
			t.Fatal(err)
		}
		if v != 42 {
			t.Fatalf("v = %d", v)
		}
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestInvalidateForcesRecompute(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	calls := 0
	compute := func(context.Context) (string, error) {
		calls++
		return "v", nil
	}

	if _, err := GetOrCompute(context.Background(), c, "k", time.Minute, []string{"posts"}, compute); err != nil {
		t.Fatal(err)
	}
	c.Invalidate("posts")
	if _, err := GetOrCompute(context.Background(), c, "k", time.Minute, []string{"posts"}, compute); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestInvalidateOnlyNamedTags(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	calls := map[string]int{}
	compute := func(key string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) {
			calls[key]++
			return key, nil
		}
	}

	ctx := context.Background()
	_, _ = GetOrCompute(ctx, c, "a", time.Minute, []string{"posts"}, compute("a"))
	_, _ = GetOrCompute(ctx, c, "b", time.Minute, []string{"views"}, compute("b"))

	c.Invalidate("posts")

	_, _ = GetOrCompute(ctx, c, "a", time.Minute, []string{"posts"}, compute("a"))
	_, _ = GetOrCompute(ctx, c, "b", time.Minute, []string{"views"}, compute("b"))

	if calls["a"] != 2 || calls["b"] != 1 {
		t.Fatalf("calls = %v", calls)
	}
}

func TestInvalidateUnknownTagIsNoop(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	c.Invalidate("never-populated")
	c.Invalidate("never-populated")
}

func TestFallbackToLastKnownGood(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	ctx := context.Background()

	v, err := GetOrCompute(ctx, c, "k", time.Minute, nil, func(context.Context) (string, error) {
		return "good", nil
	})
	if err != nil || v != "good" {
		t.Fatalf("v = %q err = %v", v, err)
	}

	c.InvalidateAll()

	v, err = GetOrCompute(ctx, c, "k", time.Minute, nil, func(context.Context) (string, error) {
		return "", errors.New("upstream down")
	})
	if err != nil {
		t.Fatalf("fallback should swallow the error, got %v", err)
	}
	if v != "good" {
		t.Fatalf("v = %q", v)
	}
}

func TestColdStartFailurePropagates(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	want := errors.New("upstream down")
	_, err := GetOrCompute(context.Background(), c, "k", time.Minute, nil, func(context.Context) (string, error) {
		return "", want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v", err)
	}
}

func TestPeek(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	if _, ok := Peek[string](c, "k"); ok {
		t.Fatal("peek hit on empty cache")
	}

	_, _ = GetOrCompute(context.Background(), c, "k", time.Minute, nil, func(context.Context) (string, error) {
		return "v", nil
	})
	v, ok := Peek[string](c, "k")
	if !ok || v != "v" {
		t.Fatalf("v = %q ok = %v", v, ok)
	}

	// peek respects invalidation
	c.InvalidateAll()
	if _, ok := Peek[string](c, "k"); ok {
		t.Fatal("peek hit after flush")
	}
}
