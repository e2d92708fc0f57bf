package github

import "testing"

func TestHasLabel(t *testing.T) {
	t.Parallel()

	is := Issue{Labels: []Label{{Name: "Published"}, {Name: "go"}}}
	if !is.HasLabel("published") {
		t.Fatal("label match must be case-insensitive")
	}
	if !is.HasLabel("go") {
		t.Fatal("exact match failed")
	}
	if is.HasLabel("NOW") {
		t.Fatal("unexpected label")
	}
}
