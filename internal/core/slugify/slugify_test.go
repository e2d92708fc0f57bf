package slugify

import "testing"

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  multiple   spaces ", "multiple-spaces"},
		{"Already-A-Slug", "already-a-slug"},
		{"Café au lait", "cafe-au-lait"},
		{"naïve résumé", "naive-resume"},
		{"100 Days of Go", "100-days-of-go"},
		{"trailing punctuation...", "trailing-punctuation"},
		{"---leading---", "leading"},
		{"!!!", ""},
		{"", ""},
		{"C'est l'été", "c-est-l-ete"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"Hello, World!", "Café au lait", "plain"} {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Fatalf("Slugify(Slugify(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestWithNumber(t *testing.T) {
	t.Parallel()

	if got := WithNumber("my-series", 42); got != "my-series-42" {
		t.Fatalf("got %q", got)
	}
	if got := WithNumber("", 42); got != "42" {
		t.Fatalf("got %q", got)
	}
}
