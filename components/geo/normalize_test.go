package geo

import "testing"

func TestNormalize_FoldsArabicVariants(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "arabic yeh", input: "آذربايجان غربي", want: "اذربایجان غربی"},
		{name: "arabic kaf", input: "كرمانشاه", want: "کرمانشاه"},
		{name: "alef madda", input: "آذربایجان شرقی", want: "اذربایجان شرقی"},
		{name: "trailing space", input: "تهران ", want: "تهران"},
		{name: "nbsp rune", input: "خراسان رضوی", want: "خراسان رضوی"},
		{name: "nbsp entity", input: "سیستان&nbsp;و بلوچستان", want: "سیستان و بلوچستان"},
		{name: "upper entity", input: "a&NBSP;b", want: "a b"},
		{name: "latin lowercased", input: "  Tehran ", want: "tehran"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalize_KeepsInternalWhitespaceAndSpelling(t *testing.T) {
	if got := Normalize("چهارمحال  و بختیاری"); got != "چهارمحال  و بختیاری" {
		t.Fatalf("expected internal double space kept, got %q", got)
	}
	if Normalize("کهگیلوییه و بویراحمد") == Normalize("کهگیلویه و بویراحمد") {
		t.Fatalf("expected different spellings to stay distinct")
	}
}

func TestNormalize_TrimsOnlyASCIIWhitespace(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "\t تهران \r\n", want: "تهران"},
		{input: "\x00قم\x0b", want: "قم"},
		{input: "\u00a0قم\u00a0", want: "قم"},
		{input: "\u3000قم", want: "\u3000قم"},
		{input: "قم\u2003", want: "قم\u2003"},
		{input: "\u0085فارس", want: "\u0085فارس"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.input); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"تهران ",
		"آذربايجان غربي",
		"كرمان",
		"&NBSP;&nbsp;آ ي ك ",
		"&nb&nbsp;sp;",
		"Ünïcode MIXED آب",
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}
