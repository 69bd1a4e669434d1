package checksum

import "testing"

func TestOf_Stable(t *testing.T) {
	if Of("Goals:\nShip") != Of("Goals:\nShip") {
		t.Error("same text should give the same tag")
	}
	if Of("a") == Of("b") {
		t.Error("different text should give different tags")
	}
	if len(Of("")) != 64 {
		t.Errorf("tag length = %d, want 64", len(Of("")))
	}
}

func TestMatches(t *testing.T) {
	text := "Budget:\n$5"
	tag := Of(text)
	cases := []struct {
		tag  string
		want bool
	}{
		{tag, true},
		{`"` + tag + `"`, true},
		{" " + tag + " ", true},
		{"", true},
		{"*", true},
		{"stale", false},
		{Of("Budget:\n$6"), false},
	}
	for _, tc := range cases {
		if got := Matches(tc.tag, text); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.tag, got, tc.want)
		}
	}
}
