package content

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"trims whitespace", "  Alice \n", "Alice"},
		{"strips tags", "<script>alert(1)</script>hi", "hi"},
		{"strips markup keeps text", "<b> bold </b>", "bold"},
		{"whitespace only", " \t ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.input); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
