package roster

import (
	"reflect"
	"testing"
)

func TestCleanName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Dr. John Smith, M.D.", "Dr John Smith MD"},
		{"  Jane   Doe  ", "Jane Doe"},
		{"O'Brien, Patrick", "OBrien Patrick"},
		{"Smith-Jones Mary", "SmithJones Mary"},
		{"12345", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanName(tc.in); got != tc.want {
			t.Errorf("CleanName(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseNames_DropsSingleTokens(t *testing.T) {
	got := ParseNames([]string{"John Smith", "Cher", "", "Mary Jane Watson"})
	want := []Entry{{Name: "John Smith"}, {Name: "Mary Jane Watson"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseFile(t *testing.T) {
	t.Run("comma_state", func(t *testing.T) {
		got := ParseFile("John Smith, NY\nJane Doe, ca\n")
		want := []Entry{{Name: "John Smith", State: "NY"}, {Name: "Jane Doe", State: "CA"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("paren_state", func(t *testing.T) {
		got := ParseFile("John Smith (TX)")
		want := []Entry{{Name: "John Smith", State: "TX"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("bare_names_and_blanks", func(t *testing.T) {
		got := ParseFile("\nJohn Smith\n\n   \nJane Doe\n")
		want := []Entry{{Name: "John Smith"}, {Name: "Jane Doe"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("rtf_wrapped", func(t *testing.T) {
		content := `{\rtf1\ansi John Smith\par Jane Doe\par}`
		got := ParseFile(content)
		if len(got) != 2 {
			t.Fatalf("got %d entries, want 2: %+v", len(got), got)
		}
		if got[0].Name != "John Smith" || got[1].Name != "Jane Doe" {
			t.Errorf("got %+v", got)
		}
	})
}

func TestParseNPIs(t *testing.T) {
	got := ParseNPIs("1234567890\n  9876543210 trailing text\nnot an npi\n\n12345\n1234567890")
	want := []string{"1234567890", "9876543210", "1234567890"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
