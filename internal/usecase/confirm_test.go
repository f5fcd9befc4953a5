package usecase

import "testing"

func TestConfirmMatcherDefaults(t *testing.T) {
	m := NewConfirmMatcher(nil, nil)

	cases := []struct {
		text string
		want Verdict
	}{
		{"yes", VerdictYes},
		{" YES ", VerdictYes},
		{"ok!", VerdictYes},
		{"Sure", VerdictYes},
		{"no", VerdictNo},
		{"Nope.", VerdictNo},
		{"cancel", VerdictNo},
		{"", VerdictUnrecognized},
		{"maybe", VerdictUnrecognized},
		{"yes please", VerdictUnrecognized},
	}

	for _, tc := range cases {
		if got := m.Match(tc.text); got != tc.want {
			t.Fatalf("Match(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestConfirmMatcherCustomSynonyms(t *testing.T) {
	m := NewConfirmMatcher([]string{"نعم", "ايه"}, []string{"لا"})

	if m.Match("نعم") != VerdictYes {
		t.Fatal("expected custom affirmative to match")
	}
	if m.Match("لا") != VerdictNo {
		t.Fatal("expected custom negative to match")
	}
	// Custom sets replace the defaults entirely.
	if m.Match("yes") != VerdictUnrecognized {
		t.Fatal("expected default synonyms to be replaced")
	}
}
