package models

import "testing"

func TestChatType(t *testing.T) {
	cases := []struct {
		text, image string
		want        string
	}{
		{"hello", "", ChatTypeText},
		{"", "/uploads/a.png", ChatTypeImage},
		{"look", "/uploads/a.png", ChatTypeTextImage},
		{"", "", ChatTypeText},
	}
	for _, tc := range cases {
		if got := ChatType(tc.text, tc.image); got != tc.want {
			t.Errorf("ChatType(%q, %q) = %q, want %q", tc.text, tc.image, got, tc.want)
		}
	}
}
