package models

import "testing"

func TestRoundAverage(t *testing.T) {
	cases := []struct {
		total, count int
		want         float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{5, 1, 5.0},
		{9, 2, 4.5},
		{13, 3, 4.3},
		{14, 3, 4.7},
		{22, 5, 4.4},
	}
	for _, tc := range cases {
		if got := RoundAverage(tc.total, tc.count); got != tc.want {
			t.Errorf("RoundAverage(%d, %d) = %v, want %v", tc.total, tc.count, got, tc.want)
		}
	}
}

func TestLegacyAggregate(t *testing.T) {
	both := &User{
		Roles:               []string{RoleUser, RoleStuker},
		AvgRatingAsUser:     3.0,
		CountRatingAsUser:   2,
		AvgRatingAsStuker:   4.8,
		CountRatingAsStuker: 12,
	}
	if avg, count := both.LegacyAggregate(); avg != 4.8 || count != 12 {
		t.Errorf("stuker holder: got %v/%d, want stuker aggregate 4.8/12", avg, count)
	}

	customerOnly := &User{
		Roles:             []string{RoleUser},
		AvgRatingAsUser:   3.0,
		CountRatingAsUser: 2,
	}
	if avg, count := customerOnly.LegacyAggregate(); avg != 3.0 || count != 2 {
		t.Errorf("customer only: got %v/%d, want 3.0/2", avg, count)
	}
}

func TestHasRole(t *testing.T) {
	user := &User{Roles: []string{RoleUser}}
	if !user.HasRole(RoleUser) {
		t.Error("expected role user")
	}
	if user.HasRole(RoleStuker) {
		t.Error("unexpected role stuker")
	}
}
