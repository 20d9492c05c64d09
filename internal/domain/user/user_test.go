package user

import (
	"testing"
	"time"
)

func TestAccountAgeDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	u := &User{CreatedAt: now.Add(-72*time.Hour - time.Minute)}
	if got := u.AccountAgeDays(now); got != 3 {
		t.Fatalf("age: got=%d want=3", got)
	}
	if got := (&User{}).AccountAgeDays(now); got != 0 {
		t.Fatalf("zero CreatedAt: got=%d", got)
	}
	var nilUser *User
	if nilUser.AccountAgeDays(now) != 0 || nilUser.IsAdmin() {
		t.Fatalf("nil user should be zero-valued")
	}
}
