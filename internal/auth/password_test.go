package auth

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hash, "correct horse battery"); err != nil {
		t.Errorf("ComparePassword rejected the right password: %v", err)
	}
	if err := ComparePassword(hash, "wrong password"); err == nil {
		t.Error("ComparePassword accepted the wrong password")
	}
}

func TestHashPasswordDefaultsCost(t *testing.T) {
	hash, err := HashPassword("correct horse battery", 0)
	if err != nil {
		t.Fatalf("HashPassword with zero cost: %v", err)
	}
	if err := ComparePassword(hash, "correct horse battery"); err != nil {
		t.Errorf("ComparePassword: %v", err)
	}
}
