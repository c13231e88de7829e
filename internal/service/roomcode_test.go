package service

import (
	"strings"
	"testing"
)

func TestGenerateRoomID(t *testing.T) {
	id, err := GenerateRoomID()
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != roomIDLength {
		t.Errorf("len = %d, want %d", len(id), roomIDLength)
	}
	for _, c := range id {
		if !strings.ContainsRune(roomIDAlphabet, c) {
			t.Errorf("unexpected character %q in room id %q", c, id)
		}
	}
}

func TestGenerateRoomID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateRoomID()
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("duplicate room id %q after %d generations", id, i)
		}
		seen[id] = true
	}
}
