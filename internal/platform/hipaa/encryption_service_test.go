package hipaa

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewFieldCipher_ValidKey(t *testing.T) {
	c, err := NewFieldCipher(hex.EncodeToString(generateTestKey(t)), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Enabled() {
		t.Fatal("expected encryption to be enabled")
	}
}

func TestNewFieldCipher_EmptyKeyDisables(t *testing.T) {
	c, err := NewFieldCipher("", zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Enabled() {
		t.Fatal("expected encryption to be disabled")
	}
}

func TestNewFieldCipher_BadKeys(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		errSub string
	}{
		{"not hex", strings.Repeat("zz", 32), "not valid hex"},
		{"short", hex.EncodeToString(make([]byte, 16)), "must be 32 bytes"},
		{"long", hex.EncodeToString(make([]byte, 48)), "must be 32 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFieldCipher(tt.key, zerolog.Nop())
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}
}

func TestFieldCipher_SealOpen(t *testing.T) {
	c, err := NewFieldCipher(hex.EncodeToString(generateTestKey(t)), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	history := "atrial fibrillation"
	sealed, err := c.Seal(&history)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if sealed == nil || *sealed == history {
		t.Fatal("expected sealed value to differ")
	}
	opened, err := c.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if *opened != history {
		t.Errorf("got %q, want %q", *opened, history)
	}

	if v, _ := c.Seal(nil); v != nil {
		t.Error("nil should stay nil")
	}
}

func TestFieldCipher_DisabledPassesThrough(t *testing.T) {
	for _, c := range []*FieldCipher{nil, {}} {
		v := "none"
		got, err := c.Seal(&v)
		if err != nil || got != &v {
			t.Errorf("Seal on disabled cipher changed value: %v, %v", got, err)
		}
		got, err = c.Open(&v)
		if err != nil || got != &v {
			t.Errorf("Open on disabled cipher changed value: %v, %v", got, err)
		}
	}
}
