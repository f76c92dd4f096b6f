package encoding

import (
	"bytes"
	"testing"
)

func TestUTF8ToLatin1(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"pipe", []byte("pipe")},
		{"café", []byte{'c', 'a', 'f', 0xE9}},
		{"Ślęża", []byte("Sleza")},
		{"Łódź", []byte{'?', 0xF3, 'd', 'z'}},
		{"管道", []byte("??")},
		{"", []byte{}},
	}

	for _, tt := range tests {
		got := UTF8ToLatin1(tt.in)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("UTF8ToLatin1(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLatin1ToUTF8(t *testing.T) {
	if got := Latin1ToUTF8([]byte{'c', 'a', 'f', 0xE9}); got != "café" {
		t.Errorf("Latin1ToUTF8 = %q, want %q", got, "café")
	}
}

func TestFixedString(t *testing.T) {
	field := UTF8ToFixedString("café tube", 80)
	if len(field) != 80 {
		t.Fatalf("field length = %d, want 80", len(field))
	}
	if field[79] != 0 {
		t.Error("field should be null padded")
	}
	if got := FixedStringToUTF8(field); got != "café tube" {
		t.Errorf("FixedStringToUTF8 = %q, want %q", got, "café tube")
	}

	if got := UTF8ToFixedString("abcdef", 4); string(got) != "abcd" {
		t.Errorf("truncated field = %q, want %q", got, "abcd")
	}
	if got := FixedStringToUTF8([]byte("solid   ")); got != "solid" {
		t.Errorf("space padded field = %q, want %q", got, "solid")
	}
}
