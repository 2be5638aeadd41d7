package vietqr

import (
	"strings"
	"testing"
)

func TestNormalizeAsciiAlnum(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0123456789", "0123456789"},
		{"abc123", "ABC123"},
		{"  0011-2233  ", "00112233"},
		{"Nguyễn Văn An", "NGUYENVANAN"},
		{"đặng", "DANG"},
		{"日本語", ""},
	}
	for _, tc := range cases {
		if got := NormalizeAsciiAlnum(tc.in, ""); got != tc.want {
			t.Errorf("NormalizeAsciiAlnum(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeAsciiAlnumCapsLength(t *testing.T) {
	in := strings.Repeat("A", 40)
	if got := NormalizeAsciiAlnum(in, ""); len(got) != 25 {
		t.Errorf("expected 25-char cap, got %d chars", len(got))
	}
}

func TestNormalizeAsciiAlnumFallback(t *testing.T) {
	if got := NormalizeAsciiAlnum("~~~", "lixi"); got != "LIXI" {
		t.Errorf("fallback not normalized: %q", got)
	}
	if got := NormalizeAsciiAlnum("", ""); got != "" {
		t.Errorf("empty input and fallback should stay empty, got %q", got)
	}
}

func TestNormalizeTransferNote(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CHUC MUNG NAM MOI", "CHUC MUNG NAM MOI"},
		{"Chúc mừng năm mới", "CHUC MUNG NAM MOI"},
		{"li  xi   2026", "LI XI 2026"},
		{"keep-dashes - ok", "KEEP-DASHES - OK"},
		{"a@b#c", "A B C"},
		{"  padded  ", "PADDED"},
	}
	for _, tc := range cases {
		if got := NormalizeTransferNote(tc.in, ""); got != tc.want {
			t.Errorf("NormalizeTransferNote(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTransferNoteCapsLength(t *testing.T) {
	in := strings.Repeat("AB ", 30)
	got := NormalizeTransferNote(in, "")
	if len(got) > 50 {
		t.Errorf("note exceeds 50 chars: %d", len(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("truncated note has trailing space: %q", got)
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly(" 970-436 x9"); got != "9704369" {
		t.Errorf("DigitsOnly = %q, want 9704369", got)
	}
	if got := DigitsOnly("abc"); got != "" {
		t.Errorf("DigitsOnly of letters = %q, want empty", got)
	}
}
