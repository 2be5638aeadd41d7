package vietqr

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildPayloadGoldenVector(t *testing.T) {
	payload, err := BuildPayload(Input{
		BankBin:       "970436",
		BankAccountNo: "0123456789",
		AmountVnd:     50000,
		TransferNote:  "CHUC MUNG NAM MOI",
	})
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}

	want := "00020101021238540010A00000072701240006970436011001234567890208QRIBFTTA53037045405500005802VN62210817CHUC MUNG NAM MOI630465C8"
	if payload != want {
		t.Errorf("payload mismatch:\n got %q\nwant %q", payload, want)
	}
}

func TestBuildPayloadCRCRoundTrip(t *testing.T) {
	payload, err := BuildPayload(Input{
		BankBin:       "970422",
		BankAccountNo: "9704229999",
		AmountVnd:     123000,
		TransferNote:  "LI XI TET",
	})
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}

	// Recomputing the CRC over everything before the last four hex digits
	// must reproduce those digits.
	if len(payload) < 8 {
		t.Fatalf("payload too short: %q", payload)
	}
	base := payload[:len(payload)-4]
	if !strings.HasSuffix(base, "6304") {
		t.Fatalf("payload does not end with CRC field prefix: %q", payload)
	}
	if got, want := CRC16CcittFalse(base), payload[len(payload)-4:]; got != want {
		t.Errorf("CRC round-trip mismatch: recomputed %s, embedded %s", got, want)
	}
}

func TestBuildPayloadStructure(t *testing.T) {
	payload, err := BuildPayload(Input{
		BankBin:       "970415",
		BankAccountNo: "0011223344",
		AmountVnd:     10000,
		TransferNote:  "CHUC MUNG NAM MOI",
	})
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}

	if !strings.HasPrefix(payload, "000201"+"010212") {
		t.Errorf("payload missing format/initiation header: %q", payload)
	}
	for _, fragment := range []string{"A000000727", "QRIBFTTA", "5303704", "540510000", "5802VN"} {
		if !strings.Contains(payload, fragment) {
			t.Errorf("payload missing %q: %q", fragment, payload)
		}
	}
	for i := 0; i < len(payload); i++ {
		if payload[i] > 0x7f {
			t.Fatalf("payload contains non-ASCII byte at %d", i)
		}
	}
}

func TestBuildPayloadSanitizesInput(t *testing.T) {
	// Diacritics fold away, the bin keeps only digits, the account only
	// uppercase alphanumerics.
	payload, err := BuildPayload(Input{
		BankBin:       " 970-436 ",
		BankAccountNo: "01234 abcde",
		AmountVnd:     50000,
		TransferNote:  "Chúc mừng năm mới",
	})
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	if !strings.Contains(payload, "970436") {
		t.Errorf("bank bin not reduced to digits: %q", payload)
	}
	if !strings.Contains(payload, "01234ABCDE") {
		t.Errorf("account not normalized: %q", payload)
	}
	if !strings.Contains(payload, "CHUC MUNG NAM MOI") {
		t.Errorf("transfer note diacritics not folded: %q", payload)
	}
}

func TestBuildPayloadRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		in   Input
	}{
		{"empty bin", Input{BankBin: "", BankAccountNo: "0123456789", AmountVnd: 1000}},
		{"bin sanitizes to empty", Input{BankBin: "abc", BankAccountNo: "0123456789", AmountVnd: 1000}},
		{"empty account", Input{BankBin: "970436", BankAccountNo: "~~~", AmountVnd: 1000}},
		{"zero amount", Input{BankBin: "970436", BankAccountNo: "0123456789", AmountVnd: 0}},
		{"negative amount", Input{BankBin: "970436", BankAccountNo: "0123456789", AmountVnd: -500}},
	}

	for _, tc := range cases {
		if _, err := BuildPayload(tc.in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestBuildPayloadEmptyNoteFallsBack(t *testing.T) {
	payload, err := BuildPayload(Input{
		BankBin:       "970436",
		BankAccountNo: "0123456789",
		AmountVnd:     20000,
		TransferNote:  "!!!",
	})
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	if !strings.Contains(payload, "0804LIXI") {
		t.Errorf("expected fallback note LIXI in payload: %q", payload)
	}
}

func TestCRC16CcittFalseKnownValues(t *testing.T) {
	// Standard check value for CRC-16/CCITT-FALSE.
	if got := CRC16CcittFalse("123456789"); got != "29B1" {
		t.Errorf("CRC of 123456789 = %s, want 29B1", got)
	}
	if got := CRC16CcittFalse(""); got != "FFFF" {
		t.Errorf("CRC of empty string = %s, want FFFF", got)
	}
}

func TestEncodeFieldRejectsOversizedValue(t *testing.T) {
	_, err := encodeField(field{"08", strings.Repeat("A", 100)})
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("expected ErrEncoding for 100-byte value, got %v", err)
	}
}
