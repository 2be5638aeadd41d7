// Package vietqr builds NAPAS VietQR bank-transfer payloads: an EMVCo
// tag-length-value string with a CRC-16/CCITT-FALSE checksum, consumable
// by Vietnamese banking apps. Field tags and nesting order are fixed by
// the scheme and must match byte for byte.
package vietqr

import (
	"errors"
	"fmt"
	"strconv"
)

// Fixed field values of the QRIBFTTA (transfer-to-account) scheme.
const (
	guidNapas          = "A000000727"
	serviceCode        = "QRIBFTTA"
	payloadFormat      = "01"
	initiationDynamic  = "12"
	currencyVND        = "704"
	countryCodeVN      = "VN"
	crcTagLengthPrefix = "6304"
)

var (
	// ErrInvalidInput is a caller validation failure: bank fields that
	// sanitize to empty or a non-positive amount.
	ErrInvalidInput = errors.New("invalid payout input")

	// ErrEncoding flags a fatal internal defect: an oversized TLV value
	// or non-ASCII output. Never caused by user input once sanitization
	// has run.
	ErrEncoding = errors.New("vietqr encoding invariant violated")
)

// Input carries the payout details for one claim.
type Input struct {
	BankBin       string
	BankAccountNo string
	AmountVnd     int64
	TransferNote  string
}

type field struct {
	id    string
	value string
}

// encodeField renders one TLV: the two-digit tag, the value's byte length
// as a two-digit decimal, then the value. Lengths beyond 99 bytes cannot
// be represented and are a logic error.
func encodeField(f field) (string, error) {
	n := len(f.value)
	if n > 99 {
		return "", fmt.Errorf("%w: field %s value is %d bytes", ErrEncoding, f.id, n)
	}
	return f.id + fmt.Sprintf("%02d", n) + f.value, nil
}

func encodeFields(fields []field) (string, error) {
	var out string
	for _, f := range fields {
		enc, err := encodeField(f)
		if err != nil {
			return "", err
		}
		out += enc
	}
	return out, nil
}

// CRC16CcittFalse computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF,
// no reflection) over the payload and renders it as four uppercase hex
// digits.
func CRC16CcittFalse(payload string) string {
	crc := uint16(0xffff)
	for i := 0; i < len(payload); i++ {
		crc ^= uint16(payload[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}

// BuildPayload sanitizes the input and assembles the checksummed payload
// string. Sanitization always runs; invalid input fails with
// ErrInvalidInput and no payload is emitted.
func BuildPayload(in Input) (string, error) {
	bankBin := DigitsOnly(in.BankBin)
	bankAccountNo := NormalizeAsciiAlnum(in.BankAccountNo, "")
	transferNote := NormalizeTransferNote(in.TransferNote, "LIXI")

	if bankBin == "" || bankAccountNo == "" {
		return "", fmt.Errorf("%w: bank bin and account number are required", ErrInvalidInput)
	}
	if in.AmountVnd <= 0 {
		return "", fmt.Errorf("%w: amount must be a positive integer", ErrInvalidInput)
	}

	receiverInfo, err := encodeFields([]field{
		{"00", bankBin},
		{"01", bankAccountNo},
	})
	if err != nil {
		return "", err
	}

	merchantAccountInfo, err := encodeFields([]field{
		{"00", guidNapas},
		{"01", receiverInfo},
		{"02", serviceCode},
	})
	if err != nil {
		return "", err
	}

	additionalData, err := encodeFields([]field{{"08", transferNote}})
	if err != nil {
		return "", err
	}

	body, err := encodeFields([]field{
		{"00", payloadFormat},
		{"01", initiationDynamic},
		{"38", merchantAccountInfo},
		{"53", currencyVND},
		{"54", strconv.FormatInt(in.AmountVnd, 10)},
		{"58", countryCodeVN},
		{"62", additionalData},
	})
	if err != nil {
		return "", err
	}

	// The checksum covers the body plus the CRC field's own tag/length.
	withPrefix := body + crcTagLengthPrefix
	payload := withPrefix + CRC16CcittFalse(withPrefix)

	if !isASCII(payload) {
		return "", fmt.Errorf("%w: payload contains non-ASCII bytes", ErrEncoding)
	}

	return payload, nil
}
