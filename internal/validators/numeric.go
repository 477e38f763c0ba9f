// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"strconv"
	"strings"
)

// validCreditScore accepts integers in the FICO range.
func validCreditScore(text string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return false
	}
	return n >= 300 && n <= 850
}

// validIPAddress rejects degenerate all-zero and all-255 addresses,
// which show up constantly in configs and never identify anyone.
func validIPAddress(text string) bool {
	octets := strings.Split(text, ".")
	if len(octets) != 4 {
		return false
	}
	allZero, allMax := true, true
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 {
			return false
		}
		if n != 0 {
			allZero = false
		}
		if n != 255 {
			allMax = false
		}
	}
	return !allZero && !allMax
}

// validPhone requires 10-15 digits after stripping formatting.
func validPhone(text string) bool {
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10 && digits <= 15
}

// Well-known placeholder account numbers that appear in documentation
// and test fixtures.
var dummyAccounts = map[string]bool{
	"12345678":      true,
	"123456789":     true,
	"1234567890":    true,
	"12345678901":   true,
	"123456789012":  true,
	"01234567":      true,
	"0123456789":    true,
	"9876543210":    true,
	"98765432":      true,
	"1111222233334444": true,
}

// validBankAccount rejects single-repeated-digit strings and known
// dummy sequences.
func validBankAccount(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) == 0 || dummyAccounts[text] {
		return false
	}
	repeated := true
	for i := 1; i < len(text); i++ {
		if text[i] != text[0] {
			repeated = false
			break
		}
	}
	return !repeated
}
