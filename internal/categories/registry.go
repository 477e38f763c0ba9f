// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package categories defines the supported PII categories and their
// detection metadata: deterministic patterns, context clues, default
// replacement tags, and the descriptions handed to the generative
// detector.
package categories

import (
	"regexp"
	"sort"
	"strings"
)

// Category identifies one kind of PII.
type Category int

const (
	Unknown Category = iota
	Name
	Email
	Phone
	Address
	SSN
	CreditCard
	Date
	DriversLicense
	IPAddress
	URL
	CreditScore
	BankAccount
	ZipCode
	Passport
	EmployeeID
	MedicalRecord
	Biometric

	// PossibleID is synthesized by gap validation only. It is never a
	// valid request category.
	PossibleID
)

// Definition carries everything the pipeline knows about a category.
// Categories without patterns are detector-only: they depend on context
// the deterministic pass cannot see.
type Definition struct {
	ID          Category
	Key         string // wire identifier
	Tag         string // default replacement
	Patterns    []*regexp.Regexp
	Clues       []string // lowercase context labels that precede values
	Description string   // handed to the generative detector
}

var registry = map[Category]Definition{
	Name: {
		ID:  Name,
		Key: "name",
		Tag: "[REDACTED_NAME]",
		Patterns: []*regexp.Regexp{
			// Capitalized-token runs of 2-4 words, middle initials allowed.
			// The matcher expands each run into candidate windows.
			regexp.MustCompile(`\b[A-Z][a-zA-Z'-]+(?:\s+(?:[A-Z]\.|[A-Z][a-zA-Z'-]+)){1,3}\b`),
		},
		Clues:       []string{"name:", "name is", "patient:", "customer:", "mr.", "mrs.", "ms.", "dr."},
		Description: "full personal names of individuals",
	},
	Email: {
		ID:  Email,
		Key: "email",
		Tag: "[REDACTED_EMAIL]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		},
		Clues:       []string{"email:", "e-mail:", "email is", "contact at"},
		Description: "email addresses",
	},
	Phone: {
		ID:  Phone,
		Key: "phone",
		Tag: "[REDACTED_PHONE]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		},
		Clues:       []string{"phone:", "phone is", "call", "tel:", "mobile:", "cell:"},
		Description: "telephone numbers in any format",
	},
	Address: {
		ID:          Address,
		Key:         "address",
		Tag:         "[REDACTED_ADDRESS]",
		Clues:       []string{"address:", "lives at", "located at", "residing at", "street"},
		Description: "physical street addresses",
	},
	SSN: {
		ID:  SSN,
		Key: "ssn",
		Tag: "[REDACTED_SSN]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			regexp.MustCompile(`\b\d{3}\.\d{2}\.\d{4}\b`),
			regexp.MustCompile(`\b\d{3}\s\d{2}\s\d{4}\b`),
		},
		Clues:       []string{"ssn:", "ssn is", "social security", "social security number"},
		Description: "US social security numbers",
	},
	CreditCard: {
		ID:  CreditCard,
		Key: "credit_card",
		Tag: "[REDACTED_CREDIT_CARD]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`),
		},
		Clues:       []string{"card:", "card number", "credit card", "visa", "mastercard", "amex"},
		Description: "credit or debit card numbers",
	},
	Date: {
		ID:  Date,
		Key: "date",
		Tag: "[REDACTED_DATE]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:0?[1-9]|1[0-2])[/-](?:0?[1-9]|[12]\d|3[01])[/-](?:19|20)?\d{2}\b`),
			regexp.MustCompile(`\b(?:19|20)\d{2}-(?:0[1-9]|1[0-2])-(?:0[1-9]|[12]\d|3[01])\b`),
			regexp.MustCompile(`\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{1,2},?\s+(?:19|20)\d{2}\b`),
		},
		Clues:       []string{"date:", "dob:", "born on", "date of birth", "birthday"},
		Description: "calendar dates, including dates of birth",
	},
	DriversLicense: {
		ID:  DriversLicense,
		Key: "drivers_license",
		Tag: "[REDACTED_DRIVERS_LICENSE]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b[A-Z]{1,2}\d{6,8}\b`),
		},
		Clues:       []string{"license:", "driver's license", "drivers license", "dl number", "dl#"},
		Description: "driver's license numbers",
	},
	IPAddress: {
		ID:  IPAddress,
		Key: "ip_address",
		Tag: "[REDACTED_IP_ADDRESS]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\b`),
		},
		Clues:       []string{"ip:", "ip address", "from ip"},
		Description: "IP addresses",
	},
	URL: {
		ID:  URL,
		Key: "url",
		Tag: "[REDACTED_URL]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bhttps?://[^\s<>"']+`),
			regexp.MustCompile(`\bwww\.[A-Za-z0-9.-]+\.[A-Za-z]{2,}[^\s<>"']*`),
		},
		Clues:       []string{"url:", "website:", "site:", "profile at"},
		Description: "web addresses and URLs",
	},
	CreditScore: {
		ID:  CreditScore,
		Key: "credit_score",
		Tag: "[REDACTED_CREDIT_SCORE]",
		Patterns: []*regexp.Regexp{
			// Clue-anchored: group 1 is the payload, the label survives.
			regexp.MustCompile(`(?i)\b(?:credit\s*score|fico(?:\s*score)?)\s*(?:is|of|:)?\s*(\d{3})\b`),
		},
		Clues:       []string{"credit score", "fico score", "fico"},
		Description: "credit scores (three digit values near a credit score label)",
	},
	BankAccount: {
		ID:  BankAccount,
		Key: "bank_account",
		Tag: "[REDACTED_BANK_ACCOUNT]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:account|acct)\s*(?:number|no\.?|#)?\s*[:#]?\s*(\d{8,17})\b`),
		},
		Clues:       []string{"account number", "account:", "acct", "routing number", "iban"},
		Description: "bank account numbers",
	},
	ZipCode: {
		ID:  ZipCode,
		Key: "zip_code",
		Tag: "[REDACTED_ZIP_CODE]",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`),
		},
		Clues:       []string{"zip:", "zip code", "postal code"},
		Description: "US ZIP codes",
	},
	Passport: {
		ID:          Passport,
		Key:         "passport",
		Tag:         "[REDACTED_PASSPORT]",
		Clues:       []string{"passport:", "passport number", "passport no"},
		Description: "passport numbers",
	},
	EmployeeID: {
		ID:          EmployeeID,
		Key:         "employee_id",
		Tag:         "[REDACTED_EMPLOYEE_ID]",
		Clues:       []string{"employee id", "employee number", "emp id", "badge number"},
		Description: "employee identification numbers",
	},
	MedicalRecord: {
		ID:          MedicalRecord,
		Key:         "medical_record",
		Tag:         "[REDACTED_MEDICAL_RECORD]",
		Clues:       []string{"mrn:", "medical record", "patient id", "chart number"},
		Description: "medical record numbers and patient identifiers",
	},
	Biometric: {
		ID:          Biometric,
		Key:         "biometric",
		Tag:         "[REDACTED_BIOMETRIC]",
		Clues:       []string{"fingerprint", "retina", "iris scan", "voiceprint", "facial recognition"},
		Description: "biometric identifiers such as fingerprint or retina scan references",
	},
	PossibleID: {
		ID:          PossibleID,
		Key:         "possible_id",
		Tag:         "[REDACTED_POSSIBLE_ID]",
		Description: "unlabeled identifier-shaped tokens flagged by gap validation",
	},
}

var byKey = func() map[string]Category {
	m := make(map[string]Category, len(registry))
	for cat, def := range registry {
		m[def.Key] = cat
	}
	return m
}()

// Lookup returns the definition for a category. Unknown categories
// yield a zero definition.
func Lookup(cat Category) Definition {
	return registry[cat]
}

// Parse maps a wire identifier to its category. PossibleID is internal
// and does not parse.
func Parse(key string) (Category, bool) {
	cat, ok := byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok || cat == PossibleID {
		return Unknown, false
	}
	return cat, true
}

// String returns the category's wire identifier.
func (c Category) String() string {
	if def, ok := registry[c]; ok {
		return def.Key
	}
	return "unknown"
}

// Tag returns the category's default replacement tag.
func (c Category) Tag() string {
	if def, ok := registry[c]; ok {
		return def.Tag
	}
	return "[REDACTED]"
}

// Deterministic reports whether the category has registered patterns.
func (c Category) Deterministic() bool {
	return len(registry[c].Patterns) > 0
}

// All returns every requestable category sorted by wire identifier.
// PossibleID is excluded.
func All() []Category {
	out := make([]Category, 0, len(registry)-1)
	for cat := range registry {
		if cat == PossibleID {
			continue
		}
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Split partitions categories into those with deterministic patterns
// and those only the external detector can find. Order is preserved.
func Split(cats []Category) (deterministic, detectorOnly []Category) {
	for _, cat := range cats {
		if cat.Deterministic() {
			deterministic = append(deterministic, cat)
		} else {
			detectorOnly = append(detectorOnly, cat)
		}
	}
	return deterministic, detectorOnly
}
