// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"strings"
)

// nonNameWords rejects any candidate window containing one of these
// tokens: organization suffixes, institutions, salutations, and label
// words that commonly lead capitalized runs.
var nonNameWords = map[string]bool{
	"company": true, "corporation": true, "corp": true, "inc": true,
	"incorporated": true, "llc": true, "ltd": true, "enterprises": true,
	"industries": true, "holdings": true, "group": true, "associates": true,
	"partners": true, "department": true, "university": true, "college": true,
	"school": true, "hospital": true, "institute": true, "agency": true,
	"building": true, "street": true, "avenue": true, "road": true,
	"boulevard": true, "lane": true, "drive": true,
	"dear": true, "hello": true, "sincerely": true, "regards": true,
	"subject": true, "reference": true, "regarding": true, "contact": true,
	"please": true, "thank": true, "thanks": true,
	"january": true, "february": true, "march": true, "april": true,
	"june": true, "july": true, "august": true, "september": true,
	"october": true, "november": true, "december": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Small reference sets of common given and family names, lowercase.
// Anchoring on either end is enough; generic shape rules cover the rest
// of the window.
var firstNames = map[string]bool{
	"james": true, "john": true, "robert": true, "michael": true,
	"william": true, "david": true, "richard": true, "joseph": true,
	"thomas": true, "charles": true, "christopher": true, "daniel": true,
	"matthew": true, "anthony": true, "mark": true, "donald": true,
	"steven": true, "paul": true, "andrew": true, "joshua": true,
	"kenneth": true, "kevin": true, "brian": true, "george": true,
	"mary": true, "patricia": true, "jennifer": true, "linda": true,
	"elizabeth": true, "barbara": true, "susan": true, "jessica": true,
	"sarah": true, "karen": true, "nancy": true, "lisa": true,
	"margaret": true, "betty": true, "sandra": true, "ashley": true,
	"emily": true, "donna": true, "michelle": true, "carol": true,
	"amanda": true, "melissa": true, "deborah": true, "stephanie": true,
	"maria": true, "ahmed": true, "mohammed": true, "wei": true,
	"carlos": true, "juan": true, "luis": true, "jose": true,
	"anna": true, "olga": true, "elena": true, "fatima": true,
	"priya": true, "raj": true, "chen": true, "yuki": true,
}

var lastNames = map[string]bool{
	"smith": true, "johnson": true, "williams": true, "brown": true,
	"jones": true, "garcia": true, "miller": true, "davis": true,
	"rodriguez": true, "martinez": true, "hernandez": true, "lopez": true,
	"gonzalez": true, "wilson": true, "anderson": true, "thomas": true,
	"taylor": true, "moore": true, "jackson": true, "martin": true,
	"lee": true, "perez": true, "thompson": true, "white": true,
	"harris": true, "sanchez": true, "clark": true, "ramirez": true,
	"lewis": true, "robinson": true, "walker": true, "young": true,
	"allen": true, "king": true, "wright": true, "scott": true,
	"torres": true, "nguyen": true, "hill": true, "flores": true,
	"green": true, "adams": true, "nelson": true, "baker": true,
	"hall": true, "rivera": true, "campbell": true, "mitchell": true,
	"carter": true, "roberts": true, "kim": true, "chen": true,
	"wang": true, "singh": true, "patel": true, "kumar": true,
	"ali": true, "khan": true, "murphy": true, "o'brien": true,
}

// validName applies the layered person-name heuristics:
//   - 2-4 whitespace-separated tokens, each capitalized (a single
//     letter plus period is allowed as a middle initial)
//   - reject when any token matches the non-name word list
//   - accept when the first or last token appears in the reference
//     name sets with matching capitalization, or when every token
//     satisfies generic shape rules
func validName(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}

	for _, tok := range tokens {
		if !capitalized(tok) && !middleInitial(tok) {
			return false
		}
		if nonNameWords[strings.ToLower(strings.TrimRight(tok, ".,"))] {
			return false
		}
	}

	first := strings.ToLower(tokens[0])
	last := strings.ToLower(strings.TrimRight(tokens[len(tokens)-1], ".,"))
	if firstNames[first] || lastNames[last] {
		return true
	}

	for _, tok := range tokens {
		if middleInitial(tok) {
			continue
		}
		if !genericNameShape(tok) {
			return false
		}
	}
	return true
}

// capitalized reports an initial uppercase letter followed by at least
// one lowercase letter.
func capitalized(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	if tok[0] < 'A' || tok[0] > 'Z' {
		return false
	}
	return tok[1] >= 'a' && tok[1] <= 'z' || tok[1] == '\''
}

// middleInitial matches "J." style tokens.
func middleInitial(tok string) bool {
	return len(tok) == 2 && tok[0] >= 'A' && tok[0] <= 'Z' && tok[1] == '.'
}

// genericNameShape accepts alphabetic tokens with optional apostrophes
// or hyphens, length >= 2.
func genericNameShape(tok string) bool {
	tok = strings.TrimRight(tok, ".,")
	if len(tok) < 2 {
		return false
	}
	for _, r := range tok {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '\'' || r == '-':
		default:
			return false
		}
	}
	return true
}
