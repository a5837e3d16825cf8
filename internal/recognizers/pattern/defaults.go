// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pattern

import "entity-pipeline/internal/detector"

const (
	streetSuffixes = `(?:strasse|straße|str\.|gasse|weg|platz|allee|ring|rain|halde)`
	frenchStreet   = `(?:Rue|Avenue|Av\.|Chemin|Ch\.|Route|Rte|Boulevard|Bd|Place|Quai|Impasse|Via|Viale|Piazza)`
	capWord        = `[A-ZÄÖÜÀÂÉÈÊÎÔÛÇ][\p{L}'’-]+`
	locality       = `((?:(?:La|Le|Les|St\.|Ste\.|Bad|Sankt)[ \t])?` + capWord + `)`
	postalLead     = `(?:^|[\s,;:(])`
	monthNames     = `(?:janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre|` +
		`januar|jänner|februar|märz|april|juni|juli|august|oktober|dezember|` +
		`january|february|march|may|june|july|september|october|november|december|` +
		`gennaio|febbraio|marzo|aprile|maggio|giugno|luglio|agosto|settembre|ottobre|dicembre)`
)

// DefaultRules is the built-in rule table. Matches are candidates only; the
// validator registry confirms them.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "email", Type: detector.TypeEmail, Confidence: 0.7,
			Pattern: `[\p{L}\p{N}._%+\-]+@[\p{L}\p{N}\-]+(?:\.[\p{L}\p{N}\-]+)*\.\p{L}{2,}`},
		{Name: "url", Type: detector.TypeURL, Confidence: 0.7,
			Pattern: `\bhttps?://[^\s<>"']+[^\s<>"'.,;:!?)]`},
		{Name: "phone", Type: detector.TypePhone, Confidence: 0.6,
			Pattern: `(?:\+\d{1,3}|\b0)\d{0,3}(?:[ ]?\d{2,4}){2,5}\b`},
		{Name: "iban", Type: detector.TypeIBAN, Confidence: 0.7,
			Pattern: `\b[A-Z]{2}\d{2}(?: ?[A-Z0-9]{4}){2,7}(?: ?[A-Z0-9]{1,3})?\b`},
		{Name: "avs", Type: detector.TypeAVSNumber, Confidence: 0.8,
			Pattern: `\b756[. ]?\d{4}[. ]?\d{4}[. ]?\d{2}\b`},
		{Name: "uid", Type: detector.TypeUIDNumber, Confidence: 0.8,
			Pattern: `\bCHE[- ]?\d{3}\.?\d{3}\.?\d{3}\b(?:[ ](?:MWST|TVA|IVA))?`},
		{Name: "credit-card", Type: detector.TypeCreditCard, Confidence: 0.6,
			Pattern: `\b(?:\d{4}[ \-]){3}\d{4}\b|\b\d{4}[ \-]\d{6}[ \-]\d{5}\b|\b\d{15,16}\b`},
		{Name: "ssn", Type: detector.TypeSSN, Confidence: 0.6, Languages: []string{"en"},
			Pattern: `\b\d{3}-\d{2}-\d{4}\b`},
		{Name: "ipv4", Type: detector.TypeIPAddress, Confidence: 0.6,
			Pattern: `\b(?:\d{1,3}\.){3}\d{1,3}\b`},
		{Name: "ipv6", Type: detector.TypeIPAddress, Confidence: 0.6,
			Pattern: `(?i)\b[0-9a-f]{1,4}(?::[0-9a-f]{0,4}){2,7}\b`},
		{Name: "date-numeric", Type: detector.TypeDate, Confidence: 0.6,
			Pattern: `\b\d{1,2}[./]\d{1,2}[./]\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`},
		{Name: "date-written", Type: detector.TypeDate, Confidence: 0.6,
			Pattern: `(?i)\b\d{1,2}(?:\.|er|st|nd|rd|th)? ` + monthNames + ` \d{4}\b`},
		{Name: "date-us", Type: detector.TypeDate, Confidence: 0.6,
			Pattern: `(?i)\b` + monthNames + ` \d{1,2}, \d{4}\b`},
		{Name: "street-suffixed", Type: detector.TypeStreetName, Confidence: 0.6,
			Group:   1,
			Pattern: `([A-ZÄÖÜ][\p{L}-]*` + streetSuffixes + `)(?:[^\p{L}]|$)`},
		{Name: "street-prefixed", Type: detector.TypeStreetName, Confidence: 0.6,
			Pattern: `\b` + frenchStreet + `[ \t](?:(?:de|du|des|della|del)[ \t](?:la[ \t]|l')?)?` + capWord},
		{Name: "street-number", Type: detector.TypeStreetNumber, Confidence: 0.5, Group: 1,
			Pattern: `(?:` + streetSuffixes + `|` + frenchStreet + `[ \t](?:(?:de|du|des|della|del)[ \t](?:la[ \t]|l')?)?` + capWord + `)[ \t]+(\d{1,4}[a-zA-Z]?)\b`},
		{Name: "postal-code", Type: detector.TypePostalCode, Confidence: 0.5, Group: 1,
			Pattern: postalLead + `((?:(?:CH|FL|D|DE|F|FR|A|AT)-)?\d{4,5})[ \t]+` + locality},
		{Name: "city", Type: detector.TypeCity, Confidence: 0.5, Group: 2,
			Pattern: postalLead + `((?:(?:CH|FL|D|DE|F|FR|A|AT)-)?\d{4,5})[ \t]+` + locality},
	}
}

// Default returns a recognizer over DefaultRules.
func Default() *Recognizer {
	r, err := New("builtin-patterns", DefaultRules())
	if err != nil {
		panic(err)
	}
	return r
}
