package barcode

import (
	"regexp"
	"strings"
)

// Candidate is the structured result of a successful extraction. It is not
// yet a persisted passenger record; the validator stamps identity and
// session ownership onto it.
type Candidate struct {
	PassengerName  string
	PNR            string
	FlightNumber   string
	Seat           string
	SequenceNumber string
	Route          string
	RawData        string
}

const (
	minPayloadLength = 10
	defaultRoute     = "REL-EZE"
)

// matcher tries to pull one field out of a raw payload. Extraction for each
// field is an ordered chain of matchers; the first success wins, so new
// boarding-pass encodings are added by appending a matcher, not by growing
// one master pattern.
type matcher func(data string) (string, bool)

func regexMatcher(re *regexp.Regexp) matcher {
	return func(data string) (string, bool) {
		match := re.FindStringSubmatch(data)
		if match == nil {
			return "", false
		}
		// Prefer the captured group when the pattern has one
		if len(match) > 1 && match[1] != "" {
			return match[1], true
		}
		return match[0], true
	}
}

func firstMatch(data string, chain []matcher) (string, bool) {
	for _, m := range chain {
		if value, ok := m(data); ok {
			return value, true
		}
	}
	return "", false
}

var (
	// SURNAME/GIVENNAME, both sides at least two letters
	namePattern = regexp.MustCompile(`[A-Z]{2,}/[A-Z]{2,}`)

	flightChain = []matcher{
		regexMatcher(regexp.MustCompile(`(?i)JA\d{4}`)),
		regexMatcher(regexp.MustCompile(`(?i)JA(\d{4})`)),
		regexMatcher(regexp.MustCompile(`\b(\d{4})\b`)),
		regexMatcher(regexp.MustCompile(`(?i)[A-Z]{1,3}\d{3,4}`)),
	}

	// BCBP seat block: row+class letter, then zero-padded row + seat letter,
	// e.g. "173Y003A0171" carries seat 003A
	bcbpSeatPattern     = regexp.MustCompile(`\d{1,3}[A-Z](\d{3}[A-Z])`)
	bcbpSeatFallback    = regexp.MustCompile(`M[12][A-Z/\s]+\s+[A-Z0-9]+\s+[A-Z]+\s+\d{4}\s+(\d{1,3}[A-Z])`)
	bcbpSeqPattern      = regexp.MustCompile(`\d{1,3}[A-Z]\d{3}[A-Z](\d{3,4})`)
	bcbpSeqFallback     = regexp.MustCompile(`(\d{3})(?:>|\s)`)
	bcbpPNRPattern      = regexp.MustCompile(`M[12][A-Z/\s]+\s+([A-Z0-9]{5,7})\s+[A-Z]+`)
	leadingZerosPattern = regexp.MustCompile(`^0+`)

	seatChain = []matcher{
		regexMatcher(regexp.MustCompile(`\b(\d{1,2}[A-F])\b`)),
		regexMatcher(regexp.MustCompile(`(?i)Silla/Seat\s*(\w+)`)),
		regexMatcher(regexp.MustCompile(`(?i)Seat\s*(\w+)`)),
	}

	seqChain = []matcher{
		regexMatcher(regexp.MustCompile(`(?i)SEQ\s*(\d{2,4})`)),
		regexMatcher(regexp.MustCompile(`\b(\d{3,4})\s*$`)),
		regexMatcher(regexp.MustCompile(`(\d{3,4})[^0-9]*$`)),
	}

	pnrChain = []matcher{
		regexMatcher(regexp.MustCompile(`(?i)PNR\s*([A-Z0-9]{4,8})`)),
		regexMatcher(regexp.MustCompile(`\b([A-Z]{2}\d{4})\b`)),
		regexMatcher(regexp.MustCompile(`\b([A-Z0-9]{5,7})\b`)),
	}

	uppercaseRuns = regexp.MustCompile(`[A-Z]+`)
)

// IsBCBP reports whether a payload is IATA bar-coded boarding pass data
func IsBCBP(data string) bool {
	return strings.HasPrefix(data, "M1") || strings.HasPrefix(data, "M2")
}

func isSupportedSymbology(symbology string) bool {
	normalized := strings.ToLower(symbology)
	return strings.Contains(normalized, "qr") || strings.Contains(normalized, "pdf")
}

func isDelimitedBoardingPass(data, symbology string) bool {
	return strings.Contains(strings.ToLower(symbology), "pdf") && strings.Contains(data, "/")
}

// extractPassengerName finds SURNAME/GIVENNAME tokens and keeps the longest
// match: a longer run is the least likely to be a truncated false positive.
func extractPassengerName(data string) (string, bool) {
	matches := namePattern.FindAllString(data, -1)
	if len(matches) == 0 {
		return "", false
	}
	longest := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(longest) {
			longest = m
		}
	}
	return longest, true
}

// FormatPassengerName converts the slash-delimited surname/given-name form
// into the space-delimited display form
func FormatPassengerName(raw string) string {
	return strings.TrimSpace(strings.Replace(raw, "/", " ", 1))
}

func extractFlightNumber(data string) (string, bool) {
	return firstMatch(data, flightChain)
}

func stripLeadingZeros(value string) string {
	stripped := leadingZerosPattern.ReplaceAllString(value, "")
	if stripped == "" {
		return value
	}
	return stripped
}

func extractSeat(data string) (string, bool) {
	if IsBCBP(data) {
		if match := bcbpSeatPattern.FindStringSubmatch(data); match != nil {
			// "003A" -> "3A"
			return stripLeadingZeros(match[1]), true
		}
		if match := bcbpSeatFallback.FindStringSubmatch(data); match != nil {
			return match[1], true
		}
	}
	return firstMatch(data, seatChain)
}

func extractSequence(data string) (string, bool) {
	if IsBCBP(data) {
		// The sequence follows the seat block: in "173Y003A0171" the
		// sequence is 0171
		if match := bcbpSeqPattern.FindStringSubmatch(data); match != nil {
			return stripLeadingZeros(match[1]), true
		}
		if match := bcbpSeqFallback.FindStringSubmatch(data); match != nil {
			return match[1], true
		}
	}
	return firstMatch(data, seqChain)
}

func extractPNR(data string) (string, bool) {
	if IsBCBP(data) {
		// PNR sits between the name block and the airline-code block
		if match := bcbpPNRPattern.FindStringSubmatch(data); match != nil {
			return match[1], true
		}
	}
	return firstMatch(data, pnrChain)
}

// ValidateFlight checks a found flight number against the allow-list. Both
// sides are normalized by stripping airline-code letters, so "JA3192" and
// "3192" validate against each other in either direction.
func ValidateFlight(flight string, allowed []string) bool {
	if flight == "" {
		return false
	}
	numericFlight := strings.TrimSpace(uppercaseRuns.ReplaceAllString(flight, ""))
	for _, candidate := range allowed {
		allowedNumeric := strings.TrimSpace(uppercaseRuns.ReplaceAllString(candidate, ""))
		if numericFlight == allowedNumeric || flight == candidate {
			return true
		}
	}
	return false
}

// Extract parses a raw barcode payload into a passenger candidate. It is a
// pure function: no side effects, deterministic, and every failure is a
// typed ExtractionError the caller can switch on.
func Extract(rawText, symbology string, allowedFlights []string) (*Candidate, *ExtractionError) {
	if len(rawText) < minPayloadLength {
		return nil, errTooShort()
	}

	if symbology != "" && !isSupportedSymbology(symbology) {
		return nil, errUnsupportedSymbology(symbology)
	}

	isBCBP := IsBCBP(rawText)
	isDelimited := isDelimitedBoardingPass(rawText, symbology)

	passenger, hasPassenger := extractPassengerName(rawText)
	pnr, hasPNR := extractPNR(rawText)
	flight, hasFlight := extractFlightNumber(rawText)
	seat, hasSeat := extractSeat(rawText)
	seq, hasSeq := extractSequence(rawText)

	// Generic payloads must prove themselves: without a recognized format,
	// name and flight together are the minimum evidence of a boarding pass
	if !isBCBP && !isDelimited && (!hasPassenger || !hasFlight) {
		return nil, errNotBoardingPass()
	}

	if !hasPassenger {
		return nil, errNameNotFound()
	}
	if !hasFlight {
		return nil, errFlightNotFound()
	}
	if !ValidateFlight(flight, allowedFlights) {
		return nil, errFlightNotAllowed(flight, allowedFlights)
	}

	candidate := &Candidate{
		PassengerName:  FormatPassengerName(passenger),
		PNR:            "N/A",
		FlightNumber:   flight,
		Seat:           "N/A",
		SequenceNumber: "000",
		Route:          defaultRoute,
		RawData:        rawText,
	}
	if hasPNR {
		candidate.PNR = pnr
	}
	if hasSeat {
		candidate.Seat = seat
	}
	if hasSeq {
		candidate.SequenceNumber = seq
	}

	return candidate, nil
}

// LooksLikeBoardingPass is a cheap pre-check for payloads before full
// extraction. Recognized formats pass outright; anything else needs at
// least two boarding-pass indicators.
func LooksLikeBoardingPass(data, symbology string) bool {
	if len(data) < minPayloadLength {
		return false
	}
	if IsBCBP(data) || isDelimitedBoardingPass(data, symbology) {
		return true
	}

	indicators := []*regexp.Regexp{
		regexp.MustCompile(`[A-Z]+/[A-Z]+`),
		regexp.MustCompile(`\d{4}`),
		regexp.MustCompile(`(?i)SEQ`),
		regexp.MustCompile(`(?i)PNR`),
	}
	count := 0
	for _, indicator := range indicators {
		if indicator.MatchString(data) {
			count++
		}
	}
	return count >= 2
}
