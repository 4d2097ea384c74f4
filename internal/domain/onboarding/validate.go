package onboarding

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field names used as keys in Record.Errors and in API responses.
const (
	FieldBio    = "bio"
	FieldPhone  = "phone"
	FieldRegion = "region"
	FieldCity   = "city"
	FieldSkills = "skills"
	FieldIDCard = "idCard"
)

const (
	bioMinLen   = 10
	bioMaxLen   = 500
	phoneMinLen = 10
	phoneMaxLen = 12
)

// Validate checks the fields belonging to one step and returns a field→message
// map, empty when everything passes. It is a pure function; navigation does
// NOT call it — advancing past an invalid step is allowed and the caller
// decides when to surface errors.
func Validate(step int, r Record) map[string]string {
	errs := map[string]string{}

	switch step {
	case StepBasicInfo:
		bio := strings.TrimSpace(r.Bio)
		// Length limits count characters, not bytes.
		if bio == "" {
			errs[FieldBio] = "Tell posters a little about yourself"
		} else if n := utf8.RuneCountInString(bio); n < bioMinLen || n > bioMaxLen {
			errs[FieldBio] = "Bio must be between 10 and 500 characters"
		}
		digits := countDigits(r.Phone)
		if digits == 0 {
			errs[FieldPhone] = "Phone number is required"
		} else if digits < phoneMinLen || digits > phoneMaxLen {
			errs[FieldPhone] = "Enter a valid phone number"
		}

	case StepLocation:
		if strings.TrimSpace(r.Location.Region) == "" {
			errs[FieldRegion] = "Region is required"
		}
		if strings.TrimSpace(r.Location.City) == "" {
			errs[FieldCity] = "City is required"
		}

	case StepSkills:
		if len(r.Skills) == 0 {
			errs[FieldSkills] = "Add at least one skill"
		}

	case StepPhoto:
		// Profile photo is optional.

	case StepIDCard:
		if r.IDCard.URI == "" {
			errs[FieldIDCard] = "An identity document is required"
		}
	}

	return errs
}

func countDigits(s string) int {
	n := 0
	for _, c := range s {
		if unicode.IsDigit(c) {
			n++
		}
	}
	return n
}
