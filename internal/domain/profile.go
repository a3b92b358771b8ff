package domain

import (
	"fmt"
	"strings"
)

type Country string

const (
	CountryChina     Country = "China"
	CountryJapan     Country = "Japan"
	CountryHongKong  Country = "Hong Kong"
	CountryTaiwan    Country = "Taiwan"
	CountryAustralia Country = "Australia"
)

var knownCountries = map[Country]struct{}{
	CountryChina:     {},
	CountryJapan:     {},
	CountryHongKong:  {},
	CountryTaiwan:    {},
	CountryAustralia: {},
}

type Language string

const (
	LanguageEnglish            Language = "English"
	LanguageJapanese           Language = "Japanese"
	LanguageChineseSimplified  Language = "Chinese Simplified"
	LanguageChineseTraditional Language = "Chinese Traditional"
)

var knownLanguages = map[Language]struct{}{
	LanguageEnglish:            {},
	LanguageJapanese:           {},
	LanguageChineseSimplified:  {},
	LanguageChineseTraditional: {},
}

type Advisor string

const (
	AdvisorBobby Advisor = "Bobby"
	AdvisorJess  Advisor = "Jess"
	AdvisorGreg  Advisor = "Greg"
)

var knownAdvisors = map[Advisor]struct{}{
	AdvisorBobby: {},
	AdvisorJess:  {},
	AdvisorGreg:  {},
}

// UserProfile holds the onboarding answers. It is created once during
// onboarding, replaced wholesale on profile edits, and cleared on logout.
type UserProfile struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Age      int      `json:"age"`
	Country  Country  `json:"country"`
	Language Language `json:"language"`
	Advisor  Advisor  `json:"advisor,omitempty"`
}

const (
	MinAge = 18
	MaxAge = 120
)

// Validate checks the onboarding invariants. Advisor and language are allowed
// to be unknown values here; the prompt builder falls back to defaults for
// those instead of rejecting the profile.
func (p *UserProfile) Validate() error {
	if p == nil {
		return fmt.Errorf("profile is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return fmt.Errorf("age must be between %d and %d, got %d", MinAge, MaxAge, p.Age)
	}
	if _, ok := knownCountries[p.Country]; !ok {
		return fmt.Errorf("unknown country %q", p.Country)
	}
	return nil
}

func (c Country) Known() bool {
	_, ok := knownCountries[c]
	return ok
}

func (l Language) Known() bool {
	_, ok := knownLanguages[l]
	return ok
}

func (a Advisor) Known() bool {
	_, ok := knownAdvisors[a]
	return ok
}
