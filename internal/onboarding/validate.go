// Package onboarding handles account creation: field validation, the demo
// email verification step and the terminal registration wizard.
package onboarding

import (
	"regexp"
	"unicode"

	"github.com/alpinex/alpinex/internal/domain"
)

// demoVerificationCode accepted by the simulated email verification step.
const demoVerificationCode = "123456"

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// restrictedCountries residents of these cannot be onboarded.
var restrictedCountries = map[string]struct{}{
	"JP": {}, "US": {}, "CN": {}, "KP": {}, "IR": {}, "SY": {},
}

// Country a selectable country of residence.
type Country struct {
	Code string
	Name string
}

// Countries the selectable list shown during onboarding.
var Countries = []Country{
	{"CH", "Switzerland"}, {"DE", "Germany"}, {"FR", "France"},
	{"IT", "Italy"}, {"AT", "Austria"}, {"NL", "Netherlands"},
	{"BE", "Belgium"}, {"LU", "Luxembourg"}, {"GB", "United Kingdom"},
	{"IE", "Ireland"}, {"ES", "Spain"}, {"PT", "Portugal"},
	{"SE", "Sweden"}, {"NO", "Norway"}, {"DK", "Denmark"},
	{"FI", "Finland"}, {"JP", "Japan"}, {"US", "United States"},
	{"CN", "China"},
}

// Registration collects everything the wizard asks for.
type Registration struct {
	Email                string
	Password             string
	ConfirmPassword      string
	Country              string
	AgreedToTerms        bool
	ConfirmedEligibility bool
	VerificationCode     string
}

// FieldErrors maps field names to human-readable validation messages.
type FieldErrors map[string]string

// OK reports whether no field failed validation.
func (e FieldErrors) OK() bool {
	return len(e) == 0
}

// PasswordStrength scores a password 0..5: length, upper, lower, digit, symbol.
func PasswordStrength(password string) int {
	strength := 0
	if len(password) >= 8 {
		strength++
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	for _, ok := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
		if ok {
			strength++
		}
	}
	return strength
}

// ValidateCredentials checks the email/password step.
func ValidateCredentials(reg Registration) FieldErrors {
	errs := FieldErrors{}

	if reg.Email == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(reg.Email) {
		errs["email"] = "Please enter a valid email address"
	}

	if reg.Password == "" {
		errs["password"] = "Password is required"
	} else if PasswordStrength(reg.Password) < 3 {
		errs["password"] = "Password must be stronger (8+ chars, uppercase, lowercase, number)"
	}

	if reg.Password != reg.ConfirmPassword {
		errs["confirmPassword"] = "Passwords do not match"
	}

	return errs
}

// ValidateResidency checks the country and consent step.
func ValidateResidency(reg Registration) FieldErrors {
	errs := FieldErrors{}

	if reg.Country == "" {
		errs["country"] = "Please select your country of residence"
	} else if _, restricted := restrictedCountries[reg.Country]; restricted {
		errs["country"] = "Sorry, we cannot provide services to residents of this country"
	}

	if !reg.AgreedToTerms {
		errs["agreedToTerms"] = "You must agree to the Terms of Service"
	}
	if !reg.ConfirmedEligibility {
		errs["confirmedEligibility"] = "You must confirm your eligibility"
	}

	return errs
}

// VerifyCode checks the simulated email verification code.
func VerifyCode(reg Registration) FieldErrors {
	errs := FieldErrors{}
	if reg.VerificationCode != demoVerificationCode {
		errs["verificationCode"] = "Invalid verification code. Try 123456 for demo."
	}
	return errs
}

// Validate runs every step's validation in order and returns the first
// step's failures, if any.
func Validate(reg Registration) FieldErrors {
	if errs := ValidateCredentials(reg); !errs.OK() {
		return errs
	}
	if errs := ValidateResidency(reg); !errs.OK() {
		return errs
	}
	return VerifyCode(reg)
}

// Complete turns a fully validated registration into a user record.
// KYC and 2FA start disabled; they are toggled elsewhere.
func Complete(reg Registration) (*domain.User, FieldErrors) {
	if errs := Validate(reg); !errs.OK() {
		return nil, errs
	}
	return domain.NewUser(reg.Email, reg.Country), nil
}
