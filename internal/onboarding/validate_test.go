package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{
		Email:                "alice@example.com",
		Password:             "Sup3rSecret!",
		ConfirmPassword:      "Sup3rSecret!",
		Country:              "CH",
		AgreedToTerms:        true,
		ConfirmedEligibility: true,
		VerificationCode:     "123456",
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     int
	}{
		{"", 0},
		{"abc", 1},
		{"abcdefgh", 2},
		{"Abcdefgh", 3},
		{"Abcdefg1", 4},
		{"Abcdef1!", 5},
		{"Ab1!", 4}, // short but varied
	}

	for _, tc := range tests {
		assert.Equalf(t, tc.want, PasswordStrength(tc.password), "password %q", tc.password)
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Registration)
		wantField string
	}{
		{
			name:      "missing email",
			mutate:    func(r *Registration) { r.Email = "" },
			wantField: "email",
		},
		{
			name:      "malformed email",
			mutate:    func(r *Registration) { r.Email = "not-an-email" },
			wantField: "email",
		},
		{
			name:      "missing password",
			mutate:    func(r *Registration) { r.Password = "" },
			wantField: "password",
		},
		{
			name:      "weak password",
			mutate:    func(r *Registration) { r.Password, r.ConfirmPassword = "abcdefgh", "abcdefgh" },
			wantField: "password",
		},
		{
			name:      "password mismatch",
			mutate:    func(r *Registration) { r.ConfirmPassword = "Different1!" },
			wantField: "confirmPassword",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := validRegistration()
			tc.mutate(&reg)

			errs := ValidateCredentials(reg)
			require.False(t, errs.OK())
			assert.Contains(t, errs, tc.wantField)
		})
	}

	assert.True(t, ValidateCredentials(validRegistration()).OK())
}

func TestValidateResidency(t *testing.T) {
	reg := validRegistration()
	assert.True(t, ValidateResidency(reg).OK())

	for _, code := range []string{"JP", "US", "CN", "KP", "IR", "SY"} {
		reg := validRegistration()
		reg.Country = code
		errs := ValidateResidency(reg)
		require.Falsef(t, errs.OK(), "country %s must be restricted", code)
		assert.Contains(t, errs, "country")
	}

	reg = validRegistration()
	reg.Country = ""
	assert.Contains(t, ValidateResidency(reg), "country")

	reg = validRegistration()
	reg.AgreedToTerms = false
	assert.Contains(t, ValidateResidency(reg), "agreedToTerms")

	reg = validRegistration()
	reg.ConfirmedEligibility = false
	assert.Contains(t, ValidateResidency(reg), "confirmedEligibility")
}

func TestVerifyCode(t *testing.T) {
	reg := validRegistration()
	assert.True(t, VerifyCode(reg).OK())

	reg.VerificationCode = "000000"
	assert.Contains(t, VerifyCode(reg), "verificationCode")
}

func TestValidate_StopsAtFirstFailingStep(t *testing.T) {
	reg := validRegistration()
	reg.Email = "broken"
	reg.Country = "US"

	errs := Validate(reg)
	assert.Contains(t, errs, "email")
	assert.NotContains(t, errs, "country")
}

func TestComplete(t *testing.T) {
	user, errs := Complete(validRegistration())
	require.True(t, errs.OK())
	require.NotNil(t, user)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "CH", user.Country)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	reg := validRegistration()
	reg.VerificationCode = "999999"
	user, errs = Complete(reg)
	assert.Nil(t, user)
	assert.False(t, errs.OK())
}
