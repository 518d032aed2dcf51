package onboarding

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/alpinex/alpinex/internal/domain"
	"github.com/alpinex/alpinex/internal/store"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

func clearAndHeader(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ALPINEX ACCOUNT CREATION"))
	fmt.Println(stepStyle.Render(step))
}

// RunWizard walks the user through account creation in the terminal and,
// on success, installs the new user into the store as authenticated.
func RunWizard(st *store.Store) error {
	var reg Registration

	clearAndHeader("STEP 1: CREDENTIALS")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Join the Swiss-licensed crypto exchange.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&reg.Email).
				Validate(func(s string) error {
					probe := reg
					probe.Email = s
					if msg, ok := ValidateCredentials(probe)["email"]; ok {
						return errors.New(msg)
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				Description("8+ chars with uppercase, lowercase and a number").
				EchoMode(huh.EchoModePassword).
				Value(&reg.Password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("Password is required")
					}
					if PasswordStrength(s) < 3 {
						return errors.New("Password must be stronger")
					}
					return nil
				}),
			huh.NewInput().
				Title("Confirm Password").
				EchoMode(huh.EchoModePassword).
				Value(&reg.ConfirmPassword).
				Validate(func(s string) error {
					if s != reg.Password {
						return errors.New("Passwords do not match")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	clearAndHeader("STEP 2: RESIDENCY")
	countryOptions := make([]huh.Option[string], 0, len(Countries))
	for _, c := range Countries {
		countryOptions = append(countryOptions, huh.NewOption(c.Name, c.Code))
	}
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Country of Residence").
				Options(countryOptions...).
				Value(&reg.Country),
			huh.NewConfirm().
				Title("I agree to the Terms of Service").
				Value(&reg.AgreedToTerms),
			huh.NewConfirm().
				Title("I confirm I am eligible to use this service").
				Value(&reg.ConfirmedEligibility),
		),
	).Run()
	if err != nil {
		return err
	}
	if errs := ValidateResidency(reg); !errs.OK() {
		for _, msg := range errs {
			return errors.New(msg)
		}
	}

	clearAndHeader("STEP 3: EMAIL VERIFICATION")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Verification Code").
				Description("Check your inbox (demo: 123456)").
				Value(&reg.VerificationCode).
				Validate(func(s string) error {
					probe := reg
					probe.VerificationCode = s
					if msg, ok := VerifyCode(probe)["verificationCode"]; ok {
						return errors.New(msg)
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	user, errs := Complete(reg)
	if !errs.OK() {
		for _, msg := range errs {
			return errors.New(msg)
		}
	}

	st.SetUser(user)
	st.SetAuthenticated(true)
	if err := st.SetMode(domain.ModeHodl); err != nil {
		return err
	}

	clearAndHeader("WELCOME")
	summary := fmt.Sprintf("Account created\nEmail: %s\nCountry: %s\n", user.Email, user.Country)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))
	return nil
}
