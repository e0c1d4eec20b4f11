// ABOUTME: Interactive form for `config create`
// ABOUTME: Prompts for server URL and credentials with the password masked

package tui

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/huh"

	"github.com/kumactl/kumactl/internal/config"
)

// ConfigForm fills cfg interactively. Pre-populated fields become the
// form's initial values.
func ConfigForm(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Placeholder("https://uptime.example.com").
				Validate(validateServerURL).
				Value(&cfg.URL),
			huh.NewInput().
				Title("Username").
				Validate(notEmpty("username")).
				Value(&cfg.User),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(notEmpty("password")).
				Value(&cfg.Password),
		),
	).WithTheme(huh.ThemeBase())

	return form.Run()
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("enter a valid http(s) URL")
	}
	return nil
}

func notEmpty(field string) func(string) error {
	return func(value string) error {
		if value == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
