// Package onboard collects the settings file values through an
// interactive terminal form.
package onboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/flemzord/blogclaw/internal/provider"
	"github.com/flemzord/blogclaw/internal/settings"
)

// CustomTopic is the topic choice that reveals a free-text input.
const CustomTopic = "Custom"

// Topics are the preset blog niches.
var Topics = []string{"Tech", "Travel", "Food", "Lifestyle", "Health", "Business", CustomTopic}

// ErrAborted is returned by Run when the user cancels the form.
var ErrAborted = errors.New("onboard: aborted")

// Answers are the form fields.
type Answers struct {
	Provider    string
	APIKey      string
	SiteURL     string
	User        string
	AppPassword string
	Topic       string
	CustomTopic string
}

// FromSettings pre-fills answers from the store. A saved topic that is not
// a preset selects Custom.
func FromSettings(store *settings.Store) Answers {
	c := store.Credentials()
	a := Answers{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		SiteURL:     c.SiteURL,
		User:        c.User,
		AppPassword: c.AppPassword,
		Topic:       c.Topic,
	}
	if info, ok := provider.Lookup(a.Provider); ok {
		a.Provider = info.DisplayName
	}
	switch {
	case a.Topic == "":
		a.Topic = Topics[0]
	case !slices.Contains(Topics, a.Topic):
		a.CustomTopic = a.Topic
		a.Topic = CustomTopic
	}
	return a
}

// FinalTopic returns the topic the answers select.
func (a Answers) FinalTopic() string {
	if a.Topic == CustomTopic {
		return strings.TrimSpace(a.CustomTopic)
	}
	return a.Topic
}

// Apply writes the answers into the store. Call Save to persist.
func (a Answers) Apply(store *settings.Store) {
	store.Merge(map[string]string{
		settings.KeyProvider:   a.Provider,
		settings.KeyAPIKey:     strings.TrimSpace(a.APIKey),
		settings.KeyWPURL:      strings.TrimRight(strings.TrimSpace(a.SiteURL), "/"),
		settings.KeyWPUser:     strings.TrimSpace(a.User),
		settings.KeyWPPassword: a.AppPassword,
		settings.KeyTopic:      a.FinalTopic(),
	})
}

// providerOptions lists the registered backends by display name.
func providerOptions() []string {
	infos := provider.Registered()
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.DisplayName)
	}
	return names
}

// Form builds the huh form bound to a.
func Form(a *Answers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("LLM provider").
				Options(huh.NewOptions(providerOptions()...)...).
				Value(&a.Provider),
			huh.NewInput().
				Title("API key").
				Description("Not needed for the Simulated provider").
				EchoMode(huh.EchoModePassword).
				Value(&a.APIKey).
				Validate(func(s string) error { return validateAPIKey(a.Provider, s) }),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("WordPress site URL").
				Placeholder("https://myblog.com").
				Value(&a.SiteURL).
				Validate(validateSiteURL),
			huh.NewInput().
				Title("Username").
				Value(&a.User).
				Validate(required("username")),
			huh.NewInput().
				Title("Application password").
				Description("Users > Profile > Application Passwords in WordPress").
				EchoMode(huh.EchoModePassword).
				Value(&a.AppPassword).
				Validate(required("application password")),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Blog niche / topic").
				Options(huh.NewOptions(Topics...)...).
				Value(&a.Topic),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Custom topic").
				Placeholder("e.g. Quantum Computing").
				Value(&a.CustomTopic).
				Validate(required("topic")),
		).WithHideFunc(func() bool { return a.Topic != CustomTopic }),
	)
}

// Run shows the form pre-filled from store and saves the answers.
func Run(ctx context.Context, store *settings.Store) error {
	a := FromSettings(store)
	if err := Form(&a).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("onboard: %w", err)
	}
	a.Apply(store)
	if err := store.Save(); err != nil {
		return fmt.Errorf("onboard: %w", err)
	}
	return nil
}

func validateAPIKey(providerName, key string) error {
	if info, ok := provider.Lookup(providerName); ok && info.KeyOptional {
		return nil
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is required")
	}
	return nil
}

func validateSiteURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("enter a full http(s) URL")
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
