package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/idilsaglam/taskflow/internal/auth"
	"github.com/idilsaglam/taskflow/internal/ui"
)

func promptToken() (string, error) {
	var token string
	err := huh.NewInput().
		Title("Paste your token").
		EchoMode(huh.EchoModePassword).
		Value(&token).
		Run()
	return token, err
}

func doAuthLogin(opt Options, args []string) int {
	var token string
	switch len(args) {
	case 0:
		read := opt.ReadToken
		if read == nil {
			read = promptToken
		}
		t, err := read()
		if err != nil {
			ui.Fail("read token: " + err.Error())
			return 1
		}
		token = t
	case 1:
		token = args[0]
	default:
		ui.Fail("usage: taskflow auth login [token]")
		return 2
	}
	if err := opt.Auth.Set(token, nil); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout(opt Options) int {
	ti, err := opt.Auth.Get()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.EnvVar + " env var (nothing to delete)")
		return 0
	}
	if err := opt.Auth.Delete(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus(opt Options) int {
	ti, err := opt.Auth.Get()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	w := ui.Out()
	if ti == nil {
		fmt.Fprintln(w, "Not logged in.")
		fmt.Fprintln(w, "Run: taskflow auth login")
		return 0
	}
	fmt.Fprintf(w, "Logged in (source: %s)\n", ti.Source)
	if !ti.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Saved:   %s\n", ti.CreatedAt.Format(time.RFC3339))
	}
	if ti.ExpiresAt != nil {
		state := "valid"
		if ti.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(w, "Expires: %s (%s)\n", ti.ExpiresAt.Format(time.RFC3339), state)
	}
	return 0
}

// whoami decodes a JWT locally (unsigned); opaque tokens print basic info.
func doAuthWhoAmI(opt Options) int {
	ti, err := opt.Auth.Get()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if ti == nil {
		ui.Fail("not logged in. Run: taskflow auth login")
		return 1
	}
	w := ui.Out()
	claims, err := auth.DecodeClaims(ti.Token)
	if err != nil {
		fmt.Fprintln(w, "Opaque token (cannot introspect locally).")
		return 0
	}
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-8s %v\n", k+":", claims[k])
	}
	return 0
}
