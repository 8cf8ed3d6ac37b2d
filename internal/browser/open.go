// Package browser hands checkout links to the user's web browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Opener launches a browser for a validated URL.
type Opener func(name string, args ...string) error

func start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens rawURL in the user's browser. Only http and https links are
// accepted. $BROWSER, when set, takes precedence over the platform default.
func Open(rawURL string) error {
	return OpenWith(start, rawURL)
}

// OpenWith is Open with an injectable launcher.
func OpenWith(launch Opener, rawURL string) error {
	u, err := Validate(rawURL)
	if err != nil {
		return err
	}
	name, args, err := command(runtime.GOOS, os.Getenv("BROWSER"), u)
	if err != nil {
		return err
	}
	if err := launch(name, args...); err != nil {
		return fmt.Errorf("browser: launch %s: %w", name, err)
	}
	return nil
}

// Validate checks that rawURL is an absolute http(s) URL.
func Validate(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("browser: parse %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("browser: refusing to open %q: unsupported scheme", rawURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("browser: refusing to open %q: no host", rawURL)
	}
	return u.String(), nil
}

func command(goos, envBrowser, u string) (string, []string, error) {
	if envBrowser != "" {
		fields := strings.Fields(envBrowser)
		return fields[0], append(fields[1:], u), nil
	}
	switch goos {
	case "darwin":
		return "open", []string{u}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{u}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", u}, nil
	default:
		return "", nil, fmt.Errorf("browser: unsupported OS: %s", goos)
	}
}
