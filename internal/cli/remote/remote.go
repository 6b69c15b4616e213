// Package remote builds the API client used by the devdash commands from the
// CLI configuration
package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"devdash/internal/tui/api"
)

// RequestTimeout bounds every CLI request
const RequestTimeout = 15 * time.Second

// ErrNoSession is returned when no access code has been entered yet
var ErrNoSession = errors.New("no session. Please run: devdash access login")

// BaseURL is server.url, or http://server.host:server.http_port
func BaseURL() string {
	if u := viper.GetString("server.url"); u != "" {
		return u
	}
	return fmt.Sprintf("http://%s:%d", viper.GetString("server.host"), viper.GetInt("server.http_port"))
}

// Client returns an API client carrying the saved session, if any
func Client() *api.Client {
	c := api.NewClient(BaseURL())
	c.SetSession(viper.GetString("session.token"))
	return c
}

// SessionClient is Client but fails when no session was saved
func SessionClient() (*api.Client, error) {
	c := Client()
	if c.Session() == "" {
		return nil, ErrNoSession
	}
	return c, nil
}

// Context returns a context bounded by RequestTimeout
func Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), RequestTimeout)
}

// ConfigFile is where the CLI keeps its settings and session
func ConfigFile() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".devdash.yaml"
	}
	return filepath.Join(home, ".devdash", "config.yaml")
}

// SaveSession stores token in the CLI config file
func SaveSession(token string) (string, error) {
	return Persist(map[string]interface{}{"session.token": token})
}

// Persist sets each key in viper and writes the CLI config file
func Persist(values map[string]interface{}) (string, error) {
	path := ConfigFile()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	for k, v := range values {
		viper.Set(k, v)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Explain rewrites a missing session into the login hint
func Explain(err error) error {
	if errors.Is(err, api.ErrSessionRequired) {
		return fmt.Errorf("session expired or missing. Please run: devdash access login")
	}
	return err
}
