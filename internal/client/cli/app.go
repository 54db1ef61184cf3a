// Package cli implements the interactive admin console for the accountd
// server: account registration, session login/logout and user management.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/avoronov/accountd/internal/client/api"
	"github.com/avoronov/accountd/internal/client/config"
)

type App struct {
	config *config.Config
	api    *api.Client
	email  string
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	apiClient := api.NewClient(c.ServerEndpointAddr, c.RequestTimeout)

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.api.IsAuthenticated()
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.email
	}
	return "not logged in"
}
