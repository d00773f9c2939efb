package cmd

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/ui"
)

// Context is handed to every command's Run method.
type Context struct {
	// Ctx is cancelled on SIGINT or SIGTERM.
	Ctx        context.Context
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigPath string
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}

func (c *Context) context() context.Context {
	if c == nil || c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
