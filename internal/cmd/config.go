package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/jobmail/internal/config"
)

type ConfigCmd struct {
	Init  InitConfigCmd  `cmd:"" help:"Write default config and proxies files."`
	Path  PathConfigCmd  `cmd:"" help:"Print the config directory."`
	Check CheckConfigCmd `cmd:"" help:"Validate the loaded configuration."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct {
	File bool `help:"Print the config file path instead of the directory."`
}

type CheckConfigCmd struct {
	Live bool `help:"Also require the settings needed to send email."`
}

func (c *InitConfigCmd) Run(ctx *Context) error {
	paths, err := config.Init()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
		return nil
	}
	ctx.UI.Infof("Created: %s", strings.Join(paths, ", "))
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	path := ctx.ConfigDir
	if c.File {
		path = ctx.ConfigPath
	}
	_, err := fmt.Fprintln(ctx.Out, path)
	return err
}

func (c *CheckConfigCmd) Run(ctx *Context) error {
	for _, warning := range ctx.Config.Warnings() {
		ctx.UI.Warnf("warning: %s", warning)
	}

	problems := []error{ctx.Config.Validate()}
	if c.Live {
		problems = append(problems, ctx.Config.ValidateLive())
	}
	if err := errors.Join(problems...); err != nil {
		return fmt.Errorf("config %s is invalid:\n%w", ctx.ConfigPath, err)
	}
	ctx.UI.Successf("Config %s is valid", ctx.ConfigPath)
	return nil
}
