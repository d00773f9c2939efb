package cmd

import (
	"fmt"

	"github.com/jimezsa/jobmail/internal/seen"
)

type SeenCmd struct {
	Diff   SeenDiffCmd   `cmd:"" help:"Write postings in --new that are not in --seen."`
	Update SeenUpdateCmd `cmd:"" help:"Merge postings into a seen history file."`
}

type SeenDiffCmd struct {
	New   string `name:"new" required:"" help:"Postings JSON file to compare."`
	Seen  string `name:"seen" required:"" help:"Seen postings JSON file. Missing file is treated as empty."`
	Out   string `name:"out" required:"" help:"Output path for unseen postings."`
	Stats bool   `name:"stats" help:"Print comparison stats."`
}

type SeenUpdateCmd struct {
	Seen  string `name:"seen" required:"" help:"Seen postings JSON file. Missing file is treated as empty."`
	Input string `name:"input" required:"" help:"Postings JSON file to merge in."`
	Out   string `name:"out" help:"Output path (default: overwrite --seen)."`
	Stats bool   `name:"stats" help:"Print merge stats."`
}

func (c *SeenDiffCmd) Run(ctx *Context) error {
	incoming, err := seen.ReadPostings(c.New)
	if err != nil {
		return fmt.Errorf("read --new: %w", err)
	}
	known, err := seen.ReadPostingsAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	unseen, stats := seen.Diff(incoming, known)
	if err := seen.WritePostings(c.Out, unseen); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if !c.Stats {
		return nil
	}
	_, err = fmt.Fprintf(ctx.Out,
		"total_new=%d total_seen=%d invalid_skipped=%d unseen_emitted=%d\n",
		stats.TotalNew, stats.TotalSeen, stats.InvalidSkipped(), stats.Unseen,
	)
	return err
}

func (c *SeenUpdateCmd) Run(ctx *Context) error {
	known, err := seen.ReadPostingsAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}
	input, err := seen.ReadPostings(c.Input)
	if err != nil {
		return fmt.Errorf("read --input: %w", err)
	}

	merged, stats := seen.Merge(known, input)
	out := c.Out
	if out == "" {
		out = c.Seen
	}
	if err := seen.WritePostings(out, merged); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	if !c.Stats {
		return nil
	}
	_, err = fmt.Fprintf(ctx.Out,
		"total_seen=%d total_input=%d invalid_skipped=%d added=%d total_out=%d\n",
		stats.TotalSeen, stats.TotalInput, stats.InvalidSkipped(), stats.Added, stats.TotalOut,
	)
	return err
}
