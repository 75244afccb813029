// Package console drives a tracker session from a terminal: stdin lines
// are the activity-signal source and simple commands stand in for the
// visibility and shop interactions a graphical host would provide.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/okian/focusforge/internal/domain/progress"
	"github.com/okian/focusforge/internal/tracker"
	"github.com/okian/focusforge/pkg/logger"
)

// Config carries the session parameters for one console run.
type Config struct {
	Username string
	Password string
	Register bool
}

// Runner wires a tracker to an input stream and an output writer.
type Runner struct {
	tracker *tracker.Tracker
	in      io.Reader
	out     io.Writer
	logger  logger.Logger
}

// NewRunner creates a console runner for the given tracker.
func NewRunner(t *tracker.Tracker, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		tracker: t,
		in:      in,
		out:     out,
		logger:  logger.Get().Named("console"),
	}
}

// Run establishes a session and processes commands until the input
// stream ends or the user quits.
func (r *Runner) Run(ctx context.Context, cfg Config) error {
	if cfg.Register {
		if err := r.tracker.Register(ctx, cfg.Username, cfg.Password); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintln(r.out, "registered successfully")
	}

	if !r.tracker.Bootstrap(ctx) {
		if err := r.tracker.Login(ctx, cfg.Username, cfg.Password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}
	username, _ := r.tracker.Username()
	fmt.Fprintf(r.out, "tracking focus for %s; every line is an activity signal\n", username)
	r.printHelp()

	r.tracker.Start(ctx)
	defer r.tracker.Stop()

	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Any input counts as activity before it is interpreted.
		r.tracker.Signal()

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "hide":
			r.tracker.Hidden()
			fmt.Fprintln(r.out, "tab hidden")
		case "show":
			r.tracker.Shown()
			fmt.Fprintln(r.out, "tab visible")
		case "shop":
			r.printShop()
		case "stats":
			r.printStats()
		case "buy":
			r.buy(fields)
		case "equip":
			r.equip(fields)
		case "logout":
			r.tracker.Logout(ctx)
			fmt.Fprintln(r.out, "logged out")
			return nil
		case "quit", "exit":
			return nil
		case "help":
			r.printHelp()
		default:
			// Plain activity; nothing else to do.
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (r *Runner) printHelp() {
	fmt.Fprintln(r.out, "commands: hide | show | shop | stats | buy <id> | equip <id> | logout | quit")
}

func (r *Runner) printStats() {
	snap := r.tracker.Snapshot()
	fmt.Fprintf(r.out, "screen %s  focus %s  distractions %d  points %d\n",
		progress.FormatSeconds(snap.TotalSeconds),
		progress.FormatSeconds(snap.FocusSeconds),
		snap.DistractionCount,
		progress.DisplayPoints(snap.Points),
	)
}

func (r *Runner) printShop() {
	snap := r.tracker.Snapshot()
	for _, item := range progress.Catalog() {
		status := fmt.Sprintf("%d pts", item.Cost)
		switch {
		case snap.Equipped.Get(item.Slot) == item.ID:
			status = "equipped"
		case snap.Owns(item.ID):
			status = "owned"
		}
		fmt.Fprintf(r.out, "%s %s %-14s [%s]\n", item.Icon, item.ID, item.Name, status)
	}
}

func (r *Runner) buy(fields []string) {
	if len(fields) < 2 {
		fmt.Fprintln(r.out, "usage: buy <item-id>")
		return
	}
	item, ok := progress.Lookup(fields[1])
	if !ok {
		fmt.Fprintln(r.out, "unknown item")
		return
	}
	// Purchases fail silently in the model, so pre-check for feedback.
	snap := r.tracker.Snapshot()
	switch {
	case snap.Owns(item.ID):
		fmt.Fprintln(r.out, "already owned")
	case snap.Points < float64(item.Cost):
		fmt.Fprintln(r.out, "not enough points")
	case r.tracker.Purchase(item):
		fmt.Fprintf(r.out, "bought and equipped %s\n", item.Name)
	}
}

func (r *Runner) equip(fields []string) {
	if len(fields) < 2 {
		fmt.Fprintln(r.out, "usage: equip <item-id>")
		return
	}
	item, ok := progress.Lookup(fields[1])
	if !ok {
		fmt.Fprintln(r.out, "unknown item")
		return
	}
	if !r.tracker.Equip(item) {
		fmt.Fprintln(r.out, "item not owned")
		return
	}
	fmt.Fprintf(r.out, "equipped %s\n", item.Name)
}
