package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/bobmcallan/finapps/internal/app"
	"github.com/bobmcallan/finapps/internal/common"
)

// usageError marks bad arguments; it maps to exit status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// exitStatus reports err on w and maps it to an exit status.
func exitStatus(w io.Writer, err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(w, "Error: %v\n", err)

	var ue *usageError
	if errors.As(err, &ue) {
		return subcommands.ExitUsageError
	}
	if common.IsRetryable(err) {
		fmt.Fprintln(w, "The database connection pool is busy; retry shortly.")
	}
	return subcommands.ExitFailure
}

// withApp opens the app for one command and closes it afterwards.
func withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := app.NewApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// parseDateFlag parses an optional YYYY-MM-DD flag value; empty is the zero time.
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := common.ParseDate(value)
	if err != nil {
		return time.Time{}, usagef("-%s: %v", name, err)
	}
	return d, nil
}

var stdout io.Writer = os.Stdout
var stderr io.Writer = os.Stderr
