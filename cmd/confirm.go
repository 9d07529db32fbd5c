package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

const (
	responseYes = "yes"
	responseY   = "y"
)

// statusOut receives confirmations and dry-run notices. Data goes to stdout.
var statusOut io.Writer = os.Stderr

// IsDryRun returns true if dry-run mode is enabled
func IsDryRun() bool {
	return dryRunFlag
}

// IsAssumeYes returns true if we should skip confirmation prompts
func IsAssumeYes() bool {
	return assumeYesFlag
}

// PrintDryRun prints a message indicating what would happen in dry-run mode
func PrintDryRun(format string, args ...interface{}) {
	yellow := color.New(color.FgYellow, color.Bold)
	_, _ = yellow.Fprint(statusOut, "[DRY-RUN] ")
	fmt.Fprintf(statusOut, format+"\n", args...)
}

// PrintSuccess prints a green check line.
func PrintSuccess(format string, args ...interface{}) {
	green := color.New(color.FgGreen)
	_, _ = green.Fprint(statusOut, "✓ ")
	fmt.Fprintf(statusOut, format+"\n", args...)
}

// reportCopy tells the user what landed on the clipboard. In a dry run the
// text itself is shown, since nothing was copied.
func reportCopy(what, text string) {
	if IsDryRun() {
		PrintDryRun("Would copy %s to the clipboard:", what)
		fmt.Fprint(statusOut, text)
		return
	}
	PrintSuccess("Copied %s to the clipboard", what)
}

// ConfirmPrompt asks the user for confirmation
func ConfirmPrompt(in io.Reader, message string) (bool, error) {
	if assumeYesFlag {
		return true, nil
	}

	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintf(statusOut, "%s [y/N]: ", message)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false, err
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == responseY || response == responseYes, nil
}

// ConfirmDestructive prompts for confirmation before a destructive action
func ConfirmDestructive(in io.Reader, action, detail string) (bool, error) {
	if dryRunFlag {
		PrintDryRun("Would %s (%s)", action, detail)
		return false, nil
	}

	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(statusOut, "Warning: You are about to %s\n", action)
	if detail != "" {
		fmt.Fprintf(statusOut, "  %s\n\n", detail)
	}

	return ConfirmPrompt(in, "Do you want to continue")
}
