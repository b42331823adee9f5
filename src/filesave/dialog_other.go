//go:build !windows

package filesave

// Native returns the platform's own save dialog, if it has one. Elsewhere the
// rendering surface shows the prompt.
func Native() (Prompter, bool) { return nil, false }
