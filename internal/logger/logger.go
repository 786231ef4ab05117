// Package logger writes the CLI and API's human-facing log lines:
// timestamped, tagged, color-coded when the terminal supports it. It
// never participates in control flow; callers that need an error to
// propagate return it, they don't log-and-swallow here.
package logger

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
	white  = "\033[37m"

	tagWidth = 8
)

var useColors = false

func init() {
	if runtime.GOOS != "windows" {
		useColors = true
		return
	}
	// Windows Terminal, VS Code's terminal, and ConEmu handle ANSI;
	// classic cmd.exe needs VT mode switched on first.
	if os.Getenv("WT_SESSION") != "" ||
		os.Getenv("TERM_PROGRAM") != "" ||
		os.Getenv("ANSICON") != "" ||
		os.Getenv("ConEmuANSI") == "ON" {
		useColors = true
		return
	}
	useColors = enableWindowsVT()
}

func paint(color, text string) string {
	if !useColors {
		return text
	}
	return color + text + reset
}

func padTag(tag string) string {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		tag = "CORE"
	}
	if len(tag) > tagWidth {
		return tag[:tagWidth]
	}
	return tag + strings.Repeat(" ", tagWidth-len(tag))
}

func emit(color, mark, tag, msg string) {
	ts := paint(dim, time.Now().Format("15:04:05"))
	fmt.Printf("%s %s %s %s\n", ts, paint(color+bold, mark), paint(cyan, padTag(tag)), msg)
}

// Info prints an informational line.
func Info(tag, msg string) {
	emit(blue, "·", tag, msg)
}

// Success prints a completed-step line.
func Success(tag, msg string) {
	emit(green, "✓", tag, msg)
}

// Warn prints a warning line.
func Warn(tag, msg string) {
	emit(yellow, "!", tag, msg)
}

// Error prints an error line.
func Error(tag, msg string) {
	emit(red, "✗", tag, msg)
}

// Banner prints the startup header.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println()
	fmt.Println(paint(yellow+bold, "  catalogengine ") + paint(dim, version))
	fmt.Println(paint(white, "  trend & viability analysis for dropshipping catalogs"))
	fmt.Println()
}

// Section prints a titled divider before a block of output.
func Section(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "section"
	}
	fmt.Printf("\n%s %s\n", paint(cyan+bold, "──"), paint(white+bold, title))
}

// Server prints the listening address once the HTTP surface is up.
func Server(addr string) {
	fmt.Println()
	Success("SERVER", "listening on "+paint(cyan+bold, "http://"+addr))
	fmt.Println(paint(dim, "           press Ctrl+C to stop"))
	fmt.Println()
}
