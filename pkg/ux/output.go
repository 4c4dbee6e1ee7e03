// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders CLI output with the Aleutian palette.
//
// A Printer picks one of three modes: styled output for terminals, plain
// text when the writer is a pipe or file, and a tab-separated machine mode
// for scripts (--json users get JSON from the commands instead).
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E") // borders
	ColorSlate       = lipgloss.Color("#2C4A54") // muted text

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Step    lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Step:    lipgloss.NewStyle().Foreground(ColorTealPrimary).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Mode selects how a Printer formats output.
type Mode int

const (
	// ModeStyled uses colors and boxes.
	ModeStyled Mode = iota
	// ModePlain uses icons without colors.
	ModePlain
	// ModeMachine prints "KEY: value" lines without decoration.
	ModeMachine
)

// Printer writes user-facing CLI output.
//
// Thread Safety: Not safe for concurrent use; callers serialize writes.
type Printer struct {
	w    io.Writer
	mode Mode
}

// NewPrinter returns a Printer for w. Styled output is used only when w is
// a terminal; machine forces ModeMachine.
func NewPrinter(w io.Writer, machine bool) *Printer {
	switch {
	case machine:
		return &Printer{w: w, mode: ModeMachine}
	case IsTerminal(w):
		return &Printer{w: w, mode: ModeStyled}
	default:
		return &Printer{w: w, mode: ModePlain}
	}
}

// NewPrinterMode returns a Printer with an explicit mode.
func NewPrinterMode(w io.Writer, mode Mode) *Printer {
	return &Printer{w: w, mode: mode}
}

// IsTerminal reports whether w is a TTY (or a Cygwin terminal).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Mode returns the printer's mode.
func (p *Printer) Mode() Mode { return p.mode }

// Title prints a heading. Machine mode omits it.
func (p *Printer) Title(text string) {
	switch p.mode {
	case ModeMachine:
	case ModePlain:
		fmt.Fprintln(p.w, text)
	default:
		fmt.Fprintln(p.w, Styles.Title.Render(text))
	}
}

// Success prints a success line.
func (p *Printer) Success(text string) { p.status(IconSuccess, "OK", Styles.Success, text) }

// Warning prints a warning line.
func (p *Printer) Warning(text string) { p.status(IconWarning, "WARN", Styles.Warning, text) }

// Error prints an error line.
func (p *Printer) Error(text string) { p.status(IconError, "ERROR", Styles.Error, text) }

func (p *Printer) status(icon Icon, tag string, style lipgloss.Style, text string) {
	switch p.mode {
	case ModeMachine:
		fmt.Fprintf(p.w, "%s: %s\n", tag, text)
	case ModePlain:
		fmt.Fprintf(p.w, "%s %s\n", icon, text)
	default:
		fmt.Fprintf(p.w, "%s %s\n", icon.Render(), style.Render(text))
	}
}

// Field prints a labelled value.
func (p *Printer) Field(label string, value any) {
	switch p.mode {
	case ModeMachine:
		fmt.Fprintf(p.w, "%s\t%v\n", strings.ToUpper(strings.ReplaceAll(label, " ", "_")), value)
	case ModePlain:
		fmt.Fprintf(p.w, "%s: %v\n", label, value)
	default:
		fmt.Fprintf(p.w, "%s %v\n", Styles.Muted.Render(label+":"), value)
	}
}

// Steps prints a plan, one numbered line per non-empty step.
func (p *Printer) Steps(steps [][]string) {
	n := 0
	for _, step := range steps {
		if len(step) == 0 {
			continue
		}
		n++
		line := strings.Join(step, ", ")
		switch p.mode {
		case ModeMachine:
			fmt.Fprintf(p.w, "%d\t%s\n", n, line)
		case ModePlain:
			fmt.Fprintf(p.w, "%d: %s\n", n, line)
		default:
			fmt.Fprintf(p.w, "%s %s\n", Styles.Step.Render(fmt.Sprintf("%2d", n)), line)
		}
	}
}

// Box prints content under a title, boxed in styled mode.
func (p *Printer) Box(title, content string) {
	switch p.mode {
	case ModeMachine:
		fmt.Fprintf(p.w, "%s: %s\n", title, content)
	case ModePlain:
		fmt.Fprintf(p.w, "%s\n%s\n", title, content)
	default:
		fmt.Fprintln(p.w, Styles.Box.Width(60).Render(Styles.Title.Render(title)+"\n"+content))
	}
}
