// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	id   lipgloss.Style
	time lipgloss.Style
	name lipgloss.Style
}

// newStyles binds the output styles to w. Writers that are not terminals
// get plain text.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		id:   r.NewStyle().Foreground(lipgloss.Color("8")),
		time: r.NewStyle().Faint(true),
		name: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
	}
}
