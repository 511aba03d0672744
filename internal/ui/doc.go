// Package ui implements the terminal presentation for the CLI.
//
// [Palette] holds the lipgloss styles used for command output. [MenuModel] is a small
// bubbletea program that lists the actions plugins added to the host's menus and
// triggers the selected one:
//  1. [MenuView] : Browse actions by location
//  2. [ResultView] : Show the outcome of the last triggered action
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
