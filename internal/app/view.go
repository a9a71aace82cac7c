package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Vinw199/Voice-note/internal/note"
	"github.com/Vinw199/Voice-note/internal/session"
	"github.com/Vinw199/Voice-note/internal/ui"
)

const cursor = "▌"

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch m.screen {
	case ScreenLoading:
		sections = append(sections, ui.DimStyle.Render("  Restoring session..."))
	case ScreenLogin, ScreenSignup:
		sections = append(sections, m.renderForm())
	case ScreenList:
		sections = append(sections, m.renderList())
	case ScreenViewer:
		sections = append(sections, m.renderViewer())
	case ScreenEditor:
		sections = append(sections, m.renderEditor())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	if m.flash != "" {
		if m.flashErr {
			sections = append(sections, ui.ErrorTextStyle.Render(m.flash))
		} else {
			sections = append(sections, ui.InfoStyle.Render(m.flash))
		}
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("VOICE NOTES")
	if m.identity != nil && m.identity.Email != "" {
		title += ui.DimStyle.Render(" · " + m.identity.Email)
	}
	return title
}

func (m Model) renderForm() string {
	heading := "Sign in"
	if m.screen == ScreenSignup {
		heading = "Create account"
	}

	lines := []string{ui.FieldLabelActiveStyle.Render(heading), ""}
	lines = append(lines, renderField("Email", m.email, m.formField == fieldEmail))
	lines = append(lines, renderField("Password", strings.Repeat("•", len([]rune(m.password))), m.formField == fieldPassword))
	lines = append(lines, "")

	switch {
	case m.submitting:
		lines = append(lines, ui.SavingStyle.Render("  Working..."))
	case m.formErr != "":
		lines = append(lines, ui.ErrorStyle.Render("  Error: ")+ui.ErrorTextStyle.Render(m.formErr))
	case m.formInfo != "":
		lines = append(lines, ui.InfoStyle.Render("  "+m.formInfo))
	}
	return strings.Join(lines, "\n")
}

func renderField(label, value string, active bool) string {
	if active {
		return "  " + ui.FieldLabelActiveStyle.Render(padRight(label+":", 10)) + value + cursor
	}
	return "  " + ui.FieldLabelStyle.Render(padRight(label+":", 10)) + value
}

func (m Model) renderList() string {
	var lines []string

	if m.searching || m.query != "" {
		q := m.query
		if m.searching {
			q += cursor
		}
		lines = append(lines, "  "+ui.FieldLabelActiveStyle.Render("Search: ")+q, "")
	}

	if m.confirmDelete != "" {
		title := m.confirmDelete
		for _, n := range m.notesList {
			if n.ID == m.confirmDelete {
				title = n.Title
			}
		}
		lines = append(lines, ui.ErrorStyle.Render(fmt.Sprintf("  Delete %q? This cannot be undone. (y/n)", title)), "")
	}

	switch {
	case m.listErr != "":
		lines = append(lines, ui.ErrorStyle.Render("  Error: ")+ui.ErrorTextStyle.Render(m.listErr))
	case len(m.notesList) == 0 && m.listLoading:
		lines = append(lines, ui.DimStyle.Render("  Loading notes..."))
	case len(m.notesList) == 0 && strings.TrimSpace(m.query) != "":
		lines = append(lines, ui.DimStyle.Render(fmt.Sprintf("  No notes match %q.", strings.TrimSpace(m.query))))
	case len(m.notesList) == 0:
		lines = append(lines, ui.DimStyle.Render("  No notes yet. Press n to create one."))
	default:
		width := max(20, m.width-4)
		for i, n := range m.notesList {
			lines = append(lines, m.renderListItem(n, i == m.selected, width)...)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderListItem(n note.Summary, selected bool, width int) []string {
	date := ui.DateStyle.Render(note.ShortDate(n.UpdatedAt))
	titleWidth := max(10, width-lipgloss.Width(date)-3)
	title := truncateToWidth(n.Title, titleWidth)

	var head string
	if selected {
		head = ui.SelectedStyle.Render("> " + padRight(title, titleWidth))
	} else {
		head = "  " + padRight(title, titleWidth)
	}
	lines := []string{head + " " + date}

	if preview := note.Preview(n.Content, previewLength); preview != "" {
		lines = append(lines, ui.DimStyle.Render("    "+truncateToWidth(preview, width-2)))
	}
	return lines
}

func (m Model) renderViewer() string {
	if m.viewing == nil {
		if m.viewErr != "" {
			return ui.ErrorStyle.Render("  Error: ") + ui.ErrorTextStyle.Render(m.viewErr)
		}
		return ui.DimStyle.Render("  Loading note...")
	}

	n := m.viewing
	lines := []string{
		"  " + ui.TitleStyle.Render(n.Title),
		"  " + ui.DateStyle.Render("Updated "+note.ShortDate(n.UpdatedAt)),
		"",
	}
	for _, l := range wrapText(n.Content, max(10, m.width-4)) {
		lines = append(lines, "  "+l)
	}
	if m.viewErr != "" {
		lines = append(lines, "", ui.ErrorStyle.Render("  Error: ")+ui.ErrorTextStyle.Render(m.viewErr))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEditor() string {
	s := m.sess
	if s == nil {
		return ""
	}
	d := s.Draft()

	heading := "New note"
	if d.Base != nil {
		heading = "Editing"
	}
	lines := []string{"  " + ui.FieldLabelActiveStyle.Render(heading) + "  " + m.renderRecordingStatus(), ""}

	lines = append(lines, renderField("Title", d.Title, m.editorField == fieldTitle))
	lines = append(lines, "")

	label := ui.FieldLabelStyle
	if m.editorField == fieldContent {
		label = ui.FieldLabelActiveStyle
	}
	lines = append(lines, "  "+label.Render("Content:"))

	body := d.Content
	if m.editorField == fieldContent {
		body += cursor
	}
	wrapped := wrapText(body, max(10, m.width-6))
	if interim := s.Interim(); interim != "" {
		last := len(wrapped) - 1
		wrapped[last] += " " + ui.PartialTextStyle.Render(interim)
	}
	for _, l := range wrapped {
		lines = append(lines, "    "+l)
	}

	if m.editorErr != "" {
		lines = append(lines, "", ui.ErrorStyle.Render("  Error: ")+ui.ErrorTextStyle.Render(m.editorErr))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRecordingStatus() string {
	s := m.sess
	var parts []string
	switch {
	case !s.CanRecord():
		parts = append(parts, ui.DimStyle.Render("mic unavailable"))
	case s.Stream() == session.Listening:
		parts = append(parts, ui.RecordingDotStyle.Render("● REC"))
	default:
		parts = append(parts, ui.IdleDotStyle.Render("○ IDLE"))
	}
	if s.Saving() {
		parts = append(parts, ui.SavingStyle.Render("Saving..."))
	}
	return strings.Join(parts, "  ")
}

func footerKey(key, desc string) string {
	return ui.FooterKeyStyle.Render(key) + ui.FooterDescStyle.Render(" "+desc)
}

func (m Model) renderFooter() string {
	var parts []string

	switch m.screen {
	case ScreenLogin:
		parts = append(parts, footerKey("Enter", "Sign in"), footerKey("Tab", "Field"), footerKey("Ctrl+N", "Sign up"))
	case ScreenSignup:
		parts = append(parts, footerKey("Enter", "Create"), footerKey("Tab", "Field"), footerKey("Esc", "Back"))
	case ScreenList:
		switch {
		case m.confirmDelete != "":
			parts = append(parts, footerKey("y", "Delete"), footerKey("n", "Keep"))
		case m.searching:
			parts = append(parts, footerKey("Enter/Esc", "Done"))
		default:
			parts = append(parts,
				footerKey("n", "New"),
				footerKey("Enter", "Open"),
				footerKey("d", "Delete"),
				footerKey("/", "Search"),
				footerKey("j/k", "Nav"),
				footerKey("x", "Sign out"),
				footerKey("q", "Quit"),
			)
		}
	case ScreenViewer:
		parts = append(parts, footerKey("e", "Edit"), footerKey("r", "Reload"), footerKey("Esc", "Back"))
	case ScreenEditor:
		rec := "Record"
		if m.sess != nil && m.sess.Stream() == session.Listening {
			rec = "Stop"
		}
		parts = append(parts,
			footerKey("Ctrl+S", "Save"),
			footerKey("Ctrl+R", rec),
			footerKey("Tab", "Field"),
			footerKey("Esc", "Cancel"),
		)
	}

	parts = append(parts, footerKey("Ctrl+C", "Exit"))
	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	// Simple truncation for non-styled strings
	runes := []rune(s)
	if width > 1 && len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
