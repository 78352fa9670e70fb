// Package ui renders notifications, history and account views for the
// terminal.
package ui

import (
	"fmt"
	"strings"

	"pocketbank-cli/internal/domain"
	"pocketbank-cli/internal/notify"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	labelStyle  = lipgloss.NewStyle().Faint(true).Width(18)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func severityStyle(s domain.Severity) (lipgloss.Style, string) {
	switch s {
	case domain.SeveritySuccess:
		return successStyle, "OK"
	case domain.SeverityError:
		return errorStyle, "ERROR"
	case domain.SeverityWarning:
		return warningStyle, "WARN"
	default:
		return infoStyle, "INFO"
	}
}

// Notification renders one queue entry as "[LABEL] text".
func Notification(n notify.Notification) string {
	style, label := severityStyle(n.Message.Severity)
	return style.Render("["+label+"]") + " " + n.Message.Text
}

// Hint renders a one-line status under a form field.
func Hint(text string, ok bool) string {
	if text == "" {
		return ""
	}
	if ok {
		return successStyle.Render(text)
	}
	return errorStyle.Render(text)
}

// Violations lists field problems one per line in field order.
func Violations(v domain.Violations) string {
	lines := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		lines = append(lines, errorStyle.Render("• ")+v[f])
	}
	return strings.Join(lines, "\n")
}

// SignedAmount prefixes outgoing amounts with "-" and incoming ones with "+".
func SignedAmount(r domain.Row) string {
	switch r.Direction {
	case domain.Out:
		return "-" + domain.FormatMoney(r.Amount)
	case domain.In:
		return "+" + domain.FormatMoney(r.Amount)
	default:
		return domain.FormatMoney(r.Amount)
	}
}

func History(rows []domain.Row) string {
	if len(rows) == 0 {
		return "No transactions yet."
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DATE", "TYPE", "DETAILS", "AMOUNT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(r.OccurredAt, string(r.Kind), r.Detail, SignedAmount(r))
	}
	return t.String()
}

func field(label, value string) string {
	return labelStyle.Render(label) + value
}

func Dashboard(d *domain.Dashboard) string {
	return strings.Join([]string{
		titleStyle.Render("Welcome, " + d.Name),
		field("Balance", domain.FormatMoney(d.Balance)),
	}, "\n")
}

func Balance(b *domain.BalanceStats) string {
	return strings.Join([]string{
		titleStyle.Render("Balance"),
		field("Current", domain.FormatMoney(b.Balance)),
		field("Deposited", domain.FormatMoney(b.TotalDeposit)),
		field("Withdrawn", domain.FormatMoney(b.TotalWithdrawal)),
		field("Spent", fmt.Sprintf("%s%%", b.SpentPercent.StringFixed(1))),
		field("Saved", fmt.Sprintf("%s%%", b.SavedPercent.StringFixed(1))),
	}, "\n")
}

func Profile(p *domain.Profile) string {
	lines := []string{
		titleStyle.Render("Profile"),
		field("Name", p.Name),
		field("Email", p.Email),
		field("Account", p.AccountNumber),
		field("Balance", domain.FormatMoney(p.Balance)),
	}
	if p.PictureURL != "" {
		lines = append(lines, field("Picture", p.PictureURL))
	}
	return strings.Join(lines, "\n")
}
