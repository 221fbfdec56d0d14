package tui

import (
	"fmt"
	"strings"

	"github.com/lox/bountybot/internal/arena"
)

// RenderStandings formats a finished match for plain terminal output.
func RenderStandings(res arena.Result) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" final standings "))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("%d rounds", res.Rounds)))
	b.WriteString("\n\n")

	for i, name := range res.Names {
		b.WriteString(NameStyle.Render(fmt.Sprintf("%-12s", name)))
		b.WriteString(netStyle(res.Bankrolls[i]).Render(fmt.Sprintf("%+d", res.Bankrolls[i])))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if winner := res.Winner(); winner != "" {
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("%s wins", winner)))
	} else {
		b.WriteString(WarningStyle.Render("dead heat"))
	}
	b.WriteString("\n")

	return b.String()
}
