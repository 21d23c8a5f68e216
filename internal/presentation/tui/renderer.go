package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// StackMarkdown lays a navigator state out as a markdown table, most recent first.
func StackMarkdown(st waypoint.State) string {
	var sb strings.Builder
	if st.SessionID != "" {
		sb.WriteString(fmt.Sprintf("### Session `%s`\n\n", st.SessionID))
	}
	sb.WriteString("| id | target | state | operation |\n")
	sb.WriteString("|---:|---|---|---|\n")
	for _, el := range st.Elements {
		state := el.TargetState.String()
		if el.FromState != el.TargetState {
			state = fmt.Sprintf("%s → %s", el.FromState, el.TargetState)
		}
		target := strings.ReplaceAll(el.Target, "|", `\|`)
		if st.Active != nil && st.Active.ID == el.ID {
			target = "**" + target + "**"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", el.ID, target, state, el.Operation))
	}

	if st.Frame.Animating {
		sb.WriteString(fmt.Sprintf("\n_segment %d/%d at %.0f%%_\n",
			st.Frame.Index+1, st.Frame.Segments, st.Frame.SegmentProgress*100))
	}
	if !st.CanHandleBack {
		sb.WriteString("\n_back leaves the stack_\n")
	}
	return sb.String()
}

// RenderStack renders st for the terminal.
func RenderStack(render func(string) (string, error), st waypoint.State) (string, error) {
	return render(StackMarkdown(st))
}
