package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/backstack"
)

// GenerateMermaid produces a Mermaid flowchart of a back stack, oldest element first.
// Shapes follow the element state:
// - On screen: ([Stadium])
// - Stashed: [Rectangle]
// - Destroyed: [/Parallelogram/]
// Elements still in transition are linked with a dotted arrow labelled with the
// operation that moved them.
func GenerateMermaid(st waypoint.State) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	ids := make([]string, len(st.Elements))
	for i := len(st.Elements) - 1; i >= 0; i-- {
		el := st.Elements[i]
		ids[i] = fmt.Sprintf("e%d", el.ID)

		opener, closer := "[", "]"
		switch el.TargetState {
		case backstack.OnScreen:
			opener, closer = "([", "])"
		case backstack.Destroyed:
			opener, closer = "[/", "/]"
		}
		label := fmt.Sprintf("%s #%d", escape(el.Target), el.ID)
		if el.FromState != el.TargetState {
			label = fmt.Sprintf("%s <br/> %s → %s", label, el.FromState, el.TargetState)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", ids[i], opener, label, closer))
	}

	for i := len(st.Elements) - 1; i > 0; i-- {
		newer := st.Elements[i-1]
		arrow := "-->"
		if newer.FromState != newer.TargetState && newer.Operation != "" {
			arrow = fmt.Sprintf("-. %s .->", newer.Operation)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", ids[i], arrow, ids[i-1]))
	}

	if st.Active != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class e%d active;\n", st.Active.ID))
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
