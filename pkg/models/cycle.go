package models

import (
	"fmt"
	"strings"
)

// CycleInfo describes one strongly connected component of the reference graph.
type CycleInfo struct {
	Members []DeclarationID `json:"members"`
	Names   []string        `json:"names"`
	Edges   []CycleEdge     `json:"edges,omitempty"`
	IsDead  bool            `json:"is_dead"`
	Size    int             `json:"size"`
}

// CycleEdge is a reference between two cycle members, by display name.
type CycleEdge struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Kind ReferenceKind `json:"kind"`
}

// ZombiePair is two unreachable declarations that only reference each other.
type ZombiePair struct {
	A     DeclarationID `json:"a"`
	B     DeclarationID `json:"b"`
	NameA string        `json:"name_a"`
	NameB string        `json:"name_b"`
}

// CycleStats aggregates a cycle report.
type CycleStats struct {
	NumDeadCycles             int `json:"num_dead_cycles"`
	LargestCycleSize          int `json:"largest_cycle_size"`
	TotalDeclarationsInCycles int `json:"total_declarations_in_cycles"`
	NumZombiePairs            int `json:"num_zombie_pairs"`
}

// CycleReport is the output of dead cycle detection.
type CycleReport struct {
	Cycles      []CycleInfo  `json:"cycles"`
	ZombiePairs []ZombiePair `json:"zombie_pairs"`
	Stats       CycleStats   `json:"stats"`
}

// ToMermaid renders dead cycles as a Mermaid flowchart, one subgraph per cycle.
func (r *CycleReport) ToMermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for i, c := range r.Cycles {
		fmt.Fprintf(&sb, "    subgraph cycle%d[\"cycle %d (%d)\"]\n", i+1, i+1, c.Size)
		for _, name := range c.Names {
			fmt.Fprintf(&sb, "        %s[\"%s\"]\n", mermaidID(i, name), name)
		}
		sb.WriteString("    end\n")
		for _, e := range c.Edges {
			arrow := "-->"
			switch e.Kind {
			case RefInheritance:
				arrow = "-.->|inherits|"
			case RefCall:
				arrow = "-->|calls|"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(i, e.From), arrow, mermaidID(i, e.To))
		}
	}
	for i, p := range r.ZombiePairs {
		a, b := mermaidID(-1-i, p.NameA), mermaidID(-1-i, p.NameB)
		fmt.Fprintf(&sb, "    %s[\"%s\"] <--> %s[\"%s\"]\n", a, p.NameA, b, p.NameB)
	}
	return sb.String()
}

func mermaidID(scope int, name string) string {
	var sb strings.Builder
	if scope < 0 {
		fmt.Fprintf(&sb, "z%d_", -scope)
	} else {
		fmt.Fprintf(&sb, "c%d_", scope+1)
	}
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
