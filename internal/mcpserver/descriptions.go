package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeDeadCode() string {
	return `Finds unreachable declarations in Kotlin, Java and Android sources by whole-program reachability from entry points (main functions, manifest components, annotated and retained code).

USE WHEN:
- Cleaning up an Android app or JVM library before a release
- Reviewing a pull request for code it orphaned (use changed_since)
- Confirming removal candidates against test coverage or R8 output
- Sizing dead code before a refactoring

INTERPRETING RESULTS:
- confirmed: runtime evidence agrees (never executed in coverage, or removed by R8/ProGuard); safe to delete
- high: private declarations, parameters and imports; also medium findings the optimizer partly confirms
- medium: internal, protected or public code; callers outside the analyzed roots may exist
- low: executed at runtime despite being unreachable in the graph, so reflection or dispatch is likely
- runtime_confirmed=true means the coverage oracle raised the grade
- Members of a dead class are folded into the class finding
- mode=deep also reports unused members of reachable classes and assign-only properties

METRICS RETURNED:
- findings: location, kind, name, fqn, issue, confidence, message, fingerprint
- cycles: dead strongly connected groups and zombie pairs
- summary: files, declarations, reachable, entry points, counts by issue and confidence

Note: Generated code and callers outside the analyzed roots can cause false positives. Pass coverage or optimizer_usage to confirm.`
}

func describeDeadCycles() string {
	return `Detects dead cycles: groups of declarations that only reference each other and are unreachable from any entry point. Simple unused-code checks miss these because every member has an inbound reference.

USE WHEN:
- Findings include classes you believe are used because something calls them
- Removing a feature left mutually-dependent leftovers
- Visualizing which declarations must be deleted together

INTERPRETING RESULTS:
- Each cycle lists its members in order and the edges between them; delete the whole group at once
- zombie_pairs are two declarations that reference only each other outside any larger cycle
- largest_cycle_size hints at how much was orphaned by a single removal

METRICS RETURNED:
- cycles: members, names, edges, is_dead, size
- zombie_pairs: the two declarations of each pair
- stats: num_dead_cycles, largest_cycle_size, total_declarations_in_cycles, num_zombie_pairs`
}
