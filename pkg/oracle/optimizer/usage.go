// Package optimizer reads R8 and ProGuard usage reports (usage.txt), which
// list every class and member the shrinker removed as unused.
package optimizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// lineRange matches the "12:14:" source line prefix R8 puts on members.
var lineRange = regexp.MustCompile(`^\d+:\d+:`)

// Report is a parsed usage.txt.
type Report struct {
	classes map[string]bool
	members map[string]map[string]bool
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		classes: make(map[string]bool),
		members: make(map[string]map[string]bool),
	}
}

// Load reads and merges usage files.
func Load(paths ...string) (*Report, error) {
	r := NewReport()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open usage report: %w", err)
		}
		err = r.Read(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse usage report %s: %w", p, err)
		}
	}
	return r, nil
}

// Read merges one usage.txt into r.
//
// An unindented line names a class. A class line ending in ':' introduces
// removed members on the following indented lines; without the colon the
// whole class was removed.
func (r *Report) Read(in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	current := ""
	for sc.Scan() {
		raw := sc.Text()
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if raw[0] != ' ' && raw[0] != '\t' {
			if cls, ok := strings.CutSuffix(text, ":"); ok {
				current = className(cls)
				continue
			}
			r.classes[className(text)] = true
			current = ""
			continue
		}
		if current == "" {
			continue
		}
		if name := memberName(current, text); name != "" {
			set, ok := r.members[current]
			if !ok {
				set = make(map[string]bool)
				r.members[current] = set
			}
			set[name] = true
		}
	}
	return sc.Err()
}

// Boost implements confidence.Optimizer.
//
// It returns 1 when the class was removed, or when member was removed under
// its own name or a JVM accessor name. It returns 0.5 when only a synthetic
// variant of member was removed, such as foo$default or a mangled foo-abc12.
func (r *Report) Boost(class, member string) float64 {
	if r.classes[class] {
		return 1
	}
	if member == "" {
		return 0
	}
	removed := r.members[class]
	if len(removed) == 0 {
		return 0
	}
	for _, alias := range aliases(member) {
		if removed[alias] {
			return 1
		}
	}
	for name := range removed {
		if synthetic(name, member) {
			return 0.5
		}
	}
	return 0
}

// DeadClasses implements confidence.Optimizer. The result is sorted.
func (r *Report) DeadClasses() []string {
	out := make([]string, 0, len(r.classes))
	for c := range r.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DeadMembers implements confidence.Optimizer. Member lists are sorted.
func (r *Report) DeadMembers() map[string][]string {
	out := make(map[string][]string, len(r.members))
	for c, set := range r.members {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		out[c] = names
	}
	return out
}

// Len returns the number of classes with any removal.
func (r *Report) Len() int {
	n := len(r.classes)
	for c := range r.members {
		if !r.classes[c] {
			n++
		}
	}
	return n
}

func className(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "$", ".")
}

// memberName extracts the member name from a usage line such as
// "12:14:public void load(java.lang.String)" or "private int count".
// Constructors are reported as <init>.
func memberName(class, text string) string {
	text = lineRange.ReplaceAllString(text, "")
	if i := strings.IndexByte(text, '('); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name := fields[len(fields)-1]
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	simple := class
	if i := strings.LastIndexByte(simple, '.'); i >= 0 {
		simple = simple[i+1:]
	}
	if name == simple || name == "<init>" {
		return "<init>"
	}
	return name
}

func aliases(member string) []string {
	if member == "<init>" || member == "" {
		return []string{member}
	}
	upper := strings.ToUpper(member[:1]) + member[1:]
	return []string{member, "get" + upper, "set" + upper, "is" + upper}
}

func synthetic(name, member string) bool {
	return name == member+"$default" ||
		name == "access$"+member ||
		strings.HasPrefix(name, member+"-") ||
		strings.HasPrefix(name, member+"$lambda")
}
