// Package coverage loads JaCoCo XML reports (including Kover's
// JaCoCo-compatible export) and answers line, method and class execution
// queries.
package coverage

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/analyzer/confidence"
)

// MaxReportSize bounds a single report file.
const MaxReportSize = 256 * 1024 * 1024

type counter struct {
	Type    string `xml:"type,attr"`
	Missed  int64  `xml:"missed,attr"`
	Covered int64  `xml:"covered,attr"`
}

type method struct {
	Name     string    `xml:"name,attr"`
	Desc     string    `xml:"desc,attr"`
	Line     uint32    `xml:"line,attr"`
	Counters []counter `xml:"counter"`
}

type class struct {
	Name       string    `xml:"name,attr"`
	SourceFile string    `xml:"sourcefilename,attr"`
	Methods    []method  `xml:"method"`
	Counters   []counter `xml:"counter"`
}

type line struct {
	Nr uint32 `xml:"nr,attr"`
	MI int64  `xml:"mi,attr"`
	CI int64  `xml:"ci,attr"`
	MB int64  `xml:"mb,attr"`
	CB int64  `xml:"cb,attr"`
}

type sourceFile struct {
	Name  string `xml:"name,attr"`
	Lines []line `xml:"line"`
}

type pkg struct {
	Name        string       `xml:"name,attr"`
	Classes     []class      `xml:"class"`
	SourceFiles []sourceFile `xml:"sourcefile"`
}

type report struct {
	XMLName  xml.Name `xml:"report"`
	Name     string   `xml:"name,attr"`
	Packages []pkg    `xml:"package"`
	// Multi-module reports nest packages in groups.
	Groups []group `xml:"group"`
}

type group struct {
	Name     string  `xml:"name,attr"`
	Packages []pkg   `xml:"package"`
	Groups   []group `xml:"group"`
}

// Set is merged execution data from one or more reports. It is safe for
// concurrent reads once loading is done.
type Set struct {
	mu      sync.RWMutex
	classes map[string]confidence.CoverageState
	methods map[string]confidence.CoverageState
	// lines is keyed by package-relative source path, e.g. com/app/Foo.kt.
	lines map[string]map[uint32]confidence.CoverageState
	// byBase maps a file base name to the source paths that end in it.
	byBase map[string][]string
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{
		classes: make(map[string]confidence.CoverageState),
		methods: make(map[string]confidence.CoverageState),
		lines:   make(map[string]map[uint32]confidence.CoverageState),
		byBase:  make(map[string][]string),
	}
}

// Load reads and merges every report in paths.
func Load(paths ...string) (*Set, error) {
	s := NewSet()
	for _, p := range paths {
		if err := s.LoadFile(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadFile merges one report file into s.
func (s *Set) LoadFile(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("stat coverage report: %w", err)
	}
	if info.Size() > MaxReportSize {
		return fmt.Errorf("coverage report too large: %s (%d bytes)", p, info.Size())
	}
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("open coverage report: %w", err)
	}
	defer f.Close()
	if err := s.Read(f); err != nil {
		return fmt.Errorf("parse coverage report %s: %w", p, err)
	}
	return nil
}

// Read merges one JaCoCo XML document into s.
func (s *Set) Read(r io.Reader) error {
	var rep report
	if err := xml.NewDecoder(r).Decode(&rep); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range rep.Packages {
		s.addPackage(p)
	}
	for _, g := range rep.Groups {
		s.addGroup(g)
	}
	return nil
}

func (s *Set) addGroup(g group) {
	for _, p := range g.Packages {
		s.addPackage(p)
	}
	for _, sub := range g.Groups {
		s.addGroup(sub)
	}
}

func (s *Set) addPackage(p pkg) {
	for _, c := range p.Classes {
		name := ClassName(c.Name)
		s.classes[name] = Merge(s.classes[name], stateOf(c.Counters))
		for _, m := range c.Methods {
			key := name + "#" + m.Name
			s.methods[key] = Merge(s.methods[key], stateOf(m.Counters))
		}
	}
	for _, sf := range p.SourceFiles {
		key := sf.Name
		if p.Name != "" {
			key = path.Join(p.Name, sf.Name)
		}
		lines, ok := s.lines[key]
		if !ok {
			lines = make(map[uint32]confidence.CoverageState, len(sf.Lines))
			s.lines[key] = lines
			s.byBase[sf.Name] = append(s.byBase[sf.Name], key)
		}
		for _, l := range sf.Lines {
			lines[l.Nr] = Merge(lines[l.Nr], lineState(l))
		}
	}
}

// LineState implements confidence.Coverage. file may be any path that ends
// in the report's package-relative source path.
func (s *Set) LineState(file string, lineNr uint32) confidence.CoverageState {
	file = filepath.ToSlash(file)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range s.byBase[path.Base(file)] {
		if file == key || strings.HasSuffix(file, "/"+key) {
			return s.lines[key][lineNr]
		}
	}
	return confidence.CoverageUnknown
}

// MethodState implements confidence.Coverage. Overloads share a state.
func (s *Set) MethodState(className, methodName string) confidence.CoverageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.methods[className+"#"+methodName]
}

// ClassState implements confidence.Coverage.
func (s *Set) ClassState(className string) confidence.CoverageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes[className]
}

// Len returns the number of classes known to the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.classes)
}

// ClassName converts a JVM internal name (com/app/Outer$Inner) to the
// dotted form used for declarations (com.app.Outer.Inner).
func ClassName(internal string) string {
	return strings.NewReplacer("/", ".", "$", ".").Replace(internal)
}

// Merge combines the states of two runs. Any execution wins over none.
func Merge(a, b confidence.CoverageState) confidence.CoverageState {
	if rank(b) > rank(a) {
		return b
	}
	return a
}

func rank(s confidence.CoverageState) int {
	switch s {
	case confidence.CoverageCovered:
		return 3
	case confidence.CoveragePartial:
		return 2
	case confidence.CoverageUncovered:
		return 1
	}
	return 0
}

// stateOf prefers instruction counters and falls back to line counters.
func stateOf(counters []counter) confidence.CoverageState {
	var pick *counter
	for i := range counters {
		switch counters[i].Type {
		case "INSTRUCTION":
			pick = &counters[i]
		case "LINE":
			if pick == nil {
				pick = &counters[i]
			}
		}
	}
	if pick == nil {
		return confidence.CoverageUnknown
	}
	return classify(pick.Covered, pick.Missed)
}

func lineState(l line) confidence.CoverageState {
	return classify(l.CI+l.CB, l.MI+l.MB)
}

func classify(covered, missed int64) confidence.CoverageState {
	switch {
	case covered == 0 && missed == 0:
		return confidence.CoverageUnknown
	case covered == 0:
		return confidence.CoverageUncovered
	case missed == 0:
		return confidence.CoverageCovered
	}
	return confidence.CoveragePartial
}
