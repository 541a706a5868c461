// Package entrypoint discovers the declarations a program is entered through:
// main functions, framework-managed classes and annotated members, plus any
// declaration retained by configuration.
package entrypoint

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// Reason says why a declaration is an entry point.
type Reason string

const (
	ReasonMain       Reason = "main"
	ReasonAnnotation Reason = "annotation"
	ReasonBaseClass  Reason = "base-class"
	ReasonRetained   Reason = "retained"
	ReasonPattern    Reason = "pattern"
	ReasonManifest   Reason = "manifest"
)

// DefaultAnnotations mark declarations invoked by test runners, dependency
// injection or reflection.
var DefaultAnnotations = []string{
	// Test runners.
	"Test", "ParameterizedTest", "RepeatedTest", "TestFactory",
	"Before", "After", "BeforeClass", "AfterClass",
	"BeforeEach", "AfterEach", "BeforeAll", "AfterAll",
	// Keep and reflection.
	"Keep", "UsedByReflection", "JavascriptInterface", "JsonCreator",
	// Dependency injection.
	"Inject", "Provides", "Binds", "BindsInstance", "IntoMap", "IntoSet",
	"Module", "Component", "Subcomponent", "EntryPoint",
	"HiltAndroidApp", "AndroidEntryPoint", "HiltViewModel", "HiltWorker",
	// Framework callbacks.
	"Preview", "BindingAdapter", "OnLifecycleEvent", "Subscribe",
	"SpringBootApplication", "RestController", "Controller", "Bean",
	"Configuration", "Service", "Repository",
}

// DefaultBaseClasses are framework types whose subclasses the platform
// instantiates.
var DefaultBaseClasses = []string{
	"Application", "Activity", "AppCompatActivity", "ComponentActivity",
	"FragmentActivity", "Fragment", "DialogFragment", "BottomSheetDialogFragment",
	"Service", "IntentService", "LifecycleService", "JobService",
	"BroadcastReceiver", "ContentProvider", "AppWidgetProvider",
	"ViewModel", "AndroidViewModel", "Worker", "CoroutineWorker", "ListenableWorker",
	"Instrumentation", "AndroidJUnitRunner",
	"TestCase",
}

// Detector finds entry points in a graph.
type Detector struct {
	main        bool
	annotations map[string]bool
	baseClasses map[string]bool
	retain      []string
	patterns    []*regexp.Regexp
	manifests   []*Manifest
	logger      *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector) error

// WithMain toggles main function detection. Enabled by default.
func WithMain(enabled bool) Option {
	return func(d *Detector) error {
		d.main = enabled
		return nil
	}
}

// WithAnnotations adds entry annotations to the defaults.
func WithAnnotations(names ...string) Option {
	return func(d *Detector) error {
		for _, n := range names {
			d.annotations[strings.TrimPrefix(n, "@")] = true
		}
		return nil
	}
}

// WithBaseClasses adds framework base classes to the defaults.
func WithBaseClasses(names ...string) Option {
	return func(d *Detector) error {
		for _, n := range names {
			d.baseClasses[simpleName(n)] = true
		}
		return nil
	}
}

// WithRetain marks fully qualified names as always reachable.
func WithRetain(fqns ...string) Option {
	return func(d *Detector) error {
		d.retain = append(d.retain, fqns...)
		return nil
	}
}

// WithPatterns marks declarations whose fully qualified name matches one of
// the globs. '*' matches within one name segment and '**' across segments.
func WithPatterns(globs ...string) Option {
	return func(d *Detector) error {
		for _, g := range globs {
			re, err := CompileGlob(g)
			if err != nil {
				return err
			}
			d.patterns = append(d.patterns, re)
		}
		return nil
	}
}

// WithManifest adds the components of a parsed AndroidManifest.xml.
func WithManifest(m *Manifest) Option {
	return func(d *Detector) error {
		if m != nil {
			d.manifests = append(d.manifests, m)
		}
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) error {
		if l != nil {
			d.logger = l
		}
		return nil
	}
}

// New creates a detector with the default annotation and base class sets.
func New(opts ...Option) (*Detector, error) {
	d := &Detector{
		main:        true,
		annotations: make(map[string]bool),
		baseClasses: make(map[string]bool),
		logger:      slog.Default(),
	}
	for _, a := range DefaultAnnotations {
		d.annotations[a] = true
	}
	for _, b := range DefaultBaseClasses {
		d.baseClasses[b] = true
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Detect returns the entry points of g in declaration order.
func (d *Detector) Detect(g *graph.Graph) []models.DeclarationID {
	found := d.DetectWithReasons(g)
	ids := make([]models.DeclarationID, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, models.DeclarationID.Compare)
	return ids
}

// DetectWithReasons returns each entry point with the first reason found.
func (d *Detector) DetectWithReasons(g *graph.Graph) map[models.DeclarationID]Reason {
	found := make(map[models.DeclarationID]Reason)
	mark := func(id models.DeclarationID, r Reason) {
		if _, ok := found[id]; !ok {
			found[id] = r
		}
	}

	framework := d.frameworkSubclasses(g)
	for i := 0; i < g.Len(); i++ {
		idx := uint32(i)
		decl := g.At(idx)
		switch {
		case decl.Kind == models.KindImport || decl.Kind.IsPseudo():
			continue
		case d.main && d.isMain(g, idx, decl):
			mark(decl.ID, ReasonMain)
		case d.annotated(decl):
			mark(decl.ID, ReasonAnnotation)
		case framework[idx]:
			mark(decl.ID, ReasonBaseClass)
		case d.matchesPattern(decl):
			mark(decl.ID, ReasonPattern)
		}
	}

	for _, fqn := range d.retain {
		if id, ok := g.ByFQN(fqn); ok {
			mark(id, ReasonRetained)
		} else {
			d.logger.Debug("retained name not found", "fqn", fqn)
		}
	}

	for _, m := range d.manifests {
		for _, class := range m.Classes {
			ids := d.manifestClass(g, class)
			if len(ids) == 0 {
				d.logger.Debug("manifest component not found", "class", class)
			}
			for _, id := range ids {
				mark(id, ReasonManifest)
			}
		}
	}

	d.logger.Debug("entry points detected", "count", len(found))
	return found
}

func (d *Detector) isMain(g *graph.Graph, idx uint32, decl *models.Declaration) bool {
	if decl.Name != "main" || !decl.Kind.IsFunction() {
		return false
	}
	parent, ok := g.ParentIndex(idx)
	if !ok {
		return true
	}
	p := g.At(parent)
	return p.Kind.IsPseudo() || decl.IsStatic || p.Kind == models.KindObject
}

func (d *Detector) annotated(decl *models.Declaration) bool {
	for _, a := range decl.Annotations {
		if d.annotations[annotationName(a)] {
			return true
		}
	}
	return false
}

func (d *Detector) matchesPattern(decl *models.Declaration) bool {
	if len(d.patterns) == 0 || decl.FullyQualifiedName == "" {
		return false
	}
	for _, re := range d.patterns {
		if re.MatchString(decl.FullyQualifiedName) {
			return true
		}
	}
	return false
}

// frameworkSubclasses returns the containers that extend a framework base
// class directly or through other analyzed classes.
func (d *Detector) frameworkSubclasses(g *graph.Graph) map[uint32]bool {
	state := make(map[uint32]int8) // 0 unvisited, 1 in progress, 2 no, 3 yes
	var visit func(idx uint32) bool
	visit = func(idx uint32) bool {
		switch state[idx] {
		case 1, 2:
			return false
		case 3:
			return true
		}
		state[idx] = 1
		decl := g.At(idx)
		yes := false
		for _, st := range decl.SuperTypes {
			if d.baseClasses[simpleName(graph.NormalizeTypeName(st))] {
				yes = true
				break
			}
		}
		if !yes {
			g.Successors(idx, func(to uint32, ref models.Reference) {
				if !yes && ref.Kind == models.RefInheritance && g.At(to).Kind.IsContainer() && visit(to) {
					yes = true
				}
			})
		}
		if yes {
			state[idx] = 3
		} else {
			state[idx] = 2
		}
		return yes
	}

	out := make(map[uint32]bool)
	for i := 0; i < g.Len(); i++ {
		idx := uint32(i)
		decl := g.At(idx)
		if decl.Kind.IsContainer() && !decl.IsAbstract && visit(idx) {
			out[idx] = true
		}
	}
	return out
}

// manifestClass resolves a manifest class name. Without a package attribute
// relative names are matched by suffix.
func (d *Detector) manifestClass(g *graph.Graph, class string) []models.DeclarationID {
	if id, ok := g.ByFQN(class); ok {
		return []models.DeclarationID{id}
	}
	if !strings.HasPrefix(class, ".") {
		return nil
	}
	var out []models.DeclarationID
	for _, id := range g.ByName(simpleName(class)) {
		decl := g.Declaration(id)
		if decl.Kind.IsContainer() && strings.HasSuffix(decl.FullyQualifiedName, class) {
			out = append(out, id)
		}
	}
	return out
}

// CompileGlob converts an FQN glob into an anchored regular expression.
func CompileGlob(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case c == '*' && i+1 < len(glob) && glob[i+1] == '*':
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString(`[^.]*`)
		case c == '?':
			b.WriteString(`[^.]`)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid entry point pattern %q: %w", glob, err)
	}
	return re, nil
}

func simpleName(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func annotationName(a string) string {
	a = strings.TrimPrefix(a, "@")
	if i := strings.IndexByte(a, '('); i >= 0 {
		a = a[:i]
	}
	if i := strings.IndexByte(a, ':'); i >= 0 {
		// Use-site targets such as @get:Keep.
		a = a[i+1:]
	}
	return simpleName(strings.TrimSpace(a))
}
