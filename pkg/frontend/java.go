package frontend

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

var javaTypeKinds = map[string]models.DeclarationKind{
	"class_declaration":           models.KindClass,
	"interface_declaration":       models.KindInterface,
	"enum_declaration":            models.KindEnum,
	"record_declaration":          models.KindClass,
	"annotation_type_declaration": models.KindAnnotationType,
}

// javaScope is the lexical context of a node being extracted.
type javaScope struct {
	owner       *models.DeclarationID // innermost declaration, nil at file level
	prefix      string                // FQN prefix for members, with trailing '.'
	class       string                // FQN of the innermost type
	super       string                // simple name of its superclass
	inInterface bool
}

type javaExtractor struct {
	src  []byte
	file *models.ParsedFile
}

// ParseJava extracts declarations and unresolved references from one Java
// compilation unit. Syntax errors do not fail the parse; tree-sitter recovers
// and whatever is recognizable is extracted.
func ParseJava(ctx context.Context, path string, src []byte) (*models.ParsedFile, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(java.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	x := &javaExtractor{
		src: src,
		file: &models.ParsedFile{
			Path:         path,
			Language:     models.LanguageJava,
			Declarations: []models.Declaration{},
			References:   []models.UnresolvedReference{},
		},
	}
	x.program(tree.RootNode())
	return x.file, nil
}

func (x *javaExtractor) program(root *sitter.Node) {
	// The package must be known before any type is named.
	for i := range int(root.NamedChildCount()) {
		n := root.NamedChild(i)
		if n.Type() == "package_declaration" {
			x.file.Package = x.qualifiedChild(n)
		}
	}
	sc := javaScope{}
	if x.file.Package != "" {
		sc.prefix = x.file.Package + "."
	}
	for i := range int(root.NamedChildCount()) {
		n := root.NamedChild(i)
		switch n.Type() {
		case "import_declaration":
			x.importDecl(n)
		case "package_declaration":
		default:
			if _, ok := javaTypeKinds[n.Type()]; ok {
				x.typeDecl(n, sc)
			}
		}
	}
}

func (x *javaExtractor) importDecl(n *sitter.Node) {
	fqn := x.qualifiedChild(n)
	if fqn == "" {
		return
	}
	name := fqn[strings.LastIndexByte(fqn, '.')+1:]
	isStatic := false
	for i := range int(n.ChildCount()) {
		switch c := n.Child(i); c.Type() {
		case "asterisk":
			fqn += ".*"
			name = "*"
		case "static":
			isStatic = true
		}
	}
	x.file.Declarations = append(x.file.Declarations, models.Declaration{
		ID:                 x.id(n),
		Name:               name,
		FullyQualifiedName: fqn,
		Kind:               models.KindImport,
		Visibility:         models.VisibilityPrivate,
		Location:           x.location(n),
		Language:           models.LanguageJava,
		IsStatic:           isStatic,
	})
}

func (x *javaExtractor) typeDecl(n *sitter.Node, sc javaScope) {
	kind := javaTypeKinds[n.Type()]
	name := x.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	keywords, annotations := x.modifiers(n)
	if n.Type() == "record_declaration" {
		keywords = append(keywords, "record")
	}

	d := models.Declaration{
		ID:                 x.id(n),
		Name:               name,
		FullyQualifiedName: sc.prefix + name,
		Kind:               kind,
		Visibility:         javaVisibility(keywords, sc.inInterface),
		Location:           x.location(n),
		Language:           models.LanguageJava,
		Parent:             sc.owner,
		IsStatic:           slices.Contains(keywords, "static") || (sc.class != "" && n.Type() != "class_declaration"),
		IsAbstract:         slices.Contains(keywords, "abstract") || kind == models.KindInterface || kind == models.KindAnnotationType,
		Modifiers:          keywords,
		Annotations:        annotations,
	}

	var superclass string
	if s := n.ChildByFieldName("superclass"); s != nil {
		for i := range int(s.NamedChildCount()) {
			t := s.NamedChild(i)
			d.SuperTypes = append(d.SuperTypes, x.text(t))
			superclass = simpleTypeName(x.text(t))
		}
	}
	if s := n.ChildByFieldName("interfaces"); s != nil {
		d.SuperTypes = append(d.SuperTypes, x.typeList(s)...)
	}
	for i := range int(n.NamedChildCount()) {
		if c := n.NamedChild(i); c.Type() == "extends_interfaces" {
			d.SuperTypes = append(d.SuperTypes, x.typeList(c)...)
		}
	}
	x.file.Declarations = append(x.file.Declarations, d)

	inner := javaScope{
		owner:       &d.ID,
		prefix:      d.FullyQualifiedName + ".",
		class:       d.FullyQualifiedName,
		super:       superclass,
		inInterface: kind == models.KindInterface || kind == models.KindAnnotationType,
	}
	x.annotationRefs(n, inner)
	x.walk(n.ChildByFieldName("type_parameters"), inner)
	for _, field := range []string{"superclass", "interfaces"} {
		x.typeArguments(n.ChildByFieldName(field), inner)
	}

	if params := n.ChildByFieldName("parameters"); params != nil {
		x.recordComponents(params, inner)
	}
	x.body(n.ChildByFieldName("body"), inner)
}

// recordComponents declares one private final field per record component.
func (x *javaExtractor) recordComponents(params *sitter.Node, sc javaScope) {
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		if p.Type() != "formal_parameter" {
			continue
		}
		name := x.text(p.ChildByFieldName("name"))
		if name == "" {
			continue
		}
		_, annotations := x.modifiers(p)
		d := models.Declaration{
			ID:                 x.id(p),
			Name:               name,
			FullyQualifiedName: sc.prefix + name,
			Kind:               models.KindField,
			Visibility:         models.VisibilityPrivate,
			Location:           x.location(p),
			Language:           models.LanguageJava,
			Parent:             sc.owner,
			Modifiers:          []string{"final"},
			Annotations:        annotations,
		}
		x.file.Declarations = append(x.file.Declarations, d)
		x.walk(p.ChildByFieldName("type"), sc)
		x.annotationRefs(p, sc)
	}
}

func (x *javaExtractor) body(body *sitter.Node, sc javaScope) {
	if body == nil {
		return
	}
	for i := range int(body.NamedChildCount()) {
		x.member(body.NamedChild(i), sc)
	}
}

func (x *javaExtractor) member(n *sitter.Node, sc javaScope) {
	switch t := n.Type(); t {
	case "method_declaration", "annotation_type_element_declaration":
		x.method(n, sc, models.KindMethod)
	case "constructor_declaration", "compact_constructor_declaration":
		x.method(n, sc, models.KindConstructor)
	case "field_declaration", "constant_declaration":
		x.fields(n, sc)
	case "enum_constant":
		x.enumConstant(n, sc)
	case "enum_body_declarations":
		x.body(n, sc)
	case "line_comment", "block_comment":
	default:
		if _, ok := javaTypeKinds[t]; ok {
			x.typeDecl(n, sc)
			return
		}
		// Initializer blocks and anything unrecognized belong to the type.
		x.walk(n, sc)
	}
}

func (x *javaExtractor) method(n *sitter.Node, sc javaScope, kind models.DeclarationKind) {
	name := x.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	keywords, annotations := x.modifiers(n)
	body := n.ChildByFieldName("body")

	fqn := sc.prefix + name
	if kind == models.KindConstructor {
		// Constructors share their class's FQN so that instantiating the
		// class resolves to every overload.
		fqn = sc.class
	}
	d := models.Declaration{
		ID:                 x.id(n),
		Name:               name,
		FullyQualifiedName: fqn,
		Kind:               kind,
		Visibility:         javaVisibility(keywords, sc.inInterface),
		Location:           x.location(n),
		Language:           models.LanguageJava,
		Parent:             sc.owner,
		IsStatic:           slices.Contains(keywords, "static"),
		Modifiers:          keywords,
		Annotations:        annotations,
	}
	d.IsAbstract = slices.Contains(keywords, "abstract") ||
		(sc.inInterface && body == nil && !d.IsStatic && !slices.Contains(keywords, "default"))
	if kind == models.KindMethod && stubBody(body) {
		d.Modifiers = append(slices.Clone(keywords), "stub")
	}
	x.file.Declarations = append(x.file.Declarations, d)

	inner := sc
	inner.owner = &d.ID
	x.annotationRefs(n, inner)
	x.walk(n.ChildByFieldName("type_parameters"), inner)
	x.walk(n.ChildByFieldName("type"), inner)
	x.walk(n.ChildByFieldName("value"), inner)
	for i := range int(n.NamedChildCount()) {
		if c := n.NamedChild(i); c.Type() == "throws" {
			x.walk(c, inner)
		}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		x.parameters(params, inner)
	}
	x.walk(body, inner)
}

// stubBody reports a block that is empty or only throws.
func stubBody(body *sitter.Node) bool {
	if body == nil {
		return false
	}
	var stmts []*sitter.Node
	for i := range int(body.NamedChildCount()) {
		c := body.NamedChild(i)
		switch c.Type() {
		case "line_comment", "block_comment":
		default:
			stmts = append(stmts, c)
		}
	}
	switch len(stmts) {
	case 0:
		return true
	case 1:
		return stmts[0].Type() == "throw_statement"
	}
	return false
}

func (x *javaExtractor) parameters(params *sitter.Node, sc javaScope) {
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		var nameNode *sitter.Node
		switch p.Type() {
		case "formal_parameter":
			nameNode = p.ChildByFieldName("name")
		case "spread_parameter":
			for j := range int(p.NamedChildCount()) {
				if c := p.NamedChild(j); c.Type() == "variable_declarator" {
					nameNode = c.ChildByFieldName("name")
				}
			}
		default:
			x.walk(p, sc)
			continue
		}
		name := x.text(nameNode)
		if name == "" {
			continue
		}
		keywords, annotations := x.modifiers(p)
		x.file.Declarations = append(x.file.Declarations, models.Declaration{
			ID:          x.id(p),
			Name:        name,
			Kind:        models.KindParameter,
			Visibility:  models.VisibilityPrivate,
			Location:    x.location(p),
			Language:    models.LanguageJava,
			Parent:      sc.owner,
			Modifiers:   keywords,
			Annotations: annotations,
		})
		x.annotationRefs(p, sc)
		for j := range int(p.NamedChildCount()) {
			if c := p.NamedChild(j); !sameNode(c, nameNode) && c.Type() != "modifiers" && c.Type() != "variable_declarator" {
				x.walk(c, sc)
			}
		}
	}
}

func (x *javaExtractor) fields(n *sitter.Node, sc javaScope) {
	keywords, annotations := x.modifiers(n)
	vis := javaVisibility(keywords, sc.inInterface)
	isStatic := sc.inInterface || slices.Contains(keywords, "static")

	var ids []*models.DeclarationID
	for i := range int(n.NamedChildCount()) {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		name := x.text(decl.ChildByFieldName("name"))
		if name == "" {
			continue
		}
		d := models.Declaration{
			ID:                 x.id(decl),
			Name:               name,
			FullyQualifiedName: sc.prefix + name,
			Kind:               models.KindField,
			Visibility:         vis,
			Location:           x.location(decl),
			Language:           models.LanguageJava,
			Parent:             sc.owner,
			IsStatic:           isStatic,
			Modifiers:          keywords,
			Annotations:        annotations,
		}
		x.file.Declarations = append(x.file.Declarations, d)
		id := d.ID
		ids = append(ids, &id)

		inner := sc
		inner.owner = &id
		x.walk(decl.ChildByFieldName("value"), inner)
	}
	for _, id := range ids {
		inner := sc
		inner.owner = id
		x.annotationRefs(n, inner)
		x.walk(n.ChildByFieldName("type"), inner)
	}
}

func (x *javaExtractor) enumConstant(n *sitter.Node, sc javaScope) {
	name := x.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	_, annotations := x.modifiers(n)
	d := models.Declaration{
		ID:                 x.id(n),
		Name:               name,
		FullyQualifiedName: sc.prefix + name,
		Kind:               models.KindEnumEntry,
		Visibility:         models.VisibilityPublic,
		Location:           x.location(n),
		Language:           models.LanguageJava,
		Parent:             sc.owner,
		IsStatic:           true,
		Annotations:        annotations,
	}
	x.file.Declarations = append(x.file.Declarations, d)

	inner := sc
	inner.owner = &d.ID
	x.annotationRefs(n, inner)
	x.walk(n.ChildByFieldName("arguments"), inner)
	if body := n.ChildByFieldName("body"); body != nil {
		inner.prefix = d.FullyQualifiedName + "."
		x.body(body, inner)
	}
}

// walk records the references made inside n on behalf of sc.owner.
func (x *javaExtractor) walk(n *sitter.Node, sc javaScope) {
	if n == nil || sc.owner == nil {
		return
	}
	switch t := n.Type(); t {
	case "identifier":
		x.ref(sc, n, models.RefRead, x.text(n), "")
	case "type_identifier":
		x.ref(sc, n, models.RefType, x.text(n), "")
	case "scoped_type_identifier":
		x.ref(sc, n, models.RefType, x.lastTypeIdentifier(n), compact(x.text(n)))
		if n.NamedChildCount() > 0 {
			x.walk(n.NamedChild(0), sc)
		}
	case "method_invocation":
		x.invocation(n, sc)
	case "object_creation_expression":
		x.creation(n, sc)
	case "field_access":
		x.walk(n.ChildByFieldName("object"), sc)
		if f := n.ChildByFieldName("field"); f != nil && f.Type() == "identifier" {
			x.ref(sc, f, models.RefRead, x.text(f), "")
		}
	case "assignment_expression":
		op := x.text(n.ChildByFieldName("operator"))
		x.write(n.ChildByFieldName("left"), sc, op != "=")
		x.walk(n.ChildByFieldName("right"), sc)
	case "update_expression":
		for i := range int(n.NamedChildCount()) {
			x.write(n.NamedChild(i), sc, true)
		}
	case "method_reference":
		x.methodReference(n, sc)
	case "marker_annotation", "annotation":
		x.annotation(n, sc)
	case "element_value_pair":
		x.walk(n.ChildByFieldName("value"), sc)
	case "class_literal":
		if n.NamedChildCount() > 0 {
			typ := n.NamedChild(0)
			x.ref(sc, typ, models.RefReflection, simpleTypeName(x.text(typ)), "")
		}
	case "explicit_constructor_invocation":
		x.constructorCall(n, sc)
	case "lambda_expression":
		x.walk(n.ChildByFieldName("body"), sc)
	case "variable_declarator":
		x.walk(n.ChildByFieldName("value"), sc)
	case "formal_parameter", "catch_formal_parameter", "spread_parameter":
		name := n.ChildByFieldName("name")
		for i := range int(n.NamedChildCount()) {
			if c := n.NamedChild(i); !sameNode(c, name) && c.Type() != "identifier" {
				x.walk(c, sc)
			}
		}
	case "enhanced_for_statement":
		for _, f := range []string{"type", "value", "body"} {
			x.walk(n.ChildByFieldName(f), sc)
		}
	case "labeled_statement":
		for i := range int(n.NamedChildCount()) {
			if c := n.NamedChild(i); c.Type() != "identifier" {
				x.walk(c, sc)
			}
		}
	case "break_statement", "continue_statement",
		"string_literal", "character_literal", "line_comment", "block_comment":
	default:
		if _, ok := javaTypeKinds[t]; ok {
			// Local and nested types.
			x.typeDecl(n, sc)
			return
		}
		for i := range int(n.NamedChildCount()) {
			x.walk(n.NamedChild(i), sc)
		}
	}
}

func (x *javaExtractor) invocation(n *sitter.Node, sc javaScope) {
	x.walk(n.ChildByFieldName("object"), sc)
	x.walk(n.ChildByFieldName("type_arguments"), sc)
	name := n.ChildByFieldName("name")
	x.ref(sc, name, models.RefCall, x.text(name), "")

	args := n.ChildByFieldName("arguments")
	if x.text(name) == "forName" && args != nil && args.NamedChildCount() > 0 {
		if lit := args.NamedChild(0); lit.Type() == "string_literal" {
			if fqn, err := strconv.Unquote(x.text(lit)); err == nil && fqn != "" {
				x.ref(sc, lit, models.RefReflection, fqn[strings.LastIndexByte(fqn, '.')+1:], fqn)
			}
		}
	}
	x.walk(args, sc)
}

func (x *javaExtractor) creation(n *sitter.Node, sc javaScope) {
	typ := n.ChildByFieldName("type")
	name := simpleTypeName(x.text(typ))
	qualified := ""
	if base := compact(x.text(typ)); strings.Contains(trimGenerics(base), ".") {
		qualified = trimGenerics(base)
	}
	x.ref(sc, typ, models.RefInstantiation, name, qualified)
	x.typeArguments(typ, sc)
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		switch {
		case sameNode(c, typ), c.Type() == "type_arguments":
		case c.Type() == "class_body":
			// Anonymous class members belong to the enclosing declaration.
			x.body(c, sc)
		default:
			x.walk(c, sc)
		}
	}
}

func (x *javaExtractor) constructorCall(n *sitter.Node, sc javaScope) {
	ctor := n.ChildByFieldName("constructor")
	switch x.text(ctor) {
	case "this":
		simple := sc.class[strings.LastIndexByte(sc.class, '.')+1:]
		x.ref(sc, ctor, models.RefCall, simple, sc.class)
	case "super":
		if sc.super != "" {
			x.ref(sc, ctor, models.RefCall, sc.super, "")
		}
	}
	x.walk(n.ChildByFieldName("object"), sc)
	x.walk(n.ChildByFieldName("arguments"), sc)
}

func (x *javaExtractor) methodReference(n *sitter.Node, sc javaScope) {
	count := int(n.ChildCount())
	if count == 0 {
		return
	}
	last := n.Child(count - 1)
	if n.NamedChildCount() > 0 {
		if target := n.NamedChild(0); !sameNode(target, last) {
			x.walk(target, sc)
		}
	}
	switch last.Type() {
	case "identifier":
		x.ref(sc, last, models.RefMethodReference, x.text(last), "")
	case "new":
		if n.NamedChildCount() > 0 {
			typ := n.NamedChild(0)
			x.ref(sc, typ, models.RefInstantiation, simpleTypeName(x.text(typ)), "")
		}
	}
}

func (x *javaExtractor) write(n *sitter.Node, sc javaScope, alsoRead bool) {
	if n == nil {
		return
	}
	var target *sitter.Node
	switch n.Type() {
	case "identifier":
		target = n
	case "field_access":
		x.walk(n.ChildByFieldName("object"), sc)
		target = n.ChildByFieldName("field")
	default:
		x.walk(n, sc)
		return
	}
	if target == nil || target.Type() != "identifier" {
		return
	}
	x.ref(sc, target, models.RefWrite, x.text(target), "")
	if alsoRead {
		x.ref(sc, target, models.RefRead, x.text(target), "")
	}
}

func (x *javaExtractor) annotation(n *sitter.Node, sc javaScope) {
	name := x.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	qualified := ""
	if strings.Contains(name, ".") {
		qualified = name
	}
	x.ref(sc, n, models.RefAnnotation, name[strings.LastIndexByte(name, '.')+1:], qualified)
	x.walk(n.ChildByFieldName("arguments"), sc)
}

// annotationRefs records references for the annotations in n's modifiers.
func (x *javaExtractor) annotationRefs(n *sitter.Node, sc javaScope) {
	if mods := modifiersNode(n); mods != nil {
		for i := range int(mods.NamedChildCount()) {
			x.walk(mods.NamedChild(i), sc)
		}
	}
}

// typeArguments records the type arguments of every type in n without
// referencing the types themselves.
func (x *javaExtractor) typeArguments(n *sitter.Node, sc javaScope) {
	if n == nil {
		return
	}
	if n.Type() == "type_arguments" {
		x.walk(n, sc)
		return
	}
	for i := range int(n.NamedChildCount()) {
		x.typeArguments(n.NamedChild(i), sc)
	}
}

func (x *javaExtractor) ref(sc javaScope, n *sitter.Node, kind models.ReferenceKind, name, qualified string) {
	if sc.owner == nil || n == nil || name == "" {
		return
	}
	x.file.References = append(x.file.References, models.UnresolvedReference{
		From:          *sc.owner,
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		Location:      x.location(n),
	})
}

// modifiers splits a declaration's modifiers into keywords and annotations.
func (x *javaExtractor) modifiers(n *sitter.Node) (keywords, annotations []string) {
	mods := modifiersNode(n)
	if mods == nil {
		return nil, nil
	}
	for i := range int(mods.ChildCount()) {
		c := mods.Child(i)
		switch c.Type() {
		case "marker_annotation", "annotation":
			annotations = append(annotations, compact(x.text(c)))
		case "line_comment", "block_comment":
		default:
			keywords = append(keywords, x.text(c))
		}
	}
	return keywords, annotations
}

func modifiersNode(n *sitter.Node) *sitter.Node {
	for i := range int(n.NamedChildCount()) {
		if c := n.NamedChild(i); c.Type() == "modifiers" {
			return c
		}
	}
	return nil
}

func (x *javaExtractor) typeList(n *sitter.Node) []string {
	var out []string
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if c.Type() == "type_list" {
			out = append(out, x.typeList(c)...)
			continue
		}
		out = append(out, compact(x.text(c)))
	}
	return out
}

// qualifiedChild returns the dotted name in a package or import declaration.
func (x *javaExtractor) qualifiedChild(n *sitter.Node) string {
	for i := range int(n.NamedChildCount()) {
		switch c := n.NamedChild(i); c.Type() {
		case "scoped_identifier", "identifier":
			return compact(x.text(c))
		}
	}
	return ""
}

func (x *javaExtractor) lastTypeIdentifier(n *sitter.Node) string {
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		if c := n.NamedChild(i); c.Type() == "type_identifier" {
			return x.text(c)
		}
	}
	return simpleTypeName(x.text(n))
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func (x *javaExtractor) id(n *sitter.Node) models.DeclarationID {
	return models.NewDeclarationID(x.file.Path, n.StartByte(), n.EndByte())
}

func (x *javaExtractor) location(n *sitter.Node) models.Location {
	start, end := n.StartPoint(), n.EndPoint()
	return models.Location{
		File:      x.file.Path,
		Line:      start.Row + 1,
		Column:    start.Column + 1,
		EndLine:   end.Row + 1,
		EndColumn: end.Column + 1,
	}
}

// text extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func (x *javaExtractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint32(len(x.src)) {
		return ""
	}
	return string(x.src[start:end])
}

func javaVisibility(keywords []string, inInterface bool) models.Visibility {
	switch {
	case slices.Contains(keywords, "public"):
		return models.VisibilityPublic
	case slices.Contains(keywords, "protected"):
		return models.VisibilityProtected
	case slices.Contains(keywords, "private"):
		return models.VisibilityPrivate
	case inInterface:
		return models.VisibilityPublic
	}
	// Package-private.
	return models.VisibilityInternal
}

// simpleTypeName reduces "a.b.Map<K, V>[]" to "Map".
func simpleTypeName(s string) string {
	s = trimGenerics(compact(s))
	s = strings.TrimRight(s, "[]")
	return s[strings.LastIndexByte(s, '.')+1:]
}

func trimGenerics(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		return s[:i]
	}
	return s
}

// compact removes whitespace from a dotted name that spans lines.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
