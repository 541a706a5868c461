package entrypoint

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

const androidNS = "http://schemas.android.com/apk/res/android"

// componentTags are the manifest elements whose android:name attribute names
// a class the platform instantiates.
var componentTags = map[string]bool{
	"application":     true,
	"activity":        true,
	"activity-alias":  true,
	"service":         true,
	"receiver":        true,
	"provider":        true,
	"instrumentation": true,
}

// Manifest is the set of component classes declared by an AndroidManifest.xml.
type Manifest struct {
	Package string
	// Classes holds names as written, with relative names (".Main") resolved
	// against Package when it is known.
	Classes []string
}

// LoadManifest parses an AndroidManifest.xml file.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	m, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest reads component class names from a manifest document.
func ParseManifest(r io.Reader) (*Manifest, error) {
	dec := xml.NewDecoder(r)
	m := &Manifest{}
	var names []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "manifest" {
			m.Package = attr(start, "", "package")
			continue
		}
		if !componentTags[start.Name.Local] {
			continue
		}
		key := "name"
		if start.Name.Local == "activity-alias" {
			key = "targetActivity"
		}
		if name := attr(start, androidNS, key); name != "" {
			names = append(names, name)
		}
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = m.qualify(n)
		if !seen[n] {
			seen[n] = true
			m.Classes = append(m.Classes, n)
		}
	}
	return m, nil
}

func (m *Manifest) qualify(name string) string {
	name = strings.ReplaceAll(name, "$", ".")
	if m.Package == "" {
		return name
	}
	if strings.HasPrefix(name, ".") {
		return m.Package + name
	}
	if !strings.Contains(name, ".") {
		return m.Package + "." + name
	}
	return name
}

func attr(e xml.StartElement, space, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local != local {
			continue
		}
		// Undeclared prefixes surface as the prefix itself.
		if a.Name.Space == space || (space == androidNS && a.Name.Space == "android") {
			return a.Value
		}
	}
	return ""
}
