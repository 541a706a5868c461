package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

const (
	sarifSchema      = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion     = "2.1.0"
	toolName         = "searchdeadcode"
	toolURI          = "https://github.com/pyctamovna/SearchDeadCode-sub000"
	fingerprintKey   = "searchdeadcode/v1"
	sourceRootBaseID = "%SRCROOT%"
)

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string               `json:"id"`
	ShortDescription sarifMessage         `json:"shortDescription"`
	DefaultConfig    sarifReportingConfig `json:"defaultConfiguration"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifReportingConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Rank                float64           `json:"rank"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
	Properties          map[string]any    `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// WriteSARIF writes findings as a SARIF 2.1.0 document.
func WriteSARIF(w io.Writer, findings []models.Finding, version string) error {
	if version == "" {
		version = "dev"
	}
	rules, index := sarifRules(findings)
	doc := sarifDocument{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           toolName,
				Version:        version,
				InformationURI: toolURI,
				Rules:          rules,
			}},
			Results: sarifResults(findings, index),
		}},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}
	return nil
}

// sarifRules builds one rule per issue kind, sorted by id.
func sarifRules(findings []models.Finding) ([]sarifRule, map[models.IssueKind]int) {
	index := make(map[models.IssueKind]int)
	var issues []models.IssueKind
	for _, f := range findings {
		if _, ok := index[f.Issue]; !ok {
			index[f.Issue] = -1
			issues = append(issues, f.Issue)
		}
	}
	slices.Sort(issues)

	rules := make([]sarifRule, 0, len(issues))
	for i, issue := range issues {
		index[issue] = i
		rules = append(rules, sarifRule{
			ID:               string(issue),
			ShortDescription: sarifMessage{Text: issueDescription(issue)},
			DefaultConfig:    sarifReportingConfig{Level: sarifLevel(models.SeverityFor(issue))},
		})
	}
	return rules, index
}

func sarifResults(findings []models.Finding, index map[models.IssueKind]int) []sarifResult {
	results := make([]sarifResult, 0, len(findings))
	for i := range findings {
		f := &findings[i]
		loc := f.Declaration.Location
		res := sarifResult{
			RuleID:              string(f.Issue),
			RuleIndex:           index[f.Issue],
			Level:               sarifLevel(f.Severity),
			Rank:                confidenceRank(f.Confidence()),
			Message:             sarifMessage{Text: f.Message},
			PartialFingerprints: map[string]string{fingerprintKey: f.Fingerprint()},
			Properties: map[string]any{
				"confidence": f.Confidence().String(),
				"kind":       string(f.Declaration.Kind),
			},
		}
		if f.RuntimeConfirmed() {
			res.Properties["runtimeConfirmed"] = true
		}
		if fqn := f.Declaration.FullyQualifiedName; fqn != "" {
			res.Properties["fqn"] = fqn
		}
		if loc.File != "" {
			pl := sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: loc.File, URIBaseID: sourceRootBaseID},
			}
			if loc.Line > 0 {
				pl.Region = &sarifRegion{StartLine: int(loc.Line), StartColumn: int(loc.Column)}
			}
			res.Locations = []sarifLocation{{PhysicalLocation: pl}}
		}
		results = append(results, res)
	}
	return results
}

func sarifLevel(s models.Severity) string {
	switch s {
	case models.SeverityError:
		return "error"
	case models.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func confidenceRank(c models.Confidence) float64 {
	switch c {
	case models.ConfidenceConfirmed:
		return 100
	case models.ConfidenceHigh:
		return 75
	case models.ConfidenceMedium:
		return 50
	default:
		return 25
	}
}

func issueDescription(issue models.IssueKind) string {
	switch issue {
	case models.IssueUnusedClass:
		return "Class or other type is never used"
	case models.IssueUnusedFunction:
		return "Function or method is never called"
	case models.IssueUnusedProperty:
		return "Property, field or enum entry is never used"
	case models.IssueUnusedParameter:
		return "Parameter is never used"
	case models.IssueUnusedImport:
		return "Import is never used"
	case models.IssueUnusedMember:
		return "Member is never referenced"
	case models.IssueAssignOnly:
		return "Property is written but never read"
	case models.IssueDebugOnly:
		return "Unreachable debug-only code"
	case models.IssueTestOnlyInProd:
		return "Unreachable test helper in production sources"
	case models.IssueDeprecatedUnused:
		return "Deprecated and unreferenced"
	case models.IssueStub:
		return "Unreachable stub implementation"
	case models.IssueOptimizerDead:
		return "Removed by the release optimizer"
	}
	return "Unreachable code"
}
