package mcpserver

import "encoding/json"

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.pyctamovna/searchdeadcode"
	modulePath     = "github.com/pyctamovna/SearchDeadCode-sub000"
	configEnv      = "SEARCHDEADCODE_CONFIG"
)

// Manifest is the registry server.json describing how to launch the server.
type Manifest struct {
	Schema      string       `json:"$schema"`
	Name        string       `json:"name"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description"`
	Version     string       `json:"version"`
	WebsiteURL  string       `json:"websiteUrl,omitempty"`
	Repository  *SourceRepo  `json:"repository,omitempty"`
	Packages    []Launchable `json:"packages,omitempty"`
}

// SourceRepo points at the code the server is built from.
type SourceRepo struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Launchable is one installable form of the server.
type Launchable struct {
	RegistryType         string     `json:"registryType"`
	Identifier           string     `json:"identifier"`
	Version              string     `json:"version,omitempty"`
	PackageArguments     []Argument `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVar   `json:"environmentVariables,omitempty"`
	Transport            struct {
		Type string `json:"type"`
	} `json:"transport"`
}

// Argument is a fixed command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVar is an environment variable the server reads.
type EnvVar struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired"`
}

// GenerateManifest returns the server.json for version, or 0.0.0 when empty.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	pkg := Launchable{
		RegistryType:     "go",
		Identifier:       modulePath + "/cmd/searchdeadcode",
		Version:          version,
		PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
		EnvironmentVariables: []EnvVar{{
			Name:        configEnv,
			Description: "Path to a searchdeadcode.toml, .yaml or .json config file",
		}},
	}
	pkg.Transport.Type = "stdio"

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Title:       "SearchDeadCode",
		Description: "Whole-program dead code detection for Kotlin, Java and Android",
		Version:     version,
		WebsiteURL:  "https://" + modulePath,
		Repository:  &SourceRepo{URL: "https://" + modulePath, Source: "github"},
		Packages:    []Launchable{pkg},
	}, "", "  ")
}
