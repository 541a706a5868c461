package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport so assistants can run dead code
analysis. Configuration is read from the server's working directory.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "searchdeadcode": {
        "command": "searchdeadcode",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - find_dead_code      Unreachable declarations graded by confidence
  - find_dead_cycles    Dead cycles and zombie pairs`,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the server.json registry manifest",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(data))
					return err
				},
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	return mcpserver.NewServer(version).Run(c.Context)
}
