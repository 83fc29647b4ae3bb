package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCompileCmd(root *rootFlags, app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <project>",
		Short: "Compile a project into a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompileCmd(cmd, app, args[0])
		},
	}
	return cmd
}

func runCompileCmd(cmd *cobra.Command, app *AppContext, projectDir string) error {
	ctx, log := app.CommandContext(cmd, "compile")

	result, err := runCompile(ctx, log, projectDir)
	if err != nil {
		return newCommandError("compile project", err, "fix the reported diagnostics and recompile")
	}

	outPath := filepath.Join(projectDir, result.Project.Config.CompilePath, "manifest.json")
	if err := writeManifest(outPath, result); err != nil {
		return newCommandError("write manifest", err, fmt.Sprintf("check write permissions on %s", outPath))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "compiled %s nodes in project %q -> %s (digest %s)\n",
		humanize.Comma(int64(len(result.Manifest.Nodes))), result.Project.Config.Name, outPath, result.Manifest.Digest)
	return nil
}

func writeManifest(path string, result *compileResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(result.Manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}
