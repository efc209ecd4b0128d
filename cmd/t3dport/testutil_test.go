package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const testMaterial = `Begin Object Class=Material Name=M_Rock
   Begin Object Class=MaterialExpressionConstant Name=MaterialExpressionConstant_0
      R=0.500000
   End Object
   DiffuseColor=(Expression=MaterialExpressionConstant'MaterialExpressionConstant_0')
End Object
`

const testLevel = `Begin Object Class=Level Name=PersistentLevel
   Begin Object Class=StaticMeshActor Name=StaticMeshActor_0
      Begin Object Class=StaticMeshComponent Name=StaticMeshComponent0
         StaticMesh=StaticMesh'Props.SM_Rock'
      End Object
   End Object
End Object
`

// writeFiles creates files under a temporary export folder and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// useConfig points --config at a memory-store configuration for source.
func useConfig(t *testing.T, sourceDir, mode string) {
	t.Helper()
	content := fmt.Sprintf(`import:
  mode: %s
  source_dir: %q
  destination: Game/Imported
store:
  backend: memory
telemetry:
  logging:
    level: error
`, mode, filepath.ToSlash(sourceDir))

	path := filepath.Join(t.TempDir(), "t3dport.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	orig := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = orig })
}

// testCommand returns a command whose output is captured in out.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	return cmd, &out
}
