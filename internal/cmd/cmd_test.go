package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvil-idl/anvil/internal/testutil"
)

const validArtifact = `{
  "anvil": "1.0",
  "shapes": {
    "example.weather#Forecast": {
      "type": "structure",
      "members": {
        "city": {"target": "anvil.api#String"}
      }
    }
  }
}`

const danglingArtifact = `{
  "anvil": "1.0",
  "shapes": {
    "example.weather#Forecast": {
      "type": "structure",
      "members": {
        "city": {"target": "example.weather#Missing"}
      }
    }
  }
}`

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "model.json", content)
}

// execute runs the root command with args, isolated from the developer's
// real config file and environment search paths.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("ANVIL_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("ANVIL_PATH", "")

	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestValidateCommand(t *testing.T) {
	t.Run("clean artifact passes", func(t *testing.T) {
		err := execute(t, "validate", writeArtifact(t, validArtifact))
		assert.NoError(t, err)
	})

	t.Run("dangling reference fails with validation code", func(t *testing.T) {
		err := execute(t, "validate", writeArtifact(t, danglingArtifact))
		require.Error(t, err)
		assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
	})

	t.Run("missing artifact fails with not-found code", func(t *testing.T) {
		err := execute(t, "validate", filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
	})
}

func TestQueryCommand(t *testing.T) {
	t.Run("valid selector runs", func(t *testing.T) {
		err := execute(t, "query", "structure", writeArtifact(t, validArtifact))
		assert.NoError(t, err)
	})

	t.Run("malformed selector fails with syntax code", func(t *testing.T) {
		err := execute(t, "query", "[id", writeArtifact(t, validArtifact))
		require.Error(t, err)
		assert.Equal(t, ExitSyntaxError, ExitCodeFromError(err))
	})

	t.Run("unknown function fails with query code", func(t *testing.T) {
		err := execute(t, "query", ":frobnicate(*)", writeArtifact(t, validArtifact))
		require.Error(t, err)
		assert.Equal(t, ExitQueryError, ExitCodeFromError(err))
	})
}

func TestConvertCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "merged.json")
	err := execute(t, "convert", "--out", out, writeArtifact(t, validArtifact))
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "example.weather#Forecast")
	assert.Contains(t, string(data), `"anvil"`)
}

func TestVersionCommand(t *testing.T) {
	assert.NoError(t, execute(t, "version"))
}
