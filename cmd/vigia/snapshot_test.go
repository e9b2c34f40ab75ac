package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExport_Stdout(t *testing.T) {
	output, err := runCLI(t, "export", "--storage.driver", "memory")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(output, "format_version") {
		t.Errorf("export should stamp the format version, got: %s", output)
	}
	if !strings.Contains(output, "Tesorero") {
		t.Errorf("export should list governed roles, got: %s", output)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	snapPath := filepath.Join(t.TempDir(), "matrix.yaml")
	statePath := filepath.Join(t.TempDir(), "permissions.json")
	fileArgs := []string{"--storage.driver", "file", "--storage.path", statePath}

	if _, err := runCLI(t, append([]string{"grant", "Ayudante", "dashboard", "reportes"}, fileArgs...)...); err != nil {
		t.Fatalf("grant error = %v", err)
	}
	if _, err := runCLI(t, append([]string{"export", "-o", snapPath}, fileArgs...)...); err != nil {
		t.Fatalf("export error = %v", err)
	}

	if _, err := runCLI(t, "validate-snapshot", snapPath); err != nil {
		t.Fatalf("validate-snapshot error = %v", err)
	}

	// Import into a fresh state file.
	otherState := filepath.Join(t.TempDir(), "other.json")
	otherArgs := []string{"--storage.driver", "file", "--storage.path", otherState}
	if _, err := runCLI(t, append([]string{"import", snapPath}, otherArgs...)...); err != nil {
		t.Fatalf("import error = %v", err)
	}

	output, err := runCLI(t, append([]string{"show", "Ayudante"}, otherArgs...)...)
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(output, "reportes") {
		t.Errorf("imported matrix should carry the granted module, got: %s", output)
	}
}

func TestValidateSnapshot_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("format_version: \"9.0.0\"\nmatrix: {}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "validate-snapshot", path); err == nil {
		t.Fatal("expected error for unsupported snapshot version")
	}
}

func TestValidateSnapshot_MissingFile(t *testing.T) {
	if _, err := runCLI(t, "validate-snapshot", filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImport_NonAdministratorRejected(t *testing.T) {
	snapPath := filepath.Join(t.TempDir(), "matrix.yaml")
	if _, err := runCLI(t, "export", "-o", snapPath, "--storage.driver", "memory"); err != nil {
		t.Fatalf("export error = %v", err)
	}

	_, err := runCLI(t, "import", snapPath, "--actor", "Director", "--storage.driver", "memory")
	if err == nil {
		t.Fatal("expected error for non-administrator actor")
	}
}
