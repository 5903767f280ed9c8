package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "comicgrabr.toml")
	doc := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigShowPrintsSample(t *testing.T) {
	out, err := runCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[airdcpp]") || !strings.Contains(out, "[lcg]") {
		t.Fatalf("unexpected sample output:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected output to name %s, got:\n%s", target, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample written: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestPullsReportsEmptyStore(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "pulls")
	if err != nil {
		t.Fatalf("pulls: %v", err)
	}
	if !strings.Contains(out, "No upcoming releases tracked") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestImportFromFileThenPulls(t *testing.T) {
	cfgPath := writeTestConfig(t)

	exportPath := filepath.Join(t.TempDir(), "pulls.csv")
	doc := "Comic,Release,Publisher\nSaga #72,2099-01-07,Image Comics\n"
	if err := os.WriteFile(exportPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	out, err := runCommand(t, "--config", cfgPath, "import", "--file", exportPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "1 upcoming release(s) tracked") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "pulls")
	if err != nil {
		t.Fatalf("pulls: %v", err)
	}
	if !strings.Contains(out, "Saga") || !strings.Contains(out, "2099-01-07") {
		t.Fatalf("expected imported release listed, got:\n%s", out)
	}
}

func TestRunRequiresCredentials(t *testing.T) {
	t.Setenv("LCG_USERNAME", "")
	t.Setenv("LCG_PASSWORD", "")
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, "--config", cfgPath, "run"); err == nil {
		t.Fatal("expected run to fail without credentials")
	}
}
