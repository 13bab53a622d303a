package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRepositoryStatementsAreMarked(t *testing.T) {
	l := newLinter()
	if err := l.lintTree(filepath.Join("..", "..", "sqlinline")); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(l.violations) != 0 {
		t.Fatalf("violations = %+v", l.violations)
	}
	if len(l.seen) == 0 {
		t.Fatalf("no statements found")
	}
}

func TestLintFileFlagsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const QOne = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n" +
		"const QTwo = `--sql 11111111-2222-4333-8444-555555555555\nselect 2;`\n" +
		"const QBare = \"delete from t\"\n" +
		"const Greeting = \"hello\"\n"
	path := filepath.Join(dir, "q.go")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := newLinter()
	if err := l.lintFile(path); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(l.violations) != 2 {
		t.Fatalf("violations = %+v", l.violations)
	}
	if l.violations[0].name != "QTwo" || !strings.Contains(l.violations[0].message, "QOne") {
		t.Fatalf("first violation = %+v", l.violations[0])
	}
	if l.violations[1].name != "QBare" {
		t.Fatalf("second violation = %+v", l.violations[1])
	}
}
