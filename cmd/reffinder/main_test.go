package main

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/RefFinder/core/versification"
)

// runCLI runs reffinder in an empty working directory and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func decodeLines(t *testing.T, out string) []ScanResult {
	t.Helper()
	var results []ScanResult
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r ScanResult
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		results = append(results, r)
	}
	return results
}

func TestVersionCmd(t *testing.T) {
	chdirTemp(t)
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "reffinder version "+version+"\n") || !strings.Contains(out, "sqlite driver: ") {
		t.Errorf("version output = %q", out)
	}
}

func TestEnvCmd(t *testing.T) {
	chdirTemp(t)
	out, err := runCLI(t, "", "env")
	if err != nil {
		t.Fatal(err)
	}
	for _, env := range []string{"REFFINDER_PORT", "REFFINDER_DB", "REFFINDER_SYSTEM"} {
		if !strings.Contains(out, env) {
			t.Errorf("env output missing %s", env)
		}
	}
}

func TestPartsCmd(t *testing.T) {
	chdirTemp(t)
	out, err := runCLI(t, "", "parts", "4–7, 9,,x")
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Parts   []map[string]int `json:"parts"`
		Display string           `json:"display"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Display != "4-7, 9" || len(got.Parts) != 2 {
		t.Errorf("parts = %+v", got)
	}

	if _, err := runCLI(t, "", "parts", strings.Repeat("1,", 200)); err == nil {
		t.Error("an oversized specification should fail")
	}
}

func TestScanStdin(t *testing.T) {
	chdirTemp(t)
	text := "Read John 3:16 and Jn 3:99 today."

	out, err := runCLI(t, text, "scan")
	if err != nil {
		t.Fatal(err)
	}
	results := decodeLines(t, out)
	if len(results) != 1 || results[0].Source != "stdin" {
		t.Fatalf("results = %+v", results)
	}
	if refs := results[0].References; len(refs) != 1 || refs[0].ID != "John-3-0" {
		t.Errorf("references = %+v", refs)
	}
	if len(results[0].TextHash) != 64 {
		t.Errorf("text_hash = %q", results[0].TextHash)
	}

	out, err = runCLI(t, text, "scan", "--include-invalid", "-")
	if err != nil {
		t.Fatal(err)
	}
	if refs := decodeLines(t, out)[0].References; len(refs) != 2 || refs[1].Valid {
		t.Errorf("references with invalid = %+v", refs)
	}
}

func TestScanFiles(t *testing.T) {
	dir := chdirTemp(t)
	createTestFile(t, dir, "docs/sermon.html", "<html><head><title>Rom 1:1</title></head><body><p>See John 3:16.</p><p>And Gen 1:1</p></body></html>")
	createTestFile(t, dir, "docs/notes.txt", "Ps 23:1")
	createTestFile(t, dir, "docs/.hidden.txt", "Jude 1:1")
	createTestFile(t, dir, "docs/image.bin", "\x00\x01\x02John 3:16")
	createTestFile(t, dir, "docs/empty.txt", "")

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte("Rev 22:21"))
	zw.Close()
	createTestFile(t, dir, "docs/more/rev.txt.gz", gz.String())

	out, err := runCLI(t, "", "scan", "docs")
	if err != nil {
		t.Fatal(err)
	}
	results := decodeLines(t, out)
	books := map[string]string{}
	for _, r := range results {
		for _, ref := range r.References {
			books[ref.Book] = filepath.Base(r.Source) + ":" + r.Path
		}
	}
	want := map[string]string{
		"John":       "sermon.html:body/p",
		"Genesis":    "sermon.html:body/p",
		"Psalms":     "notes.txt:",
		"Revelation": "rev.txt.gz:",
	}
	if len(books) != len(want) {
		t.Fatalf("found %v, want %v", books, want)
	}
	for book, src := range want {
		if books[book] != src {
			t.Errorf("%s found in %q, want %q", book, books[book], src)
		}
	}
}

func TestScanErrors(t *testing.T) {
	dir := chdirTemp(t)
	if _, err := runCLI(t, "", "scan", filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("scanning a missing file should fail")
	}
	if _, err := runCLI(t, "John 3:16", "scan", "--kind", "pdf"); err == nil {
		t.Error("an unknown kind should fail")
	}
	if _, err := runCLI(t, "<a/>", "scan", "--kind", "xml", "--xpath", "//["); err == nil {
		t.Error("a bad XPath should fail")
	}
	if _, err := runCLI(t, "", "scan", "--log-level", "loud"); err == nil {
		t.Error("an unknown log level should fail")
	}
}

func TestScanXML(t *testing.T) {
	chdirTemp(t)
	doc := `<doc><verse>John 3:16</verse><note>Rom 8:28</note></doc>`
	out, err := runCLI(t, doc, "scan", "--kind", "xml", "--xpath", "//note")
	if err != nil {
		t.Fatal(err)
	}
	results := decodeLines(t, out)
	if len(results) != 1 || len(results[0].References) != 1 || results[0].References[0].Book != "Romans" {
		t.Errorf("results = %+v", results)
	}
}

func TestAnnotateCmd(t *testing.T) {
	dir := chdirTemp(t)
	out, err := runCLI(t, "a < b, John 3:16", "annotate")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `a &lt; b, <span id="ref-John-3-0"`) || !strings.HasPrefix(out, "<section>") {
		t.Errorf("annotate output = %q", out)
	}

	createTestFile(t, dir, "in/a.txt", "Jn 1:1")
	createTestFile(t, dir, "in/b.html", "<p>Gen 1:1</p><p>Ex 20:3</p>")
	out, err = runCLI(t, "", "annotate", "--out-dir", "out", "in/a.txt", "in/b.html")
	if err != nil {
		t.Fatal(err)
	}
	paths := strings.Fields(out)
	if len(paths) != 2 {
		t.Fatalf("written files = %q", out)
	}
	page, err := os.ReadFile(filepath.Join(dir, "out", "in_b.html.html"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(page), "<section") != 2 || !strings.Contains(string(page), "<!DOCTYPE html>") {
		t.Errorf("page = %s", page)
	}
}

func TestValidateCmd(t *testing.T) {
	chdirTemp(t)
	out, err := runCLI(t, "", "validate", "jn", "3", "16")
	if err != nil || out != "John 3:16: valid\n" {
		t.Errorf("validate jn 3 16 = %q, %v", out, err)
	}
	out, err = runCLI(t, "", "validate", "Jude", "2", "1")
	if err == nil || out != "Jude 2:1: Jude has 1 chapter\n" {
		t.Errorf("validate Jude 2 1 = %q, %v", out, err)
	}
}

func TestBooksCmd(t *testing.T) {
	chdirTemp(t)
	out, err := runCLI(t, "", "books")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 67 || !strings.HasPrefix(lines[0], "BOOK") {
		t.Fatalf("got %d lines, header %q", len(lines), lines[0])
	}
	if fields := strings.Fields(lines[65]); fields[0] != "Jude" || fields[4] != "25" {
		t.Errorf("Jude row = %q", lines[65])
	}

	out, err = runCLI(t, "", "--system", "Vulgate", "books", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var books []versification.Book
	if err := json.Unmarshal([]byte(out), &books); err != nil {
		t.Fatal(err)
	}
	if len(books) != 73 || books[16].Name != "Tobit" {
		t.Errorf("got %d books", len(books))
	}
}

func TestVersedbCmds(t *testing.T) {
	dir := chdirTemp(t)
	db := filepath.Join(dir, "verses.db")

	if _, err := runCLI(t, "", "--db", db, "books"); err == nil {
		t.Error("an unseeded database should fail")
	}
	if _, err := runCLI(t, "", "versedb", "init"); err == nil {
		t.Error("versedb init without a database should fail")
	}

	out, err := runCLI(t, "", "--db", db, "versedb", "init", "--only", "KJV", "--only", "Vulgate")
	if err != nil {
		t.Fatal(err)
	}
	if out != "loaded KJV (66 books)\nloaded Vulgate (73 books)\n" {
		t.Errorf("init output = %q", out)
	}

	out, err = runCLI(t, "", "--db", db, "versedb", "books")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "schema version 1") || !strings.Contains(out, "Vulgate") || !strings.Contains(out, "73") {
		t.Errorf("versedb books = %q", out)
	}

	out, err = runCLI(t, "", "--db", db, "--system", "catholic", "validate", "Sirach", "51", "30")
	if err != nil || !strings.HasSuffix(out, "valid\n") {
		t.Errorf("validate Sirach 51:30 from the database = %q, %v", out, err)
	}
	out, err = runCLI(t, "Matt 5:48 and Matt 5:49", "--db", db, "scan")
	if err != nil {
		t.Fatal(err)
	}
	if refs := decodeLines(t, out)[0].References; len(refs) != 1 {
		t.Errorf("references from the database = %+v", refs)
	}
}

func TestConfigAndAliasesFiles(t *testing.T) {
	dir := chdirTemp(t)
	createTestFile(t, dir, "aliases.yaml", "books:\n  John: [Jhn, Yochanan]\n")
	createTestFile(t, dir, "reffinder.yaml", "finder:\n  aliases_file: aliases.yaml\n  include_invalid: true\nlog:\n  level: error\n")

	out, err := runCLI(t, "Yochanan 3:16 and Jhn 3:99", "scan")
	if err != nil {
		t.Fatal(err)
	}
	refs := decodeLines(t, out)[0].References
	if len(refs) != 2 || refs[0].Book != "John" || refs[1].Valid {
		t.Errorf("references = %+v", refs)
	}

	if _, err := runCLI(t, "", "--config", filepath.Join(dir, "nope.yaml"), "books"); err == nil {
		t.Error("a missing explicit config file should fail")
	}
}
