package compiler

import (
	"bufio"
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/specialistvlad/dllforge/internal/diag"
)

// maxLineSize bounds one line of compiler output.
const maxLineSize = 1024 * 1024

var (
	// A.cs(12,5): error CS0246: The type or namespace name ...
	locatedDiagRegex = regexp.MustCompile(`^(.+?)\((\d+)(?:,(\d+))?\)\s*:\s*(error|warning)\s+([A-Za-z]+\d+)\s*:\s*(.*)$`)
	// error CS2001: Source file `x' could not be found
	// mcs: error CS2001: ...
	bareDiagRegex = regexp.MustCompile(`^(?:\S+:\s+)?(error|warning)\s+([A-Za-z]+\d+)\s*:\s*(.*)$`)
)

// ParseDiagnostics extracts Mono/Roslyn style diagnostics from compiler
// output. files maps the file names the compiler saw back to the paths
// reported to the user; names absent from files are kept as printed. Lines
// that are not diagnostics are ignored. Output that cannot be scanned, such
// as a line longer than maxLineSize, ends parsing with an Error diagnostic.
func ParseDiagnostics(output []byte, files map[string]string) diag.Diagnostics {
	var ds diag.Diagnostics
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := locatedDiagRegex.FindStringSubmatch(line); m != nil {
			lineNo, _ := strconv.Atoi(m[2])
			col, _ := strconv.Atoi(m[3])
			file := m[1]
			if orig, ok := files[file]; ok {
				file = orig
			}
			ds = append(ds, diag.Diagnostic{
				Severity: severityOf(m[4]),
				Code:     m[5],
				Message:  m[6],
				Location: &diag.Location{File: file, Line: lineNo, Column: col},
			})
			continue
		}
		if m := bareDiagRegex.FindStringSubmatch(line); m != nil {
			ds = append(ds, diag.Diagnostic{
				Severity: severityOf(m[1]),
				Code:     m[2],
				Message:  remapNames(m[3], files),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		ds = append(ds, diag.Errorf("reading compiler output: %v", err))
	}
	return ds
}

func severityOf(s string) diag.Severity {
	if s == "warning" {
		return diag.Warning
	}
	return diag.Error
}

// remapNames rewrites scratch file names mentioned in a free-form message.
// Longer names are replaced first so a full path wins over its base name.
func remapNames(msg string, files map[string]string) string {
	names := make([]string, 0, len(files))
	for scratch := range files {
		names = append(names, scratch)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for _, scratch := range names {
		msg = strings.ReplaceAll(msg, scratch, files[scratch])
	}
	return msg
}
