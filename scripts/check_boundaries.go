package main

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule describes what one hexagonal layer may import besides the
// standard library. Paths are relative to the owning context module.
type layerRule struct {
	name            string
	localAllowed    []string
	sharedAllowed   []string
	allowThirdParty bool
	forbidAdapters  bool
}

var layerRules = map[string]layerRule{
	"domain": {
		name:           "domain",
		localAllowed:   []string{"domain"},
		forbidAdapters: true,
	},
	"ports": {
		name:           "ports",
		localAllowed:   []string{"domain"},
		sharedAllowed:  []string{"contracts"},
		forbidAdapters: true,
	},
	"application": {
		name:           "application",
		localAllowed:   []string{"application", "domain", "ports"},
		sharedAllowed:  []string{"contracts"},
		forbidAdapters: true,
	},
	"transport": {
		name:           "transport",
		localAllowed:   []string{"transport"},
		forbidAdapters: true,
	},
	"adapters": {
		name:            "adapters",
		localAllowed:    []string{"adapters", "application", "domain", "ports", "transport"},
		sharedAllowed:   []string{"contracts"},
		allowThirdParty: true,
	},
}

func main() {
	modulePath, err := readModulePath("go.mod")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read module path: %v\n", err)
		os.Exit(2)
	}

	violations := collectViolations(modulePath, "contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func readModulePath(goMod string) (string, error) {
	f, err := os.Open(goMod)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if value, ok := strings.CutPrefix(line, "module "); ok {
			return strings.Trim(strings.TrimSpace(value), "\""), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%s has no module directive", goMod)
}

func collectViolations(modulePath string, root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		normalized := filepath.ToSlash(path)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}

		contextPrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		rule, ok := layerRules[parts[3]]
		if !ok {
			// Module root files (module.go, doc.go) are composition code.
			return nil
		}
		violations = append(violations, validateFile(path, normalized, modulePath, contextPrefix, rule)...)
		return nil
	})

	return violations
}

func validateFile(path string, normalizedPath string, modulePath string, contextPrefix string, rule layerRule) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{
			File: normalizedPath,
			Line: 1,
			Rule: "file must parse",
		}}
	}

	var violations []violation
	report := func(line int, importPath string, message string) {
		violations = append(violations, violation{
			File:   normalizedPath,
			Line:   line,
			Import: importPath,
			Rule:   message,
		})
	}

	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, contextPrefix) {
			report(line, importPath, "cross-module imports are forbidden")
			continue
		}
		if rule.forbidAdapters && strings.Contains(importPath, "/adapters/") {
			report(line, importPath, rule.name+" must not import adapters")
			continue
		}
		if hasPrefix(importPath, modulePath+"/internal") {
			report(line, importPath, rule.name+" must not import runtime infrastructure")
			continue
		}
		if isStdlib(modulePath, importPath) {
			continue
		}
		if !hasPrefix(importPath, modulePath) {
			if !rule.allowThirdParty {
				report(line, importPath, rule.name+" must not import third-party packages")
			}
			continue
		}

		allowed := make([]string, 0, len(rule.localAllowed)+len(rule.sharedAllowed))
		for _, layer := range rule.localAllowed {
			allowed = append(allowed, contextPrefix+"/"+layer)
		}
		for _, shared := range rule.sharedAllowed {
			allowed = append(allowed, modulePath+"/"+shared)
		}
		if !isAllowed(importPath, allowed) {
			report(line, importPath, rule.name+" import is outside explicit allowlist")
		}
	}

	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(modulePath string, importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
