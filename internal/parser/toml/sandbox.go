package toml

import (
	"fmt"
	"regexp"
	"strings"
)

// SandboxViolationError reports a disallowed construct found in untrusted
// model source, with the offending line for the user to inspect.
type SandboxViolationError struct {
	File   string
	Line   int
	Source string
}

func (e *SandboxViolationError) Error() string {
	msg := fmt.Sprintf("invalid model: include directive found on line %d:\n%s", e.Line, e.Source)
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	return msg
}

// An include directive is either the top-level key "include = [...]" or an
// [include] / [[include]] table header.
var reIncludeDirective = regexp.MustCompile(`^\s*(include\s*=|\[\[?\s*include\s*\]?\])`)

// locateIncludeDirective finds the first line of raw model source that looks
// like an include directive, for error reporting. Whether the document really
// declares one is decided against the decoded form, so an include-looking
// line inside a multiline string never trips the guard on its own.
func locateIncludeDirective(source string) (line int, text string, ok bool) {
	for i, l := range strings.Split(source, "\n") {
		if reIncludeDirective.MatchString(l) {
			return i + 1, l, true
		}
	}
	return 0, "", false
}
