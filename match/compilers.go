package match

import (
	"regexp"
	"strconv"
	"time"

	"github.com/dlclark/regexp2"
)

// DotNetMatchTimeout bounds a single match attempt made by a Pattern
// from CompileDotNet.  The backtracking engine can take a while on
// hostile input.
var DotNetMatchTimeout = time.Second

// CompileDotNet compiles the source with github.com/dlclark/regexp2,
// which supports .NET-style pattern syntax, including named groups
// and groups that do not participate in a successful match.
//
// Spans in the produced Results are measured in runes.
func CompileDotNet(source string) (*Pattern, error) {
	re, err := regexp2.Compile(source, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = DotNetMatchTimeout
	return NewPattern(source, &dotNetMatcher{re: re})
}

type dotNetMatcher struct {
	re *regexp2.Regexp
}

func (m *dotNetMatcher) Match(text string) (*Result, error) {
	found, err := m.re.FindStringMatch(text)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return Failure, nil
	}

	gs := found.Groups()
	acc := make([]Capture, len(gs))
	for i, g := range gs {
		c := Capture{
			Name: g.Name,
		}
		if 0 < len(g.Captures) {
			c.Success = true
			c.Value = g.String()
			c.Index = g.Index
			c.Length = g.Length
		}
		acc[i] = c
	}

	return &Result{
		Success: true,
		Groups:  acc,
	}, nil
}

// CompileGo compiles the source with the standard library's RE2
// engine, which guarantees linear-time matching but supports fewer
// constructs than CompileDotNet.
//
// Spans in the produced Results are measured in bytes.
func CompileGo(source string) (*Pattern, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	return NewPattern(source, &goMatcher{re: re})
}

type goMatcher struct {
	re *regexp.Regexp
}

func (m *goMatcher) Match(text string) (*Result, error) {
	locs := m.re.FindStringSubmatchIndex(text)
	if locs == nil {
		return Failure, nil
	}

	names := m.re.SubexpNames()
	acc := make([]Capture, len(locs)/2)
	for i := range acc {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = strconv.Itoa(i)
		}
		c := Capture{
			Name: name,
		}
		if start, end := locs[2*i], locs[2*i+1]; 0 <= start {
			c.Success = true
			c.Value = text[start:end]
			c.Index = start
			c.Length = end - start
		}
		acc[i] = c
	}

	return &Result{
		Success: true,
		Groups:  acc,
	}, nil
}
