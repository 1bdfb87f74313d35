package scaffold

import (
	"strings"
)

// PathPartType represents the type of path part
type PathPartType int

const (
	StaticPart PathPartType = iota
	ParameterPart
	WildcardPart
)

// PathPart represents a single part of a mount path
type PathPart struct {
	Type  PathPartType
	Value string // For static parts: the literal text, for parameters: the parameter name
}

// Path is a host-side mount path such as "/admin/{*}" or "/health".
// CRUD route templates are matched by the routing package behind a wildcard mount.
type Path string

// Raw returns the original path
func (p Path) Raw() string {
	return string(p)
}

// Parts parses the path and returns the individual parts
func (p Path) Parts() []PathPart {
	path := string(p)
	var parts []PathPart

	i := 0
	for i < len(path) {
		if path[i] == '{' {
			j := i + 1
			for j < len(path) && path[j] != '}' {
				j++
			}
			if j < len(path) {
				paramContent := path[i+1 : j]
				if paramContent == "*" {
					parts = append(parts, PathPart{Type: WildcardPart, Value: "*"})
				} else {
					parts = append(parts, PathPart{Type: ParameterPart, Value: paramContent})
				}
				i = j + 1
			} else {
				// Malformed, treat as static
				parts = append(parts, PathPart{Type: StaticPart, Value: string(path[i])})
				i++
			}
		} else {
			start := i
			for i < len(path) && path[i] != '{' {
				i++
			}
			parts = append(parts, PathPart{Type: StaticPart, Value: path[start:i]})
		}
	}

	return parts
}

// NewPath creates a new Path from a string
func NewPath(path string) Path {
	return Path(path)
}

// MountPath returns the catch-all path serving everything below prefix
func MountPath(prefix string) Path {
	prefix = strings.TrimRight(prefix, "/")
	return Path(prefix + "/{*}")
}
