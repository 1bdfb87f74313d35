package scaffold

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// KeyParser converts a raw route value into a typed entity key
type KeyParser func(raw string) (any, error)

// KeyParsers maps key type names to their parsers
var KeyParsers = map[string]KeyParser{
	"int":       func(raw string) (any, error) { return strconv.Atoi(raw) },
	"int32":     parseInt32,
	"int64":     func(raw string) (any, error) { return strconv.ParseInt(raw, 10, 64) },
	"uint":      parseUint,
	"uint64":    func(raw string) (any, error) { return strconv.ParseUint(raw, 10, 64) },
	"string":    ParseString,
	"float64":   func(raw string) (any, error) { return strconv.ParseFloat(raw, 64) },
	"uuid.UUID": ParseUUID,
}

// KeyTypeAliases maps convenient aliases to their full type names
var KeyTypeAliases = map[string]string{
	"UUID":   "uuid.UUID",
	"long":   "int64",
	"float":  "float64",
	"double": "float64",
}

func parseInt32(raw string) (any, error) {
	val, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	return int32(val), nil
}

func parseUint(raw string) (any, error) {
	val, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return nil, err
	}
	return uint(val), nil
}

// ParseString returns the raw value, rejecting the empty string
func ParseString(raw string) (any, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty key")
	}
	return raw, nil
}

// ParseUUID parses a raw value to uuid.UUID
func ParseUUID(raw string) (any, error) {
	return uuid.Parse(raw)
}

// ResolveKeyType resolves a key type alias to its actual type name
func ResolveKeyType(typeName string) string {
	if actualType, isAlias := KeyTypeAliases[typeName]; isAlias {
		return actualType
	}
	return typeName
}

// GetKeyParser returns the parser for a key type name, checking aliases first
func GetKeyParser(typeName string) (KeyParser, bool) {
	parser, exists := KeyParsers[ResolveKeyType(typeName)]
	return parser, exists
}
