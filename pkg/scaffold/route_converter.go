package scaffold

// Dialect identifies a host router's path syntax
type Dialect int

const (
	DialectEcho Dialect = iota
	DialectGin
	DialectFiber
	DialectChi
)

// WildcardParam is the name under which adapters expose the catch-all value
const WildcardParam = "*"

// ConvertPath converts a mount path into the given router's syntax
//
//	/crud/{*}       -> echo/fiber/chi: /crud/*   gin: /crud/*path
//	/health/{name}  -> echo/gin/fiber: /health/:name   chi: /health/{name}
func ConvertPath(path Path, dialect Dialect) string {
	out := ""
	for _, part := range path.Parts() {
		switch part.Type {
		case StaticPart:
			out += part.Value
		case ParameterPart:
			if dialect == DialectChi {
				out += "{" + part.Value + "}"
			} else {
				out += ":" + part.Value
			}
		case WildcardPart:
			if dialect == DialectGin {
				out += "*path"
			} else {
				out += "*"
			}
		}
	}
	if out == "" || out[0] != '/' {
		out = "/" + out
	}
	return out
}
