package binder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/clbanning/mxj/v2"
	json "github.com/goccy/go-json"
)

// envelopeKey names the element wrapping the entity in XML and JSON payloads
const envelopeKey = "data"

// ctxReader stops reading once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readBody(ctx context.Context, body io.Reader, limit int64) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(ctxReader{ctx: ctx, r: body}, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("request body exceeds %d bytes", limit)
	}
	return data, nil
}

func isXML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "xml")
}

// xmlPayload converts an XML document into a generic tree and returns the
// "data" element: the document element itself when it is named data,
// otherwise its child named data (case-insensitive).
func xmlPayload(body []byte) (map[string]any, error) {
	doc, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, fmt.Errorf("malformed XML: %w", err)
	}

	for rootName, root := range doc {
		if strings.EqualFold(rootName, envelopeKey) {
			return asObject(root)
		}
		children, ok := root.(map[string]any)
		if !ok {
			break
		}
		for name, child := range children {
			if strings.EqualFold(name, envelopeKey) {
				return asObject(child)
			}
		}
	}
	return nil, fmt.Errorf("XML payload has no %s element", envelopeKey)
}

// jsonPayload decodes a JSON object. An object whose only member is "data"
// is unwrapped, so the XML envelope shape works over JSON too.
func jsonPayload(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}

	obj, err := asObject(doc)
	if err != nil {
		return nil, err
	}
	if len(obj) == 1 {
		for name, inner := range obj {
			if strings.EqualFold(name, envelopeKey) {
				if env, ok := inner.(map[string]any); ok {
					return env, nil
				}
			}
		}
	}
	return obj, nil
}

func asObject(v any) (map[string]any, error) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, nil
	case mxj.Map:
		return obj, nil
	case string:
		// <data/> and <data></data>
		if strings.TrimSpace(obj) == "" {
			return map[string]any{}, nil
		}
	}
	return nil, fmt.Errorf("payload must be an object, got %T", v)
}
