package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldDetail struct {
	Loc     []any  `json:"loc"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// ParseDetail extracts a human-readable message from a boundary error body
// of the form {"detail": string | [{"loc": [...], "msg": "..."}]}. Field
// arrays are flattened to "loc.path: msg" pairs joined with ", ".
func ParseDetail(raw []byte, fallback string) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 || string(body.Detail) == "null" {
		return fallback
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		if s == "" {
			return fallback
		}
		return s
	}

	var fields []fieldDetail
	if err := json.Unmarshal(body.Detail, &fields); err == nil {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, formatLoc(f.Loc)+": "+formatMsg(f))
		}
		if len(parts) == 0 {
			return fallback
		}
		return strings.Join(parts, ", ")
	}

	return string(body.Detail)
}

func formatLoc(loc []any) string {
	if len(loc) == 0 {
		return "Field"
	}
	parts := make([]string, 0, len(loc))
	for _, p := range loc {
		switch v := p.(type) {
		case string:
			parts = append(parts, v)
		case float64:
			parts = append(parts, fmt.Sprintf("%d", int64(v)))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, ".")
}

func formatMsg(f fieldDetail) string {
	switch {
	case f.Msg != "":
		return f.Msg
	case f.Message != "":
		return f.Message
	default:
		return "Invalid"
	}
}
