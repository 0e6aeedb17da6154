package tool

import (
	"encoding/json"
	"errors"
	"strings"
)

var errEmptyQuery = errors.New("empty query")

// parseQuery accepts {"query": "..."} or a bare string. Text-protocol models
// frequently quote the bare string, so surrounding quotes are dropped.
func parseQuery(arguments string) (string, error) {
	trimmed := strings.TrimSpace(arguments)

	if strings.HasPrefix(trimmed, "{") {
		var input struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(trimmed), &input); err == nil {
			if q := strings.TrimSpace(input.Query); q != "" {
				return q, nil
			}
			return "", errEmptyQuery
		}
	}

	trimmed = strings.Trim(trimmed, "\"'`")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return "", errEmptyQuery
	}
	return trimmed, nil
}

func queryParameters(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{"query"},
	}
}
