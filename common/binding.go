package common

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// BindJSON decodes and validates a JSON request body into v. Empty bodies
// such as null, {}, [], "" or false are rejected before decoding.
func BindJSON(c *gin.Context, v any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return InvalidBody(err)
	}

	var shape any
	if err := json.Unmarshal(raw, &shape); err != nil {
		return InvalidBody(err)
	}
	if isEmptyValue(shape) {
		return Invalid("invalid request data")
	}

	if err := binding.JSON.BindBody(raw, v); err != nil {
		return InvalidBody(err)
	}
	return nil
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
