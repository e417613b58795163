package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexBool accepts true/false, numbers, and "true"/"1"/"on"/"yes" style strings.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case bool:
		*b = FlexBool(t)
	case float64:
		*b = t != 0
	case string:
		*b = FlexBool(isTruthy(t))
	default:
		return fmt.Errorf("cannot use %s as a boolean", data)
	}
	return nil
}

// FlexInt accepts JSON numbers and numeric strings.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case float64:
		*i = FlexInt(int(t))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return fmt.Errorf("cannot use %q as an integer", t)
		}
		*i = FlexInt(n)
	default:
		return fmt.Errorf("cannot use %s as an integer", data)
	}
	return nil
}
