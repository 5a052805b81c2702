package display

import (
	"encoding/json"
	"fmt"
)

// JSON pretty-prints a structured payload for terminal display.
func JSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}
