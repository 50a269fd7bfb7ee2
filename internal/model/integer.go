package model

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// IntegerLike is an int64 that also accepts its decimal string form in JSON.
//
// Browser clients often keep ids they received as strings, so
// {"sessionId": 3}, {"sessionId": "3"} and {"sessionId": 3.0} all decode
// to 3. JSON null leaves the zero value, as does an empty string;
// "required" then rejects it.
type IntegerLike int64

// Int64 returns the plain integer.
func (i IntegerLike) Int64() int64 {
	return int64(i)
}

func (i *IntegerLike) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = bytes.TrimSpace([]byte(s))
		if len(data) == 0 {
			return nil
		}
	}

	n, err := parseInteger(string(data))
	if err != nil {
		return err
	}

	*i = IntegerLike(n)
	return nil
}

// parseInteger accepts plain integers and floats with no fractional part.
func parseInteger(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("must be an integer, got %s", s)
	}
	return int64(f), nil
}

func (i IntegerLike) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(i), 10)), nil
}
