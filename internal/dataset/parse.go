package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"affiliate-locator/internal/models"

	"github.com/spf13/cast"
)

// ErrMalformedLine marks a source line that could not be turned into a record.
var ErrMalformedLine = errors.New("malformed line")

// LineError describes why a single source line was skipped.
type LineError struct {
	Line int // 1-based, blank lines included
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

func (e *LineError) Is(target error) bool { return target == ErrMalformedLine }

// Result holds the records accepted by Parse along with one warning per
// rejected line.
type Result struct {
	Affiliates []models.Affiliate
	Warnings   []*LineError
}

// Parse reads newline-delimited JSON affiliates. Blank lines are ignored and
// bad lines are reported in Result.Warnings instead of failing the parse.
func Parse(content string) Result {
	var res Result
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		affiliate, err := parseLine(line)
		if err != nil {
			res.Warnings = append(res.Warnings, &LineError{Line: i + 1, Err: err})
			continue
		}
		res.Affiliates = append(res.Affiliates, affiliate)
	}
	return res
}

func parseLine(line string) (models.Affiliate, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return models.Affiliate{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if fields == nil {
		return models.Affiliate{}, errors.New("invalid JSON: expected an object")
	}

	id, err := toInt(fields, "affiliate_id")
	if err != nil {
		return models.Affiliate{}, err
	}
	lat, err := toCoordinate(fields, "latitude")
	if err != nil {
		return models.Affiliate{}, err
	}
	lon, err := toCoordinate(fields, "longitude")
	if err != nil {
		return models.Affiliate{}, err
	}
	name, err := cast.ToStringE(fields["name"])
	if err != nil {
		return models.Affiliate{}, fmt.Errorf("field %q: %w", "name", err)
	}

	return models.Affiliate{
		ID:        id,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

func field(fields map[string]any, key string) (any, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("field %q: missing", key)
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return v, nil
}

func toInt(fields map[string]any, key string) (int, error) {
	v, err := field(fields, key)
	if err != nil {
		return 0, err
	}

	var f float64
	switch t := v.(type) {
	case string:
		// decimal only: cast would read "010" as octal and "0x1A" as hex
		if n, err := strconv.ParseInt(t, 10, strconv.IntSize); err == nil {
			return int(n), nil
		}
		// "12.0"-style ids
		if f, err = strconv.ParseFloat(t, 64); err != nil {
			return 0, fmt.Errorf("field %q: not an integer: %q", key, t)
		}
	case float64:
		f = t
	default:
		n, err := cast.ToIntE(v)
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return n, nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, fmt.Errorf("field %q: integer out of range: %v", key, v)
	}
	return int(f), nil
}

func toCoordinate(fields map[string]any, key string) (float64, error) {
	v, err := field(fields, key)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("field %q: not a finite number: %v", key, v)
	}
	return f, nil
}
