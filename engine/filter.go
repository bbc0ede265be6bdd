package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tnqbao/gau-observability/entity"
)

// MatchesFilters reports whether a sample passes every filter clause.
func MatchesFilters(sample *entity.MetricSample, filters []entity.FilterExpr) bool {
	for i := range filters {
		if !matchFilter(sample, &filters[i]) {
			return false
		}
	}
	return true
}

func matchFilter(sample *entity.MetricSample, filter *entity.FilterExpr) bool {
	fieldValue, ok := sampleField(sample, filter.Field)
	if !ok {
		return false
	}

	switch filter.Operator {
	case "eq":
		return compareEqual(fieldValue, filter.Value, filter.CaseSensitive)
	case "neq":
		return !compareEqual(fieldValue, filter.Value, filter.CaseSensitive)
	case "gt", "gte", "lt", "lte":
		left, leftOK := toFloat(fieldValue)
		right, rightOK := toFloat(filter.Value)
		if !leftOK || !rightOK {
			return false
		}
		switch filter.Operator {
		case "gt":
			return left > right
		case "gte":
			return left >= right
		case "lt":
			return left < right
		default:
			return left <= right
		}
	case "in", "nin":
		list, ok := filter.Value.([]interface{})
		if !ok {
			return false
		}
		found := false
		for _, candidate := range list {
			if compareEqual(fieldValue, candidate, filter.CaseSensitive) {
				found = true
				break
			}
		}
		if filter.Operator == "in" {
			return found
		}
		return !found
	case "contains":
		haystack := toString(fieldValue)
		needle := toString(filter.Value)
		if !filter.CaseSensitive {
			haystack = strings.ToLower(haystack)
			needle = strings.ToLower(needle)
		}
		return strings.Contains(haystack, needle)
	case "regex":
		pattern := toString(filter.Value)
		if !filter.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(toString(fieldValue))
	default:
		return false
	}
}

// sampleField resolves a filter field against a sample. "label.<key>" reads
// from the label set; anything else addresses the sample columns.
func sampleField(sample *entity.MetricSample, field string) (interface{}, bool) {
	if key, ok := strings.CutPrefix(field, "label."); ok {
		value, exists := sample.Labels[key]
		if !exists {
			return nil, false
		}
		return value, true
	}

	switch field {
	case "metric_name", "metric":
		return sample.MetricName, true
	case "value":
		return sample.Value, true
	case "timestamp":
		return sample.Timestamp.Unix(), true
	default:
		return nil, false
	}
}

func compareEqual(left, right interface{}, caseSensitive bool) bool {
	if lf, lok := toFloat(left); lok {
		if rf, rok := toFloat(right); rok {
			return lf == rf
		}
	}

	ls := toString(left)
	rs := toString(right)
	if caseSensitive {
		return ls == rs
	}
	return strings.EqualFold(ls, rs)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
