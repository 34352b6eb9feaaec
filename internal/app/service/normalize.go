package service

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Pranav-7262/mern-recipe-app/internal/common"
)

var leadingMinutes = regexp.MustCompile(`\d+`)

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseIngredients accepts either a JSON list of strings or a single
// comma separated string. Blank entries are dropped.
func parseIngredients(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil, common.ValidationError("Ingredients must be a list or a comma-separated string")
		}
		list = strings.Split(joined, ",")
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// parseCookingTime accepts a number of minutes or a string such as
// "25 mins", in which case the first run of digits is used.
func parseCookingTime(raw json.RawMessage) (int, error) {
	invalid := common.ValidationError("cookingTime must be a positive number of minutes")

	var minutes float64
	if err := json.Unmarshal(raw, &minutes); err == nil {
		if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes > math.MaxInt32 {
			return 0, invalid
		}
		rounded := int(math.Round(minutes))
		if rounded <= 0 {
			return 0, invalid
		}
		return rounded, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, invalid
	}
	digits := leadingMinutes.FindString(text)
	if digits == "" {
		return 0, invalid
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 || n > math.MaxInt32 {
		return 0, invalid
	}
	return n, nil
}
