package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// record is the flat, serializable view of an Item.
type record struct {
	File      string  `json:"file"`
	Found     bool    `json:"found"`
	Main      *string `json:"main"`
	Extension *string `json:"extension"`
	Symbology string  `json:"symbology,omitempty"`
	Tier      string  `json:"tier,omitempty"`
	Transform string  `json:"transform,omitempty"`
	Attempts  int     `json:"attempts"`
	Gated     bool    `json:"gated,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func toRecord(it Item) record {
	rec := record{File: it.Path}
	if it.Err != nil {
		rec.Error = it.Err.Error()
	}
	res := it.Result
	if res == nil {
		return rec
	}
	rec.Attempts = res.Attempts
	rec.Gated = res.Gated
	if res.Found() {
		rec.Found = true
		rec.Main = &res.Main
		if res.Extension != "" {
			rec.Extension = &res.Extension
		}
		rec.Symbology = res.Symbology.String()
		rec.Tier = res.Tier.String()
		rec.Transform = res.Transform
	}
	return rec
}

// FormatItems renders items as json, csv or text (the default).
func FormatItems(items []Item, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(items)
	case "csv":
		return formatCSV(items)
	case "", "text":
		return formatText(items), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatJSON(items []Item) (string, error) {
	out := struct {
		Images []record `json:"images"`
	}{Images: make([]record, len(items))}
	for i, it := range items {
		out.Images[i] = toRecord(it)
	}
	bts, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

func formatCSV(items []Item) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	rows := [][]string{{"file", "found", "main", "extension", "symbology", "tier", "transform", "attempts", "error"}}
	for _, it := range items {
		rec := toRecord(it)
		rows = append(rows, []string{
			rec.File,
			strconv.FormatBool(rec.Found),
			deref(rec.Main),
			deref(rec.Extension),
			rec.Symbology,
			rec.Tier,
			rec.Transform,
			strconv.Itoa(rec.Attempts),
			rec.Error,
		})
	}
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	return output.String(), nil
}

func formatText(items []Item) string {
	var output strings.Builder
	for _, it := range items {
		output.WriteString(textLine(it))
		output.WriteByte('\n')
	}
	return output.String()
}

func textLine(it Item) string {
	switch {
	case it.Err != nil:
		return fmt.Sprintf("%s: error: %v", it.Path, it.Err)
	case !it.Result.Found():
		if it.Result != nil && it.Result.Gated {
			return fmt.Sprintf("%s: not found (image quality too low, %d attempts)", it.Path, it.Result.Attempts)
		}
		return fmt.Sprintf("%s: not found", it.Path)
	}
	res := it.Result
	code := res.Main
	if res.Extension != "" {
		code += " " + res.Extension
	}
	return fmt.Sprintf("%s: %s [%s, tier %s, %s, %d attempts]",
		it.Path, code, res.Symbology, res.Tier, res.Transform, res.Attempts)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

