package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	menulet "github.com/Paranoid-AF/menulet"
)

const (
	noInputText    = "/no input/"
	nothingYetText = "/nothing yet/"
)

// Project renders every entry as a choice row, most recent first. A row's id
// is the entry's position and its priority the negated position.
func Project(l *Ledger) []menulet.Choice {
	choices := make([]menulet.Choice, 0, l.Len())
	for i := l.Len() - 1; i >= 0; i-- {
		priority := -i
		choices = append(choices, menulet.Choice{
			Text:     RowText(i, l.entries[i]),
			ID:       i,
			Priority: &priority,
		})
	}
	return choices
}

// RowText formats one entry as "<idx>: <input> <=|≠> <result>".
func RowText(idx int, e Entry) string {
	return fmt.Sprintf("%d: %s %s %s", idx, FormatInput(e.Input), relation(e), FormatResult(e.Result))
}

func relation(e Entry) string {
	if e.Broken {
		return "≠"
	}
	return "="
}

// FormatInput renders typed text with surrounding whitespace removed.
func FormatInput(in Input) string {
	text, ok := in.Text()
	if !ok {
		return noInputText
	}
	return strings.TrimSpace(text)
}

// FormatResult renders a result for display.
func FormatResult(r Result) string {
	v, ok := r.Value()
	if !ok {
		return nothingYetText
	}
	return FormatValue(v)
}

// FormatValue renders a computed value: numbers in their shortest form,
// strings verbatim, everything else as JSON.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
