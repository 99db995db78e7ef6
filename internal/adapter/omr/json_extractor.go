package omr

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// JSONExtractor reads sheets that were already digitized upstream. Two shapes
// are accepted:
//
//	{"1":"a","2":"a,c"}
//	[{"question_no":1,"selected_option":"a"}, ...]
type JSONExtractor struct{}

func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

func (e *JSONExtractor) Extract(ctx context.Context, sheet []byte) (map[int]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(sheet) {
		return nil, errors.New("sheet is not valid JSON")
	}

	root := gjson.ParseBytes(sheet)
	answers := make(map[int]string)
	switch {
	case root.IsObject():
		root.ForEach(func(k, v gjson.Result) bool {
			if q, err := strconv.Atoi(strings.TrimSpace(k.String())); err == nil {
				addAnswer(answers, q, v)
			}
			return true
		})
	case root.IsArray():
		for _, item := range root.Array() {
			q := item.Get("question_no")
			if q.Type != gjson.Number {
				continue
			}
			addAnswer(answers, int(q.Int()), item.Get("selected_option"))
		}
	default:
		return nil, errors.New("sheet must be a JSON object or array")
	}
	return answers, nil
}

func addAnswer(answers map[int]string, q int, v gjson.Result) {
	var parts []string
	if v.IsArray() {
		for _, opt := range v.Array() {
			parts = append(parts, opt.String())
		}
	} else if v.Exists() && v.Type != gjson.Null {
		parts = append(parts, v.String())
	}
	if answer := strings.Join(parts, ","); strings.TrimSpace(answer) != "" {
		answers[q] = answer
	}
}
