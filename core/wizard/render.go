package wizard

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// View is everything needed to draw one step. It holds no reference to the draft.
type View struct {
	StepID string
	Label  string
	Index  int
	Total  int
	Fields []FieldView
}

type FieldView struct {
	Field
	Value string
	Error string
}

func (v View) IsFirst() bool { return v.Index == 0 }
func (v View) IsLast() bool  { return v.Index == v.Total-1 }

// HasErrors reports whether any field of the step carries an error.
func (v View) HasErrors() bool {
	for _, f := range v.Fields {
		if f.Error != "" {
			return true
		}
	}
	return false
}

// Render is a pure function of the draft and the step: it never touches navigation state.
// errs maps field paths ("title", "modules[0].title") to messages; nested errors surface on the top field.
func Render[T any](draft T, step Step[T], index, total int, errs map[string]string) View {
	values := map[string]interface{}{}
	if data, err := json.Marshal(draft); err == nil {
		_ = json.Unmarshal(data, &values)
	}

	view := View{
		StepID: step.ID,
		Label:  step.Label,
		Index:  index,
		Total:  total,
		Fields: make([]FieldView, 0, len(step.Fields)),
	}
	for _, f := range step.Fields {
		view.Fields = append(view.Fields, FieldView{
			Field: f,
			Value: formatValue(f.Kind, values[f.Name]),
			Error: fieldError(f.Name, errs),
		})
	}
	return view
}

func fieldError(name string, errs map[string]string) string {
	if msg, ok := errs[name]; ok {
		return msg
	}
	var nested []string
	for path, msg := range errs {
		if strings.HasPrefix(path, name+"[") || strings.HasPrefix(path, name+".") {
			nested = append(nested, path+": "+msg)
		}
	}
	if len(nested) == 0 {
		return ""
	}
	sort.Strings(nested)
	return strings.Join(nested, "; ")
}

func formatValue(kind FieldKind, v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if kind == Date && len(val) >= 10 {
			return val[:10]
		}
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []interface{}:
		if kind == Groups {
			return fmt.Sprintf("%d", len(val))
		}
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
