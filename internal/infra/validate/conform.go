package validate

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// conform rebuilds a decoded JSON value in the layout of t. Declared struct
// keys are accepted in camelCase or snake_case, with the camelCase key winning;
// undeclared keys are dropped. Free-form maps and interface values are kept
// verbatim. The first value whose JSON type does not fit t is reported by path,
// e.g. "keypoints[0].x". The input is never modified.
func conform(v any, t reflect.Type, path string) (out any, badPath string, ok bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, isObj := v.(map[string]any)
		if !isObj {
			return nil, path, false
		}
		res := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := jsonName(f)
			if name == "" {
				continue
			}
			val, found := lookup(obj, name)
			if !found || val == nil {
				continue // absent; presence rules decide
			}
			c, bad, fits := conform(val, f.Type, joinPath(path, name))
			if !fits {
				return nil, bad, false
			}
			res[name] = c
		}
		return res, "", true

	case reflect.Slice:
		arr, isArr := v.([]any)
		if !isArr {
			return nil, path, false
		}
		res := make([]any, len(arr))
		for i, elem := range arr {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			if elem == nil {
				return nil, elemPath, false
			}
			c, bad, fits := conform(elem, t.Elem(), elemPath)
			if !fits {
				return nil, bad, false
			}
			res[i] = c
		}
		return res, "", true

	case reflect.Map:
		if _, isObj := v.(map[string]any); !isObj {
			return nil, path, false
		}
		return v, "", true

	case reflect.String:
		_, fits := v.(string)
		return v, path, fits

	case reflect.Bool:
		_, fits := v.(bool)
		return v, path, fits

	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_, fits := v.(float64)
		return v, path, fits

	default:
		return v, "", true
	}
}

// lookup finds the declared key name in obj, or its snake_case spelling.
func lookup(obj map[string]any, name string) (any, bool) {
	if v, ok := obj[name]; ok {
		return v, true
	}
	var aliases []string
	for k := range obj {
		if strings.Contains(k, "_") && snakeToCamel(k) == name {
			aliases = append(aliases, k)
		}
	}
	if len(aliases) == 0 {
		return nil, false
	}
	sort.Strings(aliases)
	return obj[aliases[0]], true
}

func jsonName(f reflect.StructField) string {
	if f.PkgPath != "" {
		return ""
	}
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
