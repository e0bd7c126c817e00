package config

import (
	"reflect"

	"gopkg.in/yaml.v3"
)

// ApplyDefaults writes defaults overlaid with the loaded configuration into dst.
// Both are compared in their yaml form: a loaded field overrides only when present and not empty,
// nested sections merge key by key.
func ApplyDefaults(defaults any, loaded any, dst any) error {
	merged, err := asYamlMap(defaults)
	if err != nil {
		return err
	}
	overrides, err := asYamlMap(loaded)
	if err != nil {
		return err
	}
	mergeYaml(merged, overrides)

	bz, err := yaml.Marshal(merged)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bz, dst)
}

func asYamlMap(v any) (map[string]any, error) {
	bz, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err = yaml.Unmarshal(bz, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeYaml(base map[string]any, overrides map[string]any) {
	for key, value := range overrides {
		existing, ok := base[key]
		if !ok {
			base[key] = value
			continue
		}
		nestedBase, baseIsMap := existing.(map[string]any)
		nestedOverride, overrideIsMap := value.(map[string]any)
		if baseIsMap && overrideIsMap {
			mergeYaml(nestedBase, nestedOverride)
			continue
		}
		if replacesDefault(value) {
			base[key] = value
		}
	}
}

// replacesDefault reports whether a loaded value replaces a default. Empty lists and maps never do,
// scalars do even when zero since omitempty already drops unset fields.
func replacesDefault(value any) bool {
	if value == nil {
		return false
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Map:
		return false
	case reflect.Slice, reflect.Array:
		return reflect.ValueOf(value).Len() > 0
	}
	return true
}
