package commands

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

func asJson(data any) string {
	bz, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(bz)
}

// printer renders data as json or yaml. Yaml goes through json so both share the json field names.
func printer(format string, data any) (string, error) {
	switch format {
	case "json":
		return asJson(data), nil
	case "yaml":
		bz, err := json.Marshal(data)
		if err != nil {
			return "", err
		}
		var reserialized any
		if err = yaml.Unmarshal(bz, &reserialized); err != nil {
			return "", err
		}
		out, err := yaml.Marshal(reserialized)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return "", fmt.Errorf("invalid format %q, may be json or yaml", format)
}
