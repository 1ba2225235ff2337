package io

import (
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
)

type tomlFile struct {
	Transformations []tomlTransformation `toml:"transformation"`
}

type tomlTransformation struct {
	ID     string     `toml:"id"`
	Source string     `toml:"source"`
	Target string     `toml:"target"`
	Steps  []tomlStep `toml:"step"`
}

type tomlStep struct {
	Operation string            `toml:"operation"`
	Source    []string          `toml:"source"`
	Target    string            `toml:"target"`
	Params    map[string]string `toml:"params"`
}

// ReadTOML decodes transformation descriptions in the TOML format:
//
//	[[transformation]]
//	id = "contact-person"
//	source = "Contact:1.0.0"
//	target = "Person:1.0.0"
//
//	  [[transformation.step]]
//	  operation = "concat"
//	  source = ["firstName", "lastName"]
//	  target = "fullName"
//	  params = { concatString = " " }
//
// Unknown keys are rejected. fileName is recorded on each description.
func ReadTOML(r io.Reader, fileName string) ([]*model.TransformationDescription, error) {
	var f tomlFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml %s", fileName)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: unknown keys: %s", fileName, strings.Join(keys, ", "))
	}

	result := make([]*model.TransformationDescription, 0, len(f.Transformations))
	for i, t := range f.Transformations {
		d, err := newDescription(t.ID, t.Source, t.Target, fileName)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: transformation %d", fileName, i+1)
		}
		for j, s := range t.Steps {
			if err := addStep(d, s.Operation, s.Source, s.Target, s.Params); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: transformation %d, step %d", fileName, i+1, j+1)
			}
		}
		result = append(result, d)
	}
	return result, nil
}
