package io

import (
	"encoding/xml"
	"io"
	"maps"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
)

type xmlFile struct {
	XMLName         xml.Name            `xml:"transformations"`
	Transformations []xmlTransformation `xml:"transformation"`
}

type xmlTransformation struct {
	ID     string    `xml:"id,attr"`
	Source string    `xml:"source,attr"`
	Target string    `xml:"target,attr"`
	Steps  []xmlStep `xml:",any"`
}

// xmlStep is an operation element; its tag name is the operation.
type xmlStep struct {
	XMLName      xml.Name
	SourceFields []string   `xml:"source-field"`
	Grouped      []string   `xml:"source-fields>source-field"`
	TargetField  string     `xml:"target-field"`
	Params       []xmlParam `xml:"params>param"`
}

type xmlParam struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

// ReadXML decodes transformation descriptions in the XML format:
//
//	<transformations>
//	  <transformation source="Contact:1.0.0" target="Person:1.0.0" id="contact-person">
//	    <concat>
//	      <source-fields>
//	        <source-field>firstName</source-field>
//	        <source-field>lastName</source-field>
//	      </source-fields>
//	      <target-field>fullName</target-field>
//	      <params><param key="concatString" value=" "/></params>
//	    </concat>
//	  </transformation>
//	</transformations>
//
// Every element inside a transformation names an operation (see
// [model.ParseOperation]). fileName is recorded on each description.
// ReadXML does not close r.
func ReadXML(r io.Reader, fileName string) ([]*model.TransformationDescription, error) {
	var f xmlFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode xml %s", fileName)
	}

	result := make([]*model.TransformationDescription, 0, len(f.Transformations))
	for i, t := range f.Transformations {
		d, err := newDescription(t.ID, t.Source, t.Target, fileName)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: transformation %d", fileName, i+1)
		}
		for j, s := range t.Steps {
			params := make(map[string]string, len(s.Params))
			for _, p := range s.Params {
				params[p.Key] = p.Value
			}
			sources := append(s.SourceFields, s.Grouped...)
			if err := addStep(d, s.XMLName.Local, sources, s.TargetField, params); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: transformation %d, step %d", fileName, i+1, j+1)
			}
		}
		result = append(result, d)
	}
	return result, nil
}

// newDescription parses the endpoints of a transformation read from a file.
func newDescription(id, source, target, fileName string) (*model.TransformationDescription, error) {
	src, err := model.ParseModel(source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "source %q", source)
	}
	dst, err := model.ParseModel(target)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "target %q", target)
	}
	if err := errors.ValidateTransformationID(id); err != nil {
		return nil, err
	}
	return &model.TransformationDescription{ID: id, Source: src, Target: dst, FileName: fileName}, nil
}

// addStep validates one step read from a file and appends it to d. Only the
// value operation may omit source fields.
func addStep(d *model.TransformationDescription, opName string, sources []string, target string, params map[string]string) error {
	op, err := model.ParseOperation(opName)
	if err != nil {
		return err
	}
	if target == "" {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: target field is required", op)
	}
	if op != model.OpValue && len(sources) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: at least one source field is required", op)
	}
	if len(params) == 0 {
		params = nil
	}
	d.AddStep(op, sources, target, maps.Clone(params))
	return nil
}
