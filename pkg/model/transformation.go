package model

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// InternalIDPrefix marks transformation ids assigned by the model graph.
// User-supplied ids are expected not to use it.
const InternalIDPrefix = "EKBInternal-"

// IsInternalID reports whether id was assigned by the model graph.
func IsInternalID(id string) bool { return strings.HasPrefix(id, InternalIDPrefix) }

// TemporaryFieldPrefix marks intermediate fields that exist only while a
// transformation runs. They are folded away by
// [TransformationDescription.PropertyConnections].
const TemporaryFieldPrefix = "temp."

// Operation names a transformation step operation.
type Operation string

// Operations understood by the transformation language.
const (
	OpForward       Operation = "forward"
	OpConcat        Operation = "concat"
	OpSplit         Operation = "split"
	OpSplitRegex    Operation = "splitRegex"
	OpMap           Operation = "map"
	OpSubstring     Operation = "substring"
	OpValue         Operation = "value"
	OpLength        Operation = "length"
	OpTrim          Operation = "trim"
	OpToLower       Operation = "toLower"
	OpToUpper       Operation = "toUpper"
	OpReplace       Operation = "replace"
	OpReverse       Operation = "reverse"
	OpPad           Operation = "pad"
	OpRemoveLeading Operation = "removeleading"
	OpInstantiate   Operation = "instantiate"
)

var operations = map[string]Operation{}

func init() {
	for _, op := range []Operation{
		OpForward, OpConcat, OpSplit, OpSplitRegex, OpMap, OpSubstring, OpValue, OpLength,
		OpTrim, OpToLower, OpToUpper, OpReplace, OpReverse, OpPad, OpRemoveLeading, OpInstantiate,
	} {
		operations[strings.ToLower(string(op))] = op
	}
}

// ParseOperation resolves an operation name case-insensitively.
func ParseOperation(name string) (Operation, error) {
	if op, ok := operations[strings.ToLower(name)]; ok {
		return op, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown transformation operation %q", name)
}

// Step parameter keys.
const (
	ParamConcat         = "concatString"
	ParamSplit          = "splitString"
	ParamIndex          = "resultIndex"
	ParamRegex          = "regexString"
	ParamSubstringFrom  = "from"
	ParamSubstringTo    = "to"
	ParamValue          = "value"
	ParamLengthFunction = "function"
	ParamReplaceOld     = "oldString"
	ParamReplaceNew     = "newString"
	ParamPadLength      = "length"
	ParamPadCharacter   = "char"
	ParamPadDirection   = "direction"
	ParamRemoveLength   = "length"
	ParamTargetType     = "targetType"
	ParamTargetInit     = "targetTypeInit"
)

// TransformationStep is a single field operation of a transformation.
type TransformationStep struct {
	Operation    Operation         `json:"operation" toml:"operation"`
	SourceFields []string          `json:"source_fields,omitempty" toml:"source_fields,omitempty"`
	TargetField  string            `json:"target_field" toml:"target_field"`
	Params       map[string]string `json:"params,omitempty" toml:"params,omitempty"`
}

// TransformationDescription describes how a source model converts into a
// target model. In the model graph it is an edge identified by ID.
//
// An empty ID asks the graph to assign one (see [InternalIDPrefix]).
// FileName records the file the description was loaded from, if any.
type TransformationDescription struct {
	ID       string               `json:"id,omitempty"`
	Source   ModelDescription     `json:"source"`
	Target   ModelDescription     `json:"target"`
	FileName string               `json:"file_name,omitempty"`
	Steps    []TransformationStep `json:"steps,omitempty"`
}

// NewTransformation returns a description from source to target without id.
func NewTransformation(source, target ModelDescription) *TransformationDescription {
	return &TransformationDescription{Source: source, Target: target}
}

// String returns "id: source -> target".
func (d *TransformationDescription) String() string {
	id := d.ID
	if id == "" {
		id = "<unassigned>"
	}
	return id + ": " + d.Source.Key() + " -> " + d.Target.Key()
}

// Validate checks both models and the id.
func (d *TransformationDescription) Validate() error {
	if err := d.Source.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "source model")
	}
	if err := d.Target.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "target model")
	}
	return errors.ValidateTransformationID(d.ID)
}

// Clone returns a deep copy of d.
func (d *TransformationDescription) Clone() *TransformationDescription {
	c := *d
	c.Steps = make([]TransformationStep, len(d.Steps))
	for i, s := range d.Steps {
		s.SourceFields = slices.Clone(s.SourceFields)
		s.Params = maps.Clone(s.Params)
		c.Steps[i] = s
	}
	return &c
}

func (d *TransformationDescription) addStep(op Operation, target string, params map[string]string, sources ...string) {
	d.Steps = append(d.Steps, TransformationStep{
		Operation:    op,
		SourceFields: sources,
		TargetField:  target,
		Params:       params,
	})
}

// AddStep appends a step with an arbitrary operation.
func (d *TransformationDescription) AddStep(op Operation, sources []string, target string, params map[string]string) {
	d.addStep(op, target, maps.Clone(params), slices.Clone(sources)...)
}

// ForwardField copies source to target unchanged.
func (d *TransformationDescription) ForwardField(source, target string) {
	d.addStep(OpForward, target, nil, source)
}

// ConcatField joins the sources with sep into target.
func (d *TransformationDescription) ConcatField(target, sep string, sources ...string) {
	d.addStep(OpConcat, target, map[string]string{ParamConcat: sep}, sources...)
}

// SplitField splits source at sep and writes the part at index to target.
func (d *TransformationDescription) SplitField(source, target, sep, index string) {
	d.addStep(OpSplit, target, map[string]string{ParamSplit: sep, ParamIndex: index}, source)
}

// SplitRegexField splits source with regex and writes the part at index to target.
func (d *TransformationDescription) SplitRegexField(source, target, regex, index string) {
	d.addStep(OpSplitRegex, target, map[string]string{ParamRegex: regex, ParamIndex: index}, source)
}

// MapField maps source values through mapping into target.
func (d *TransformationDescription) MapField(source, target string, mapping map[string]string) {
	d.addStep(OpMap, target, maps.Clone(mapping), source)
}

// SubstringField writes source[from:to] to target.
func (d *TransformationDescription) SubstringField(source, target, from, to string) {
	d.addStep(OpSubstring, target, map[string]string{ParamSubstringFrom: from, ParamSubstringTo: to}, source)
}

// ValueField writes a constant to target.
func (d *TransformationDescription) ValueField(target, value string) {
	d.addStep(OpValue, target, map[string]string{ParamValue: value})
}

// LengthField writes the result of the length function of source to target.
func (d *TransformationDescription) LengthField(source, target, function string) {
	d.addStep(OpLength, target, map[string]string{ParamLengthFunction: function}, source)
}

// TrimField writes the trimmed source to target.
func (d *TransformationDescription) TrimField(source, target string) {
	d.addStep(OpTrim, target, nil, source)
}

// ToLowerField writes the lower-cased source to target.
func (d *TransformationDescription) ToLowerField(source, target string) {
	d.addStep(OpToLower, target, nil, source)
}

// ToUpperField writes the upper-cased source to target.
func (d *TransformationDescription) ToUpperField(source, target string) {
	d.addStep(OpToUpper, target, nil, source)
}

// ReplaceField replaces oldString with newString in source and writes target.
func (d *TransformationDescription) ReplaceField(source, target, oldString, newString string) {
	d.addStep(OpReplace, target, map[string]string{ParamReplaceOld: oldString, ParamReplaceNew: newString}, source)
}

// ReverseField writes the reversed source to target.
func (d *TransformationDescription) ReverseField(source, target string) {
	d.addStep(OpReverse, target, nil, source)
}

// PadField pads source to length with char on the given side.
func (d *TransformationDescription) PadField(source, target, length, char, direction string) {
	d.addStep(OpPad, target, map[string]string{
		ParamPadLength:    length,
		ParamPadCharacter: char,
		ParamPadDirection: direction,
	}, source)
}

// RemoveLeadingField strips up to length leading matches of regex from source.
func (d *TransformationDescription) RemoveLeadingField(source, target, regex, length string) {
	d.addStep(OpRemoveLeading, target, map[string]string{ParamRegex: regex, ParamRemoveLength: length}, source)
}

// InstantiateField builds a targetType value from source using init.
func (d *TransformationDescription) InstantiateField(source, target, targetType, init string) {
	d.addStep(OpInstantiate, target, map[string]string{ParamTargetType: targetType, ParamTargetInit: init}, source)
}

// PropertyConnections returns, for every source field, the sorted target
// fields it flows into. Temporary fields (see [TemporaryFieldPrefix]) are
// resolved to the fields they finally feed and then dropped. Steps without
// source fields contribute nothing.
func (d *TransformationDescription) PropertyConnections() map[string][]string {
	flows := make(map[string]map[string]struct{})
	for _, s := range d.Steps {
		for _, src := range s.SourceFields {
			if flows[src] == nil {
				flows[src] = make(map[string]struct{})
			}
			flows[src][s.TargetField] = struct{}{}
		}
	}

	var resolve func(field string, seen map[string]bool) []string
	resolve = func(field string, seen map[string]bool) []string {
		var out []string
		for t := range flows[field] {
			if !strings.HasPrefix(t, TemporaryFieldPrefix) {
				out = append(out, t)
				continue
			}
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, resolve(t, seen)...)
		}
		return out
	}

	result := make(map[string][]string)
	for src := range flows {
		if strings.HasPrefix(src, TemporaryFieldPrefix) {
			continue
		}
		targets := resolve(src, map[string]bool{})
		if len(targets) == 0 {
			continue
		}
		slices.Sort(targets)
		result[src] = slices.Compact(targets)
	}
	return result
}
