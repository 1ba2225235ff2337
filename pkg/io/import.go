package io

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
)

// Extensions recognized by [ReadFile].
const (
	ExtXML            = ".xml"
	ExtTransformation = ".transformation"
	ExtTOML           = ".toml"
	ExtJSON           = ".json"
)

// IsTransformationFile reports whether path has an extension [ReadFile]
// understands.
func IsTransformationFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtXML, ExtTransformation, ExtTOML, ExtJSON:
		return true
	}
	return false
}

// ReadJSON decodes a JSON array of transformation descriptions, as written
// by encoding/json for []*model.TransformationDescription. Descriptions
// without a file name get fileName.
func ReadJSON(r io.Reader, fileName string) ([]*model.TransformationDescription, error) {
	var descs []*model.TransformationDescription
	if err := json.NewDecoder(r).Decode(&descs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json %s", fileName)
	}
	for i, d := range descs {
		if d == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: transformation %d is null", fileName, i+1)
		}
		if err := d.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: transformation %d", fileName, i+1)
		}
		for j, s := range d.Steps {
			op, err := model.ParseOperation(string(s.Operation))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: transformation %d, step %d", fileName, i+1, j+1)
			}
			d.Steps[j].Operation = op
		}
		if d.FileName == "" {
			d.FileName = fileName
		}
	}
	return descs, nil
}

// ReadFile reads the transformation file at path, choosing the decoder by
// extension: .xml and .transformation use [ReadXML], .toml [ReadTOML] and
// .json [ReadJSON]. Every description records path as its file name.
func ReadFile(path string) ([]*model.TransformationDescription, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}

	var read func(io.Reader, string) ([]*model.TransformationDescription, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtXML, ExtTransformation:
		read = ReadXML
	case ExtTOML:
		read = ReadTOML
	case ExtJSON:
		read = ReadJSON
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported transformation file %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "transformation file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	descs, err := read(f, path)
	if err != nil {
		return nil, err
	}
	for _, d := range descs {
		d.FileName = path
	}
	return descs, nil
}

// ExpandPaths replaces every directory in paths with the transformation
// files it contains, recursively and in lexical order. Plain files are kept
// as given, whatever their extension.
func ExpandPaths(paths ...string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "transformation path %s", p)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", p)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsTransformationFile(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "walk %s", p)
		}
	}
	return out, nil
}
