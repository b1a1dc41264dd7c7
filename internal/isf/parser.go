package isf

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
)

// MaxFileSize bounds how much composite input the parser will accept.
// Anything larger is rejected up front rather than letting later pipeline
// stages chew on a pathological file.
const MaxFileSize = 8 << 20

// ParseError reports missing or malformed composite metadata.
type ParseError struct {
	File    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: parse: %s: %v", e.File, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: parse: %s", e.File, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateInputError reports two input descriptors sharing a name. The
// parser never resolves this by precedence: picking either input silently
// would produce a wrong uniform set downstream.
type DuplicateInputError struct {
	File string
	Name string
}

func (e *DuplicateInputError) Error() string {
	return fmt.Sprintf("%s: parse: duplicate input name %q", e.File, e.Name)
}

// metadataRe matches the leading comment block holding the JSON metadata.
// The block must be the first non-whitespace content of the file.
var metadataRe = regexp.MustCompile(`(?s)\A\s*/\*\s*(\{.*?\})\s*\*/`)

type inputMeta struct {
	Name     *string  `json:"NAME"`
	Type     *string  `json:"TYPE"`
	Label    string   `json:"LABEL"`
	Default  any      `json:"DEFAULT"`
	Min      any      `json:"MIN"`
	Max      any      `json:"MAX"`
	Identity any      `json:"IDENTITY"`
	Values   []any    `json:"VALUES"`
	Labels   []string `json:"LABELS"`
}

type passMeta struct {
	Target      string `json:"TARGET"`
	Persistent  any    `json:"PERSISTENT"` // bool, 0/1, or "true" in the wild
	Float       any    `json:"FLOAT"`
	Width       any    `json:"WIDTH"` // expression string or number
	Height      any    `json:"HEIGHT"`
	Description string `json:"DESCRIPTION"`
	Name        string `json:"NAME"`
}

type metadata struct {
	ISFVSN      any             `json:"ISFVSN"`
	VSN         any             `json:"VSN"`
	Description string          `json:"DESCRIPTION"`
	Credit      string          `json:"CREDIT"`
	Categories  []string        `json:"CATEGORIES"`
	Inputs      []inputMeta     `json:"INPUTS"`
	Passes      []passMeta      `json:"PASSES"`
	Imported    json.RawMessage `json:"IMPORTED"`
}

// Parse reads and parses a composite file from disk.
func Parse(path string) (*Shader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, &ParseError{File: path,
			Message: fmt.Sprintf("file is %d bytes, larger than the %d byte limit", info.Size(), MaxFileSize)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses composite content. name is used in error messages only.
func ParseBytes(data []byte, name string) (*Shader, error) {
	if len(data) > MaxFileSize {
		return nil, &ParseError{File: name,
			Message: fmt.Sprintf("input is %d bytes, larger than the %d byte limit", len(data), MaxFileSize)}
	}

	m := metadataRe.FindSubmatchIndex(data)
	if m == nil {
		return nil, &ParseError{File: name,
			Message: "no JSON metadata block (file must start with /* { ... } */)"}
	}

	var meta metadata
	if err := json.Unmarshal(data[m[2]:m[3]], &meta); err != nil {
		return nil, &ParseError{File: name, Message: "invalid JSON metadata", Err: err}
	}

	shader := &Shader{
		ISFVersion:  anyToString(meta.ISFVSN, "2"),
		Version:     anyToString(meta.VSN, ""),
		Description: meta.Description,
		Credit:      meta.Credit,
		Categories:  meta.Categories,
		Body:        string(data[m[1]:]),
	}

	names := make(map[string]bool)
	for i, in := range meta.Inputs {
		if in.Name == nil || *in.Name == "" {
			return nil, &ParseError{File: name,
				Message: fmt.Sprintf("input %d is missing required key NAME", i)}
		}
		if in.Type == nil || *in.Type == "" {
			return nil, &ParseError{File: name,
				Message: fmt.Sprintf("input %q is missing required key TYPE", *in.Name)}
		}
		if names[*in.Name] {
			return nil, &DuplicateInputError{File: name, Name: *in.Name}
		}
		names[*in.Name] = true

		shader.Inputs = append(shader.Inputs, Input{
			Name:     *in.Name,
			Type:     *in.Type,
			Label:    in.Label,
			Default:  in.Default,
			Min:      in.Min,
			Max:      in.Max,
			Identity: in.Identity,
			Values:   anyToInts(in.Values),
			Labels:   in.Labels,
		})
	}

	for _, p := range meta.Passes {
		shader.Passes = append(shader.Passes, PassDef{
			Target:      p.Target,
			Persistent:  anyToBool(p.Persistent),
			Float:       anyToBool(p.Float),
			Width:       anyToString(p.Width, ""),
			Height:      anyToString(p.Height, ""),
			Description: p.Description,
			Name:        p.Name,
		})
	}

	if imports, err := parseImported(meta.Imported); err != nil {
		return nil, &ParseError{File: name, Message: "invalid IMPORTED block", Err: err}
	} else {
		shader.Imported = imports
	}

	return shader, nil
}

// parseImported accepts the IMPORTED block in either of its observed shapes:
// an object mapping name -> {PATH: ...} (or name -> path string), or an
// array (usually empty, ignored).
func parseImported(raw json.RawMessage) ([]Import, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err == nil {
		names := make([]string, 0, len(asMap))
		for name := range asMap {
			names = append(names, name)
		}
		sort.Strings(names)
		var imports []Import
		for _, name := range names {
			entry := asMap[name]
			var obj struct {
				Path string `json:"PATH"`
			}
			if err := json.Unmarshal(entry, &obj); err == nil && obj.Path != "" {
				imports = append(imports, Import{Name: name, Path: obj.Path})
				continue
			}
			var path string
			if err := json.Unmarshal(entry, &path); err != nil {
				return nil, fmt.Errorf("imported image %q has no usable PATH", name)
			}
			imports = append(imports, Import{Name: name, Path: path})
		}
		return imports, nil
	}
	var asList []any
	if err := json.Unmarshal(raw, &asList); err == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("IMPORTED is neither an object nor an array")
}

func anyToString(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fallback
	}
}

func anyToBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}

func anyToInts(vs []any) []int {
	if len(vs) == 0 {
		return nil
	}
	out := make([]int, 0, len(vs))
	for _, v := range vs {
		if f, ok := v.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}
