package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dreness/klproj/internal/project"
)

// DecodeError reports a document that cannot be parsed back into a model.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("decode: %s", e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses an uncompressed XML document back into a project
// equivalent to the one Encode consumed: same scoped parameter order,
// byte-identical shader source, identical pass/stage structure.
func Decode(data []byte) (*project.Project, error) {
	root, err := parseTree(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Message: "malformed XML", Err: err}
	}
	if root.name != "klxml" {
		return nil, &DecodeError{Message: fmt.Sprintf("unexpected root element <%s>, want <klxml>", root.name)}
	}

	version, err := strconv.Atoi(root.attrs["v"])
	if err != nil {
		return nil, &DecodeError{Message: "root element has no numeric format version", Err: err}
	}
	api, err := project.ParseProfile(root.attrs["a"])
	if err != nil {
		return nil, &DecodeError{Message: "root element has no valid target API", Err: err}
	}

	doc := root.child("document")
	if doc == nil {
		return nil, &DecodeError{Message: "missing <document> element"}
	}

	p := &project.Project{Version: version, API: api}
	if props := doc.child("properties"); props != nil {
		p.Props = decodeProperties(props)
	}
	if params := doc.child("params"); params != nil {
		p.Params = decodeParams(params)
	}
	if passes := doc.child("passes"); passes != nil {
		for _, passNode := range passes.childrenNamed("pass") {
			pass, err := decodePass(passNode)
			if err != nil {
				return nil, err
			}
			p.Passes = append(p.Passes, pass)
		}
	}
	return p, nil
}

func decodeProperties(n *node) project.Properties {
	props := project.Properties{
		Creator:         n.childText("creator"),
		CreatorVersion:  n.childText("creatorVersion"),
		VersionMajor:    n.childInt("versionMajor"),
		VersionMinor:    n.childInt("versionMinor"),
		VersionPatch:    n.childInt("versionPatch"),
		Author:          n.childText("author"),
		Comment:         n.childText("comment"),
		Enabled:         n.childBool("enabled"),
		Format:          n.childText("format"),
		ClearColor:      n.childVec4("clearColor"),
		AudioSourceType: n.childInt("audioSourceType"),
		AudioFilePath:   n.childText("audioFilePath"),
	}
	if size := n.child("size"); size != nil {
		props.Width = size.childInt("x")
		props.Height = size.childInt("y")
	}
	return props
}

func decodeParams(n *node) []project.Parameter {
	var params []project.Parameter
	for _, pn := range n.childrenNamed("param") {
		params = append(params, decodeParam(pn))
	}
	return params
}

// decodeParam rebuilds a parameter. Children other than the three fixed
// fields are kind-specific properties, kept in document order; a child
// with x/y/z/w children is a vector, numeric text is a scalar, anything
// else stays a string.
func decodeParam(n *node) project.Parameter {
	p := project.Parameter{
		Type:         project.ParamType(n.attrs["type"]),
		DisplayName:  n.childText("displayName"),
		VariableName: n.childText("variableName"),
		UIExpanded:   n.childBool("uiExpanded"),
	}
	for _, c := range n.children {
		switch c.name {
		case "displayName", "variableName", "uiExpanded":
			continue
		}
		p.Props = append(p.Props, project.Prop{Name: c.name, Value: decodePropValue(c)})
	}
	return p
}

func decodePropValue(n *node) any {
	if len(n.children) > 0 {
		switch len(n.children) {
		case 2:
			return project.Vec2{X: n.childFloat("x"), Y: n.childFloat("y")}
		case 3:
			return project.Vec3{X: n.childFloat("x"), Y: n.childFloat("y"), Z: n.childFloat("z")}
		default:
			return project.Vec4{X: n.childFloat("x"), Y: n.childFloat("y"), Z: n.childFloat("z"), W: n.childFloat("w")}
		}
	}
	text := n.text
	if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
		return f
	}
	return text
}

func decodePass(n *node) (*project.Pass, error) {
	kind, err := project.ParsePassKind(n.attrs["type"])
	if err != nil {
		return nil, &DecodeError{Message: "pass element", Err: err}
	}
	pass := &project.Pass{Kind: kind}

	if props := n.child("properties"); props != nil {
		pass.Label = props.childText("label")
		pass.Enabled = props.childBool("enabled")
		pass.PrimitiveType = props.childText("primitiveType")
		if rs := props.child("renderstate"); rs != nil {
			pass.RenderState = decodeRenderState(rs)
		}
		if rt := props.child("rendertarget"); rt != nil {
			pass.Target = decodeRenderTarget(rt)
		}
		if tr := props.child("transform"); tr != nil {
			pass.Transform = decodeTransform(tr)
		}
	}
	if params := n.child("params"); params != nil {
		pass.Params = decodeParams(params)
	}
	if stages := n.child("stages"); stages != nil {
		for _, sn := range stages.childrenNamed("stage") {
			stage, err := decodeStage(sn)
			if err != nil {
				return nil, err
			}
			pass.Stages = append(pass.Stages, stage)
		}
	}
	return pass, nil
}

func decodeRenderState(n *node) project.RenderState {
	var rs project.RenderState
	if cm := n.child("colormask"); cm != nil {
		rs.ColorMask = project.ColorMask{
			R: cm.childBool("r"), G: cm.childBool("g"),
			B: cm.childBool("b"), A: cm.childBool("a"),
		}
	}
	if bs := n.child("blendstate"); bs != nil {
		rs.Blend = project.BlendState{
			Enabled:     bs.childBool("enabled"),
			SrcRGB:      bs.childText("srcBlendRGB"),
			DstRGB:      bs.childText("dstBlendRGB"),
			SrcA:        bs.childText("srcBlendA"),
			DstA:        bs.childText("dstBlendA"),
			EquationRGB: bs.childText("equationRGB"),
			EquationA:   bs.childText("equationA"),
		}
	}
	if cs := n.child("cullstate"); cs != nil {
		rs.Cull = project.CullState{Enabled: cs.childBool("enabled"), CCW: cs.childBool("ccw")}
	}
	if ds := n.child("depthstate"); ds != nil {
		rs.Depth = project.DepthState{
			Enabled: ds.childBool("enabled"),
			Write:   ds.childBool("write"),
			Func:    ds.childText("func"),
		}
	}
	return rs
}

func decodeRenderTarget(n *node) project.RenderTarget {
	rt := project.RenderTarget{ResolutionMode: n.childText("resolutionMode")}
	if size := n.child("size"); size != nil {
		rt.Width = size.childInt("x")
		rt.Height = size.childInt("y")
	}
	if color := n.child("color"); color != nil {
		rt.ColorFormat = color.childText("format")
		rt.ClearColor = color.childVec4("clear")
	}
	if depth := n.child("depth"); depth != nil {
		rt.DepthClear = depth.childBool("clear")
	}
	return rt
}

func decodeTransform(n *node) project.Transform {
	var t project.Transform
	if proj := n.child("projection"); proj != nil {
		t.Projection.Type = proj.childInt("type")
		if persp := proj.child("perspective"); persp != nil {
			t.Projection.FOV = persp.childFloat("fov")
			t.Projection.PerspectiveZ = persp.childVec2("z")
		}
		if ortho := proj.child("orthographic"); ortho != nil {
			t.Projection.OrthoBounds = ortho.childVec4("bounds")
			t.Projection.OrthoZ = ortho.childVec2("z")
		}
	}
	if view := n.child("view"); view != nil {
		t.View = project.View{
			Eye:    view.childVec3("eye"),
			Center: view.childVec3("center"),
			Up:     view.childVec3("up"),
		}
	}
	if model := n.child("model"); model != nil {
		t.Model = project.Model{
			Scale:     model.childVec3("scale"),
			Rotate:    model.childVec3("rotate"),
			Translate: model.childVec3("translate"),
		}
	}
	return t
}

func decodeStage(n *node) (*project.Stage, error) {
	kind, err := project.ParseStageKind(n.attrs["type"])
	if err != nil {
		return nil, &DecodeError{Message: "stage element", Err: err}
	}
	stage := &project.Stage{Kind: kind}

	if props := n.child("properties"); props != nil {
		stage.Enabled = props.childBool("enabled")
		stage.Hidden = props.childBool("hidden")
		stage.Locked = props.childBool("locked")
		stage.FileWatch = props.childBool("fileWatch")
		stage.FileWatchPath = props.childText("fileWatchPath")
	}
	if params := n.child("params"); params != nil {
		stage.Params = decodeParams(params)
	}
	if shader := n.child("shader"); shader != nil {
		for _, sn := range shader.childrenNamed("source") {
			profile, err := project.ParseProfile(sn.attrs["profile"])
			if err != nil {
				return nil, &DecodeError{Message: fmt.Sprintf("stage %s source", kind), Err: err}
			}
			if err := stage.AddSource(profile, sn.text); err != nil {
				return nil, &DecodeError{Message: "duplicate source profile", Err: err}
			}
		}
	}
	return stage, nil
}

// node is a generic parsed XML element.
type node struct {
	name     string
	attrs    map[string]string
	text     string
	children []*node
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (n *node) childrenNamed(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) childText(name string) string {
	if c := n.child(name); c != nil {
		return c.text
	}
	return ""
}

func (n *node) childInt(name string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(n.childText(name)))
	return v
}

func (n *node) childFloat(name string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(n.childText(name)), 64)
	return v
}

func (n *node) childBool(name string) bool {
	return strings.TrimSpace(n.childText(name)) == "1"
}

func (n *node) childVec2(name string) project.Vec2 {
	if c := n.child(name); c != nil {
		return project.Vec2{X: c.childFloat("x"), Y: c.childFloat("y")}
	}
	return project.Vec2{}
}

func (n *node) childVec3(name string) project.Vec3 {
	if c := n.child(name); c != nil {
		return project.Vec3{X: c.childFloat("x"), Y: c.childFloat("y"), Z: c.childFloat("z")}
	}
	return project.Vec3{}
}

func (n *node) childVec4(name string) project.Vec4 {
	if c := n.child(name); c != nil {
		return project.Vec4{X: c.childFloat("x"), Y: c.childFloat("y"), Z: c.childFloat("z"), W: c.childFloat("w")}
	}
	return project.Vec4{}
}

// parseTree reads one XML document into a node tree. Character data is
// concatenated per element; container elements end up with empty text
// because the writer emits no indentation.
func parseTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	var stack []*node
	var root *node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			} else {
				return nil, fmt.Errorf("multiple root elements")
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				n := stack[len(stack)-1]
				if len(n.children) == 0 {
					n.text += string(t)
				}
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unterminated element <%s>", stack[len(stack)-1].name)
	}
	return root, nil
}
