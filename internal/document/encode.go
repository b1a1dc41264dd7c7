// Package document serializes a project model to the versioned,
// zlib-compressed XML container the editor opens, and parses it back.
//
// Parameters are emitted in insertion order within each scope. That order
// is a public contract: some backends pack every uniform from
// project -> pass -> stage, in list order, into a single buffer, so the
// serializer and the uniform synthesizer must agree. Both go through
// project.WalkParams.
package document

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dreness/klproj/internal/project"
)

// SerializeError reports a model invariant violation discovered while
// serializing.
type SerializeError struct {
	Err error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("serialize: %v", e.Err)
}

func (e *SerializeError) Unwrap() error { return e.Err }

// Encode renders a project as an uncompressed XML document. The model is
// validated first; an invalid model yields a SerializeError and no output.
func Encode(p *project.Project) ([]byte, error) {
	if err := project.Validate(p); err != nil {
		return nil, &SerializeError{Err: err}
	}

	w := newXMLWriter()
	w.raw("<?xml version='1.0' encoding='UTF-8'?>")

	w.open("klxml", attr{"v", strconv.Itoa(p.Version)}, attr{"a", string(p.API)})
	w.open("document")

	encodeProperties(w, &p.Props)

	w.open("params")
	w.leaf("uiExpanded", "1")
	for i := range p.Params {
		encodeParam(w, &p.Params[i])
	}
	w.close("params")

	w.open("passes")
	for _, pass := range p.Passes {
		encodePass(w, pass)
	}
	w.close("passes")

	w.close("document")
	w.close("klxml")

	return w.buf.Bytes(), nil
}

func encodeProperties(w *xmlWriter, props *project.Properties) {
	w.open("properties")
	w.leaf("creator", props.Creator)
	w.leaf("creatorVersion", props.CreatorVersion)
	w.leafInt("versionMajor", props.VersionMajor)
	w.leafInt("versionMinor", props.VersionMinor)
	w.leafInt("versionPatch", props.VersionPatch)
	w.leaf("author", props.Author)
	w.leaf("comment", props.Comment)
	w.leafBool("enabled", props.Enabled)
	w.open("size")
	w.leafInt("x", props.Width)
	w.leafInt("y", props.Height)
	w.close("size")
	w.leaf("format", props.Format)
	w.vec4("clearColor", props.ClearColor)
	w.leafInt("audioSourceType", props.AudioSourceType)
	w.leaf("audioFilePath", props.AudioFilePath)
	w.leaf("selectedRenderPassIndex", "0")
	w.leaf("selectedKontrolPanelIndex", "0")
	w.leaf("uiExpandedPreviewDocument", "1")
	w.leaf("uiExpandedPreviewRenderPass", "1")
	w.leaf("uiExpandedProperties", "1")
	w.leaf("uiExpandedAudio", "1")
	w.close("properties")
}

func encodeParam(w *xmlWriter, p *project.Parameter) {
	w.open("param", attr{"type", string(p.Type)})
	w.leaf("displayName", p.DisplayName)
	w.leaf("variableName", p.VariableName)
	w.leafBool("uiExpanded", p.UIExpanded)
	for _, prop := range p.Props {
		switch v := prop.Value.(type) {
		case float64:
			w.leafFloat(prop.Name, v)
		case string:
			w.leaf(prop.Name, v)
		case project.Vec2:
			w.vec2(prop.Name, v)
		case project.Vec3:
			w.vec3(prop.Name, v)
		case project.Vec4:
			w.vec4(prop.Name, v)
		}
	}
	w.close("param")
}

func encodePass(w *xmlWriter, pass *project.Pass) {
	w.open("pass", attr{"type", string(pass.Kind)})

	w.open("properties")
	w.leaf("label", pass.Label)
	w.leafBool("enabled", pass.Enabled)
	w.leaf("selectedShaderStageIndex", "4")
	w.leaf("primitiveIndex", "0")
	w.leaf("primitiveType", pass.PrimitiveType)
	w.leaf("instanceCount", "1")
	w.leaf("uiExpanded", "1")
	encodeRenderState(w, &pass.RenderState)
	encodeRenderTarget(w, &pass.Target)
	encodeTransform(w, &pass.Transform)
	w.close("properties")

	w.open("params")
	w.leaf("uiExpanded", "1")
	for i := range pass.Params {
		encodeParam(w, &pass.Params[i])
	}
	w.close("params")

	w.open("stages")
	for _, stage := range pass.Stages {
		encodeStage(w, stage)
	}
	w.close("stages")

	w.close("pass")
}

func encodeRenderState(w *xmlWriter, rs *project.RenderState) {
	w.open("renderstate")

	w.open("colormask")
	w.leafBool("r", rs.ColorMask.R)
	w.leafBool("g", rs.ColorMask.G)
	w.leafBool("b", rs.ColorMask.B)
	w.leafBool("a", rs.ColorMask.A)
	w.leaf("uiExpanded", "0")
	w.close("colormask")

	w.open("blendstate")
	w.leafBool("enabled", rs.Blend.Enabled)
	w.leaf("srcBlendRGB", rs.Blend.SrcRGB)
	w.leaf("dstBlendRGB", rs.Blend.DstRGB)
	w.leaf("srcBlendA", rs.Blend.SrcA)
	w.leaf("dstBlendA", rs.Blend.DstA)
	w.leaf("equationRGB", rs.Blend.EquationRGB)
	w.leaf("equationA", rs.Blend.EquationA)
	w.leaf("uiExpanded", "0")
	w.close("blendstate")

	w.open("cullstate")
	w.leafBool("enabled", rs.Cull.Enabled)
	w.leafBool("ccw", rs.Cull.CCW)
	w.leaf("uiExpanded", "0")
	w.close("cullstate")

	w.open("depthstate")
	w.leafBool("enabled", rs.Depth.Enabled)
	w.leafBool("write", rs.Depth.Write)
	w.leaf("func", rs.Depth.Func)
	w.leaf("uiExpanded", "0")
	w.close("depthstate")

	w.close("renderstate")
}

func encodeRenderTarget(w *xmlWriter, rt *project.RenderTarget) {
	w.open("rendertarget")
	w.open("size")
	w.leafInt("x", rt.Width)
	w.leafInt("y", rt.Height)
	w.close("size")
	w.leaf("resolutionMode", rt.ResolutionMode)
	w.leaf("uiExpanded", "1")

	w.open("color")
	w.leaf("format", rt.ColorFormat)
	w.vec4("clear", rt.ClearColor)
	w.leaf("uiExpanded", "0")
	w.close("color")

	w.open("depth")
	w.leafBool("clear", rt.DepthClear)
	w.leaf("uiExpanded", "0")
	w.close("depth")
	w.close("rendertarget")
}

func encodeTransform(w *xmlWriter, t *project.Transform) {
	w.open("transform")
	w.leaf("uiExpanded", "1")

	w.open("projection")
	w.leafInt("type", t.Projection.Type)
	w.open("perspective")
	w.leafFloat("fov", t.Projection.FOV)
	w.vec2("z", t.Projection.PerspectiveZ)
	w.close("perspective")
	w.open("orthographic")
	w.vec4("bounds", t.Projection.OrthoBounds)
	w.vec2("z", t.Projection.OrthoZ)
	w.close("orthographic")
	w.leaf("uiExpanded", "0")
	w.close("projection")

	w.open("view")
	w.vec3("eye", t.View.Eye)
	w.vec3("center", t.View.Center)
	w.vec3("up", t.View.Up)
	w.leaf("uiExpanded", "0")
	w.close("view")

	w.open("model")
	w.vec3("scale", t.Model.Scale)
	w.vec3("rotate", t.Model.Rotate)
	w.vec3("translate", t.Model.Translate)
	w.leaf("uiExpanded", "0")
	w.close("model")

	w.close("transform")
}

func encodeStage(w *xmlWriter, stage *project.Stage) {
	w.open("stage", attr{"type", string(stage.Kind)})

	w.open("properties")
	w.leafBool("enabled", stage.Enabled)
	w.leafBool("hidden", stage.Hidden)
	w.leafBool("locked", stage.Locked)
	w.leafBool("fileWatch", stage.FileWatch)
	w.leaf("fileWatchPath", stage.FileWatchPath)
	w.leaf("uiExpanded", "1")
	w.close("properties")

	w.open("params")
	w.leaf("uiExpanded", "1")
	for i := range stage.Params {
		encodeParam(w, &stage.Params[i])
	}
	w.close("params")

	w.open("shader")
	for _, src := range stage.Sources {
		w.open("source", attr{"profile", string(src.Profile)})
		w.text(src.Code)
		w.close("source")
	}
	w.close("shader")

	w.close("stage")
}

// xmlWriter emits a compact XML document with deterministic element order
// and locale-independent numeric formatting. Free text is escaped so
// arbitrary content (shader source included) survives unchanged.
type xmlWriter struct {
	buf bytes.Buffer
}

type attr struct {
	name  string
	value string
}

func newXMLWriter() *xmlWriter { return &xmlWriter{} }

func (w *xmlWriter) raw(s string) { w.buf.WriteString(s) }

func (w *xmlWriter) open(name string, attrs ...attr) {
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for _, a := range attrs {
		w.buf.WriteByte(' ')
		w.buf.WriteString(a.name)
		w.buf.WriteString(`="`)
		w.escape(a.value, true)
		w.buf.WriteByte('"')
	}
	w.buf.WriteByte('>')
}

func (w *xmlWriter) close(name string) {
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
}

func (w *xmlWriter) text(s string) { w.escape(s, false) }

func (w *xmlWriter) leaf(name, text string) {
	w.open(name)
	w.text(text)
	w.close(name)
}

func (w *xmlWriter) leafInt(name string, v int) { w.leaf(name, strconv.Itoa(v)) }

func (w *xmlWriter) leafBool(name string, v bool) {
	if v {
		w.leaf(name, "1")
	} else {
		w.leaf(name, "0")
	}
}

// leafFloat uses strconv's shortest round-trippable form; never
// locale-dependent.
func (w *xmlWriter) leafFloat(name string, v float64) {
	w.leaf(name, strconv.FormatFloat(v, 'g', -1, 64))
}

func (w *xmlWriter) vec2(name string, v project.Vec2) {
	w.open(name)
	w.leafFloat("x", v.X)
	w.leafFloat("y", v.Y)
	w.close(name)
}

func (w *xmlWriter) vec3(name string, v project.Vec3) {
	w.open(name)
	w.leafFloat("x", v.X)
	w.leafFloat("y", v.Y)
	w.leafFloat("z", v.Z)
	w.close(name)
}

func (w *xmlWriter) vec4(name string, v project.Vec4) {
	w.open(name)
	w.leafFloat("x", v.X)
	w.leafFloat("y", v.Y)
	w.leafFloat("z", v.Z)
	w.leafFloat("w", v.W)
	w.close(name)
}

// escape writes s with XML metacharacters replaced. Newlines pass through
// untouched so shader source stays readable in the decompressed document;
// carriage returns become character references because an XML parser
// normalizes raw \r\n and \r to \n, which would corrupt sources with
// Windows line endings on decode.
func (w *xmlWriter) escape(s string, inAttr bool) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			w.buf.WriteString("&amp;")
		case '<':
			w.buf.WriteString("&lt;")
		case '>':
			w.buf.WriteString("&gt;")
		case '\r':
			w.buf.WriteString("&#13;")
		case '"':
			if inAttr {
				w.buf.WriteString("&quot;")
			} else {
				w.buf.WriteByte(c)
			}
		default:
			w.buf.WriteByte(c)
		}
	}
}
