package glsl

import (
	"strings"

	"github.com/dreness/klproj/internal/project"
)

// DefaultVertexShader returns the minimal pass-through vertex shader used
// when a composite file ships no sidecar vertex source.
func DefaultVertexShader(profile project.Profile) string {
	if profile == project.ProfileGL2 {
		return `#version 120
attribute vec4 a_position;
uniform mat4 mvp;

void main() {
    gl_Position = mvp * a_position;
}
`
	}
	return `#version 150
in vec4 a_position;
uniform mat4 mvp;

void main() {
    gl_Position = mvp * a_position;
}
`
}

// AdaptVertex rewrites an ISF vertex shader body (a sidecar .vs file) so it
// compiles standalone. ISF vertex shaders rely on framework hooks the
// target editor does not provide:
//
//   - version-conditional varying blocks collapse to their modern branch
//   - isf_vertShaderInit() calls are removed (position setup is synthesized)
//   - isf_FragNormCoord becomes a computed normalized position
//   - a_position / mvp declarations and the gl_Position assignment are
//     injected when the body lacks them
func AdaptVertex(src string, params []project.Parameter, profile project.Profile) (string, error) {
	const stage = "vertex"

	// Keep the modern branch of version-conditional declaration blocks.
	code := versionCondRe.ReplaceAllString(src, "$2")

	// Modernize remaining varying declarations. In a vertex shader the
	// modern spelling is an out declaration.
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "varying ") || strings.HasPrefix(trimmed, "varying\t") {
			indent := line[:len(line)-len(trimmed)]
			lines[i] = indent + "out " + strings.TrimSpace(trimmed[len("varying"):])
		}
	}
	code = strings.Join(lines, "\n")

	var err error
	code, err = rewriteCalls(stage, code, "isf_vertShaderInit", 0, func([]string) string { return "" })
	if err != nil {
		return "", err
	}
	code = strings.ReplaceAll(code, "\n;\n", "\n") // dangling semicolons left by removed calls

	// The default quad spans [-1, 1]; normalize to [0, 1].
	code = replaceWord(code, "isf_FragNormCoord", "((a_position.xy + 1.0) * 0.5)")

	if err := checkResidualTokens(stage, code); err != nil {
		return "", err
	}

	code = ensureVersion(code, versionDirective(profile))

	var header []string
	if !declaresPosition(code) {
		if profile == project.ProfileGL2 {
			header = append(header, "attribute vec4 a_position;")
		} else {
			header = append(header, "in vec4 a_position;")
		}
	}
	if !declaresUniform(code, "mvp") {
		header = append(header, "uniform mat4 mvp;")
	}
	header = append(header, synthesizeUniforms(params, code)...)

	lines = strings.Split(code, "\n")
	if len(header) > 0 {
		idx := headerInsertIndex(lines)
		lines = append(lines[:idx], append([]string{strings.Join(header, "\n")}, lines[idx:]...)...)
	}

	// A vertex shader that never writes gl_Position draws nothing; inject
	// the assignment at the top of main. The main function is the anchor.
	if !containsWord(strings.Join(lines, "\n"), "gl_Position") {
		injected := false
		for i, line := range lines {
			if !strings.Contains(line, "void main") {
				continue
			}
			brace := i
			for j := i; j < len(lines); j++ {
				if strings.Contains(lines[j], "{") {
					brace = j
					break
				}
			}
			rest := append([]string{"    gl_Position = mvp * a_position;"}, lines[brace+1:]...)
			lines = append(lines[:brace+1], rest...)
			injected = true
			break
		}
		if !injected {
			return "", &AdaptError{Stage: stage, Token: "main",
				Message: "no main function to anchor the gl_Position assignment"}
		}
	}

	return strings.Join(lines, "\n"), nil
}

// declaresPosition reports whether a_position is already declared as a
// vertex input.
func declaresPosition(code string) bool {
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if (strings.HasPrefix(trimmed, "in ") || strings.HasPrefix(trimmed, "attribute ")) &&
			containsWord(line, "a_position") {
			return true
		}
	}
	return false
}
