package glsl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dreness/klproj/internal/project"
)

// OutputName is the explicit fragment output the legacy-output rewrite
// declares in place of gl_FragColor.
const OutputName = "fragColor"

// Adapt rewrites an ISF fragment shader body so it compiles standalone
// against the given ordered parameter list. Steps, strictly ordered:
//
//  1. drop GL2 version-conditional varying blocks and comment out varyings
//  2. substitute ISF built-ins and image macros
//  3. rewrite boolean-literal comparisons
//  4. normalize the #version directive (prepend only if absent)
//  5. synthesize one uniform declaration per parameter, in parameter
//     order, skipping names the body already declares
//  6. rewrite the legacy gl_FragColor output to a declared out variable
//
// Any ISF token left unresolved after substitution is a missing anchor and
// fails with AdaptError.
func Adapt(src string, params []project.Parameter, profile project.Profile) (string, error) {
	const stage = "fragment"

	code := versionCondRe.ReplaceAllString(src, "")
	code = commentVaryings(code)

	code = replaceWord(code, "isf_FragNormCoord", "(gl_FragCoord.xy / RENDERSIZE)")

	var err error
	for _, m := range []struct {
		name    string
		arity   int
		rewrite func(args []string) string
	}{
		{"IMG_THIS_PIXEL", 1, func(a []string) string {
			return fmt.Sprintf("texture(%s, gl_FragCoord.xy / RENDERSIZE)", a[0])
		}},
		{"IMG_NORM_THIS_PIXEL", 1, func(a []string) string {
			return fmt.Sprintf("texture(%s, gl_FragCoord.xy / RENDERSIZE)", a[0])
		}},
		{"IMG_NORM_PIXEL", 2, func(a []string) string {
			return fmt.Sprintf("texture(%s, %s)", a[0], a[1])
		}},
		{"IMG_PIXEL", 2, func(a []string) string {
			return fmt.Sprintf("texture(%s, (%s) / vec2(textureSize(%s, 0)))", a[0], a[1], a[0])
		}},
		{"IMG_SIZE", 1, func(a []string) string {
			return fmt.Sprintf("vec2(textureSize(%s, 0))", a[0])
		}},
	} {
		code, err = rewriteCalls(stage, code, m.name, m.arity, m.rewrite)
		if err != nil {
			return "", err
		}
	}

	code = rewriteBoolCompares(code)

	if err := checkResidualTokens(stage, code); err != nil {
		return "", err
	}

	code = ensureVersion(code, versionDirective(profile))

	header := synthesizeUniforms(params, code)

	// Legacy output rewrite: declare an explicit out variable unless one
	// already exists (the marker check that keeps re-runs no-ops), then
	// retarget every gl_FragColor assignment at it.
	if !outDeclRe.MatchString(code) {
		header = append(header, fmt.Sprintf("out vec4 %s;", OutputName))
	}

	if len(header) > 0 {
		lines := strings.Split(code, "\n")
		idx := headerInsertIndex(lines)
		lines = append(lines[:idx], append([]string{strings.Join(header, "\n")}, lines[idx:]...)...)
		code = strings.Join(lines, "\n")
	}

	code = replaceWord(code, "gl_FragColor", OutputName)

	return code, nil
}

// synthesizeUniforms emits uniform declarations for every parameter not
// already declared in the body, preserving parameter order.
func synthesizeUniforms(params []project.Parameter, body string) []string {
	var decls []string
	for _, p := range params {
		glslType, ok := UniformType(p.Type)
		if !ok {
			continue
		}
		if declaresUniform(body, p.VariableName) {
			continue
		}
		decls = append(decls, fmt.Sprintf("uniform %s %s;", glslType, p.VariableName))
	}
	return decls
}

var (
	residualMacroRe   = regexp.MustCompile(`\bIMG_[A-Z_]+\b`)
	residualBuiltinRe = regexp.MustCompile(`\bisf_\w+\b`)
)

// checkResidualTokens fails loudly when ISF tokens survive substitution:
// an unknown macro or built-in would otherwise reach the GLSL compiler as
// an undeclared identifier.
func checkResidualTokens(stage, code string) error {
	if m := residualMacroRe.FindString(code); m != "" {
		return &AdaptError{Stage: stage, Token: m, Message: "unsupported image macro"}
	}
	if m := residualBuiltinRe.FindString(code); m != "" {
		return &AdaptError{Stage: stage, Token: m, Message: "unsupported built-in"}
	}
	return nil
}
