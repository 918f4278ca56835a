package shaders

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/yanuz/graphics/lib/utils"
)

//go:embed *.frag *.vert
var templateDir embed.FS

const (
	VertexTemplate   = "triangle.vert"
	FragmentTemplate = "triangle.frag"

	// GLSLVersion matches the fixed 4.1 core context
	GLSLVersion = "410 core"
)

type Shaderer struct {
	templates *template.Template
}

func NewShaderer() (*Shaderer, error) {
	s := &Shaderer{}

	var err error

	s.templates, err = template.New("").
		Funcs(template.FuncMap{"glfloat": glFloat}).
		ParseFS(templateDir, "*.frag", "*.vert")

	return s, err
}

// ShaderData contains stuff that gets passed to the shader
type ShaderData struct {
	GLSLVersion   string
	PositionIndex uint32
	PositionName  string
	Colour        utils.Colour
}

func (s *Shaderer) GetShaderSource(name string, data *ShaderData) (string, error) {
	var b bytes.Buffer
	err := s.templates.ExecuteTemplate(&b, name, data)
	if err != nil {
		return "", fmt.Errorf("error while rendering template: %s", err)
	}

	return b.String(), nil
}

// Sources is the pair of texts one program is built from.
type Sources struct {
	Vertex   string
	Fragment string
}

// LoadSources renders the built-in templates, replacing either stage with
// the contents of the given file when its path is not empty.
func (s *Shaderer) LoadSources(vertexPath, fragmentPath string, data *ShaderData) (Sources, error) {
	var src Sources
	var err error

	src.Vertex, err = s.stageSource(vertexPath, VertexTemplate, data)
	if err != nil {
		return Sources{}, fmt.Errorf("could not get vertex shader: %w", err)
	}
	src.Fragment, err = s.stageSource(fragmentPath, FragmentTemplate, data)
	if err != nil {
		return Sources{}, fmt.Errorf("could not get fragment shader: %w", err)
	}
	return src, nil
}

func (s *Shaderer) stageSource(path string, templateName string, data *ShaderData) (string, error) {
	if path == "" {
		return s.GetShaderSource(templateName, data)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", fmt.Errorf("%s is empty", path)
	}
	return string(b), nil
}

// glFloat always renders a decimal point so the literal is a GLSL float
func glFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
