package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"text/template"

	"buildplan/internal/plan"
)

const dockerfileTemplate = `# syntax=docker/dockerfile:1
# variant: {{ .Variant }}
FROM {{ .BaseImage }}

WORKDIR {{ .WorkDir }}
{{- if .Packages }}

RUN apt-get update \
    && apt-get install -y --no-install-recommends \
{{- range .Packages }}
       {{ . }} \
{{- end }}
    && rm -rf /var/lib/apt/lists/*
{{- end }}

COPY {{ .Manifest }} {{ .ManifestName }}
RUN pip install --no-cache-dir -r {{ .ManifestName }}

COPY . .

CMD {{ .Cmd }}
`

var dockerfileTmpl = template.Must(template.New("Dockerfile").Parse(dockerfileTemplate))

// Options tune the rendered Dockerfile.
type Options struct {
	// WorkDir is the image working directory.
	WorkDir string
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{WorkDir: "/app"}
}

type dockerfileData struct {
	Variant      string
	BaseImage    string
	WorkDir      string
	Packages     []string
	Manifest     string
	ManifestName string
	Cmd          string
}

// Dockerfile renders p with DefaultOptions.
func Dockerfile(p plan.BuildPlan) ([]byte, error) {
	return DockerfileWithOptions(p, DefaultOptions())
}

// DockerfileWithOptions renders p as a Dockerfile.
func DockerfileWithOptions(p plan.BuildPlan, opts Options) ([]byte, error) {
	if err := p.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("render %q: %w", p.VariantName, err)
	}

	if opts.WorkDir == "" {
		opts.WorkDir = DefaultOptions().WorkDir
	}

	// Exec form keeps each argv element intact without a shell.
	cmd, err := json.Marshal(p.Entrypoint)
	if err != nil {
		return nil, fmt.Errorf("encoding entrypoint: %w", err)
	}

	manifest := p.ManifestPath()

	data := dockerfileData{
		Variant:      variantLabel(p.VariantName),
		BaseImage:    p.BaseImageRef,
		WorkDir:      opts.WorkDir,
		Packages:     p.SystemPackages(),
		Manifest:     manifest,
		ManifestName: path.Base(manifest),
		Cmd:          string(cmd),
	}

	var buf bytes.Buffer
	if err := dockerfileTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing Dockerfile template: %w", err)
	}

	return buf.Bytes(), nil
}

// Filename returns the conventional file name for a variant's Dockerfile.
func Filename(variant string) string {
	if variant == "" {
		return "Dockerfile"
	}

	return "Dockerfile." + variant
}

func variantLabel(name string) string {
	if name == "" {
		return "-"
	}

	return name
}

