package plan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"buildplan/internal/common"
)

// MarshalPlanJSON serializes a plan with stable field names and order.
func MarshalPlanJSON(p BuildPlan) ([]byte, error) {
	return json.MarshalIndent(planPayloadFromPlan(p), "", "  ")
}

// MarshalPlansJSON serializes several plans as a JSON array.
func MarshalPlansJSON(plans []BuildPlan) ([]byte, error) {
	return json.MarshalIndent(planPayloads(plans), "", "  ")
}

// MarshalPlanYAML serializes a plan as YAML with the same keys as JSON.
func MarshalPlanYAML(p BuildPlan) ([]byte, error) {
	return yaml.Marshal(planPayloadFromPlan(p))
}

// MarshalPlansYAML serializes several plans as a YAML sequence.
func MarshalPlansYAML(plans []BuildPlan) ([]byte, error) {
	return yaml.Marshal(planPayloads(plans))
}

// UnmarshalPlanJSON parses the output of MarshalPlanJSON.
func UnmarshalPlanJSON(raw []byte) (BuildPlan, error) {
	var payload planPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return BuildPlan{}, err
	}

	steps := make([]InstallStep, 0, len(payload.InstallSteps))

	for i, s := range payload.InstallSteps {
		kind, ok := parseStepKind(s.Kind)
		if !ok {
			return BuildPlan{}, fmt.Errorf("install step %d: unknown kind %q", i, s.Kind)
		}

		steps = append(steps, InstallStep{
			Kind:         kind,
			Packages:     common.Clone(s.Packages),
			ManifestPath: s.ManifestPath,
		})
	}

	return BuildPlan{
		VariantName:  payload.VariantName,
		BaseImageRef: payload.BaseImageRef,
		InstallSteps: steps,
		Entrypoint:   payload.Entrypoint,
	}, nil
}

// UnmarshalPlansJSON parses the output of MarshalPlanJSON or MarshalPlansJSON.
// Every decoded plan must satisfy CheckInvariants.
func UnmarshalPlansJSON(raw []byte) ([]BuildPlan, error) {
	trimmed := bytes.TrimSpace(raw)

	var items []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
	} else {
		items = []json.RawMessage{trimmed}
	}

	plans := make([]BuildPlan, 0, len(items))

	for i, item := range items {
		p, err := UnmarshalPlanJSON(item)
		if err != nil {
			return nil, fmt.Errorf("plan %d: %w", i, err)
		}

		if err := p.CheckInvariants(); err != nil {
			return nil, fmt.Errorf("plan %d: %w", i, err)
		}

		plans = append(plans, p)
	}

	return plans, nil
}

// Comparison is the diff of one pair of plans.
type Comparison struct {
	From    string
	To      string
	Changes []FieldChange
}

// MarshalComparisonsJSON serializes comparisons with their change lists.
func MarshalComparisonsJSON(cs []Comparison) ([]byte, error) {
	return json.MarshalIndent(comparisonPayloads(cs), "", "  ")
}

// MarshalComparisonsYAML serializes comparisons as YAML.
func MarshalComparisonsYAML(cs []Comparison) ([]byte, error) {
	return yaml.Marshal(comparisonPayloads(cs))
}

type comparisonPayload struct {
	From    string          `json:"from" yaml:"from"`
	To      string          `json:"to" yaml:"to"`
	Changes []changePayload `json:"changes" yaml:"changes"`
}

func comparisonPayloads(cs []Comparison) []comparisonPayload {
	out := make([]comparisonPayload, 0, len(cs))
	for _, c := range cs {
		out = append(out, comparisonPayload{From: c.From, To: c.To, Changes: changePayloads(c.Changes)})
	}

	return out
}

type planPayload struct {
	VariantName  string        `json:"variantName" yaml:"variantName"`
	BaseImageRef string        `json:"baseImageRef" yaml:"baseImageRef"`
	InstallSteps []stepPayload `json:"installSteps" yaml:"installSteps"`
	Entrypoint   []string      `json:"entrypoint" yaml:"entrypoint"`
}

type stepPayload struct {
	Kind         string   `json:"kind" yaml:"kind"`
	Packages     []string `json:"packages,omitempty" yaml:"packages,omitempty"`
	ManifestPath string   `json:"manifestPath,omitempty" yaml:"manifestPath,omitempty"`
}

type changePayload struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
	Old  any    `json:"old,omitempty" yaml:"old,omitempty"`
	New  any    `json:"new,omitempty" yaml:"new,omitempty"`
}

func planPayloadFromPlan(p BuildPlan) planPayload {
	steps := make([]stepPayload, 0, len(p.InstallSteps))
	for _, s := range p.InstallSteps {
		steps = append(steps, stepPayload{
			Kind:         s.Kind.String(),
			Packages:     s.Packages,
			ManifestPath: s.ManifestPath,
		})
	}

	entrypoint := p.Entrypoint
	if entrypoint == nil {
		entrypoint = []string{}
	}

	return planPayload{
		VariantName:  p.VariantName,
		BaseImageRef: p.BaseImageRef,
		InstallSteps: steps,
		Entrypoint:   entrypoint,
	}
}

func planPayloads(plans []BuildPlan) []planPayload {
	out := make([]planPayload, 0, len(plans))
	for _, p := range plans {
		out = append(out, planPayloadFromPlan(p))
	}

	return out
}

func changePayloads(changes []FieldChange) []changePayload {
	out := make([]changePayload, 0, len(changes))
	for _, c := range changes {
		out = append(out, changePayload{
			Path: c.Path,
			Kind: c.Kind.String(),
			Old:  c.Old,
			New:  c.New,
		})
	}

	return out
}
