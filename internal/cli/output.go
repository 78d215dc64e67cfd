package cli

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"buildplan/internal/plan"
	"buildplan/internal/render"
	"buildplan/internal/variant"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func writePlans(w io.Writer, format Format, plans []plan.BuildPlan) error {
	var (
		out []byte
		err error
	)

	single := len(plans) == 1

	switch format {
	case FormatJSON:
		if single {
			out, err = plan.MarshalPlanJSON(plans[0])
		} else {
			out, err = plan.MarshalPlansJSON(plans)
		}

		out = append(out, '\n')
	case FormatDockerfile:
		return writeDockerfiles(w, plans)
	case FormatDump:
		dumpConfig.Fdump(w, plans)
		return nil
	default:
		if single {
			out, err = plan.MarshalPlanYAML(plans[0])
		} else {
			out, err = plan.MarshalPlansYAML(plans)
		}
	}

	if err != nil {
		return fmt.Errorf("encoding plans: %w", err)
	}

	_, err = w.Write(out)

	return err
}

func writeDockerfiles(w io.Writer, plans []plan.BuildPlan) error {
	files, err := render.DockerfilesFor(plans, render.DefaultOptions())
	if err != nil {
		return err
	}

	for i, f := range files {
		if len(files) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}

			fmt.Fprintf(w, "=== %s ===\n", f.Filename)
		}

		if _, err := w.Write(f.Content); err != nil {
			return err
		}
	}

	return nil
}

func writeComparisons(w io.Writer, format Format, cs []plan.Comparison) error {
	var (
		out []byte
		err error
	)

	switch format {
	case FormatJSON:
		out, err = plan.MarshalComparisonsJSON(cs)
		out = append(out, '\n')
	case FormatYAML:
		out, err = plan.MarshalComparisonsYAML(cs)
	case FormatDump:
		dumpConfig.Fdump(w, cs)
		return nil
	default:
		for _, c := range cs {
			if _, err := io.WriteString(w, plan.FormatChanges(c.From, c.To, c.Changes)); err != nil {
				return err
			}
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("encoding comparison: %w", err)
	}

	_, err = w.Write(out)

	return err
}

func writeDockerfileDiffs(w io.Writer, pairs [][2]variant.Entry, cs []plan.Comparison) error {
	for i, p := range pairs {
		from, err := render.Dockerfile(p[0].Plan)
		if err != nil {
			return err
		}

		to, err := render.Dockerfile(p[1].Plan)
		if err != nil {
			return err
		}

		out, err := render.UnifiedDiff(
			render.File{Filename: cs[i].From, Content: from},
			render.File{Filename: cs[i].To, Content: to},
		)
		if err != nil {
			return err
		}

		if out == "" {
			out = fmt.Sprintf("=== %s -> %s ===\nno differences\n", cs[i].From, cs[i].To)
		}

		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}

	return nil
}
