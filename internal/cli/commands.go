package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"resume-studio/internal/domain"
	"resume-studio/internal/editor"
	"resume-studio/internal/model"
	"resume-studio/internal/render"
	"resume-studio/pkg/infrastructure"
)

func showCmd(rt *runtime) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current resume and its page breaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			r := a.Session.Current()
			if asJSON {
				b, err := model.MarshalExchange(r)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printSummary(cmd, r)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as exchange JSON")
	return cmd
}

func printSummary(cmd *cobra.Command, r model.Resume) {
	w := cmd.OutOrStdout()
	name := r.Basics.Name
	if strings.TrimSpace(name) == "" {
		name = dimColor.Sprint("(no name)")
	}
	fmt.Fprintln(w, headColor.Sprint(name))
	if r.Basics.Headline != "" {
		fmt.Fprintln(w, r.Basics.Headline)
	}

	counts := map[model.Section]int{
		model.SectionSummary:    len(r.Summary),
		model.SectionSkills:     len(r.Skills),
		model.SectionExperience: len(r.Experience),
		model.SectionProjects:   len(r.Projects),
		model.SectionEducation:  len(r.Education),
		model.SectionLanguages:  len(r.Languages),
	}
	fmt.Fprintln(w)
	for _, s := range model.Sections() {
		mark := "  "
		if r.Layout.Breaks.Before.Get(s) {
			mark = warnColor.Sprint("⏎ ")
		}
		line := fmt.Sprintf("%s%-11s %d", mark, s, counts[s])
		if counts[s] == 0 {
			line = dimColor.Sprint(line + " (omitted)")
		}
		fmt.Fprintln(w, line)
		if s != model.SectionExperience {
			continue
		}
		for i, e := range r.Experience {
			mark := "  "
			if r.Layout.Breaks.BeforeExperience.Has(i) {
				mark = warnColor.Sprint("⏎ ")
			}
			fmt.Fprintf(w, "    %s[%d] %s, %s\n", mark, i, e.Title, e.Company)
		}
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a file is a valid resume exchange file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			r, err := model.ImportJSON(b)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", errColor.Sprint("✗"), err)
				return err
			}
			printOK(cmd.OutOrStdout(), "%s is valid (%d roles)", args[0], len(r.Experience))
			return nil
		},
	}
}

func importCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the resume with an imported file",
	}
	for _, kind := range []string{"json", "reactive"} {
		cmd.AddCommand(&cobra.Command{
			Use:   kind + " FILE",
			Short: importShort(kind),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) (err error) {
				b, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				a, done, err := rt.open(cmd.Context())
				if err != nil {
					return err
				}
				defer closeInto(&err, done)

				var r model.Resume
				if kind == "json" {
					r, err = a.Session.ImportJSON(b)
				} else {
					r, err = a.Session.ImportReactive(b)
				}
				if err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "imported %s (%d roles)", r.Basics.Name, len(r.Experience))
				return nil
			},
		})
	}
	return cmd
}

func importShort(kind string) string {
	if kind == "json" {
		return "Import a resume exchange JSON file"
	}
	return "Import a ReactiveResume JSON export"
}

func exportCmd(rt *runtime) *cobra.Command {
	var (
		out     string
		publish bool
	)
	cmd := &cobra.Command{
		Use:   "export [pdf|docx|html|json]...",
		Short: "Export the resume; all formats when none are named",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			formats := make([]domain.Format, 0, len(args))
			for _, arg := range args {
				f, err := domain.ParseFormat(arg)
				if err != nil {
					return err
				}
				formats = append(formats, f)
			}

			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			arts, err := a.Exporter.ExportAll(cmd.Context(), a.Session.Current(), formats...)
			if err != nil {
				return err
			}
			if publish {
				arts, err = a.Exporter.Publish(cmd.Context(), arts)
				if err != nil {
					return err
				}
			} else {
				dir := out
				if dir == "" {
					dir = a.Config.Export.Dir
				}
				sink := infrastructure.NewDirSink(dir)
				for i := range arts {
					loc, err := sink.Put(cmd.Context(), arts[i])
					if err != nil {
						return err
					}
					arts[i].Location = loc
				}
			}
			for _, art := range arts {
				loc := art.Location
				if loc == "" {
					loc = dimColor.Sprint("(not published)")
				}
				extra := ""
				if art.PageCount > 0 {
					extra = fmt.Sprintf(", %d pages", art.PageCount)
				}
				printOK(cmd.OutOrStdout(), "%-5s %s (%d bytes%s)", art.Format, loc, len(art.Data), extra)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default export.dir)")
	cmd.Flags().BoolVar(&publish, "publish", false, "deliver through the configured export sink instead of --out")
	return cmd
}

func previewCmd(rt *runtime) *cobra.Command {
	var (
		out      string
		skills   string
		ats      bool
		controls bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Write the live preview page to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			err = render.Preview(f, a.Session.Current(), render.PreviewOptions{
				SkillsLayout:      render.ParseSkillsLayout(skills),
				ATS:               ats,
				ShowBreakControls: controls,
			})
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "preview written to %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "preview.html", "output file")
	cmd.Flags().StringVar(&skills, "skills", string(render.SkillsTwoCol), "skills layout: pills, twocol or compact")
	cmd.Flags().BoolVar(&ats, "ats", false, "plain ATS-friendly styling")
	cmd.Flags().BoolVar(&controls, "controls", false, "include page-break controls")
	return cmd
}

func breakCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Toggle a forced page break",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "section NAME",
		Short:     "Toggle the page break before a section",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sectionNames(),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := model.ParseSection(args[0])
			if err != nil {
				return err
			}
			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			r := a.Session.Apply(func(r model.Resume) model.Resume { return editor.ToggleSectionBreak(r, s) })
			printOK(cmd.OutOrStdout(), "page break before %s: %s", s, onOff(r.Layout.Breaks.Before.Get(s)))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "role INDEX",
		Short: "Toggle the page break before an experience entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			i, err := roleArg(a.Session.Current(), args[0])
			if err != nil {
				return err
			}
			r := a.Session.Apply(func(r model.Resume) model.Resume { return editor.ToggleExperienceBreak(r, i) })
			printOK(cmd.OutOrStdout(), "page break before role %d (%s): %s",
				i, r.Experience[i].Company, onOff(r.Layout.Breaks.BeforeExperience.Has(i)))
			return nil
		},
	})
	return cmd
}

func roleCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Remove or reorder experience entries",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rm INDEX",
		Short: "Remove an experience entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			i, err := roleArg(a.Session.Current(), args[0])
			if err != nil {
				return err
			}
			r := a.Session.Apply(func(r model.Resume) model.Resume { return editor.RemoveExperienceAt(r, i) })
			printOK(cmd.OutOrStdout(), "removed role %d; breaks before %v", i, r.Layout.Breaks.BeforeExperience.Slice())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "mv FROM TO",
		Short: "Move an experience entry; its page break moves with it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			cur := a.Session.Current()
			from, err := roleArg(cur, args[0])
			if err != nil {
				return err
			}
			to, err := roleArg(cur, args[1])
			if err != nil {
				return err
			}
			r := a.Session.Apply(func(r model.Resume) model.Resume { return editor.MoveExperience(r, from, to) })
			printOK(cmd.OutOrStdout(), "moved role %d to %d; breaks before %v", from, to, r.Layout.Breaks.BeforeExperience.Slice())
			return nil
		},
	})
	return cmd
}

func resetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the store and restore the built-in resume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			r := a.Session.Reset(cmd.Context())
			printOK(cmd.OutOrStdout(), "reset to %s", r.Basics.Name)
			return nil
		},
	}
}

func roleArg(r model.Resume, arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid role index %q", arg)
	}
	if i < 0 || i >= len(r.Experience) {
		return 0, fmt.Errorf("role index %d out of range (have %d roles)", i, len(r.Experience))
	}
	return i, nil
}

func sectionNames() []string {
	out := make([]string, 0, len(model.Sections()))
	for _, s := range model.Sections() {
		out = append(out, string(s))
	}
	return out
}

func onOff(on bool) string {
	if on {
		return warnColor.Sprint("on")
	}
	return "off"
}
