package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/changeprob/internal/table"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Scene int // -1 shows every scene
}

// SceneView is one scene as shown to users.
type SceneView struct {
	Index        int          `json:"index"`
	Image        string       `json:"image"`
	Objects      []ObjectView `json:"objects"`
	ChangeTarget string       `json:"change_target"`
}

// ObjectView is one object in its color slot.
type ObjectView struct {
	Color        string `json:"color"`
	Label        string `json:"label"`
	ChangeTarget bool   `json:"change_target"`
}

// TableView is the full table as shown to users.
type TableView struct {
	Name       string      `json:"name"`
	Hash       string      `json:"hash"`
	Prompts    []string    `json:"prompts"`
	Choices    []string    `json:"choices"`
	ColorSlots []string    `json:"color_slots"`
	SceneCount int         `json:"scene_count"`
	Scenes     []SceneView `json:"scenes"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [table]",
		Short: "Show a scene table",
		Long: `Show the prompts, choices, color slots and scenes of a table.

With --scene only that scene is shown; an index outside 0..count-1 is an
error (exit code 1).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, opts.tablePath(args), cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Scene, "scene", -1, "show only the scene at this index")

	return cmd
}

func runShow(opts *ShowOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	tb, err := loadOrFail(formatter, path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("scene") {
		scene, err := sceneView(tb, opts.Scene)
		if err != nil {
			return fail(formatter, ExitFailure, ErrCodeOutOfRange, err.Error(), nil)
		}
		if formatter.Format == "json" {
			return formatter.Success(scene)
		}
		writeSceneText(formatter.Writer, scene)
		return nil
	}

	view := TableView{
		Name:       tb.Name(),
		Hash:       tb.Hash(),
		Prompts:    tb.Prompts(),
		Choices:    tb.Choices(),
		ColorSlots: tb.ColorSlots(),
		SceneCount: tb.SceneCount(),
	}
	for i := 0; i < tb.SceneCount(); i++ {
		scene, err := sceneView(tb, i)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		view.Scenes = append(view.Scenes, scene)
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s (hash %s)\n\n", view.Name, shortHash(view.Hash))
	fmt.Fprintln(w, "Prompts:")
	for i, p := range view.Prompts {
		fmt.Fprintf(w, "  %d. %s\n", i+1, p)
	}
	fmt.Fprintf(w, "\nChoices: %s\n", strings.Join(view.Choices, " "))
	fmt.Fprintf(w, "Color slots: %s\n\n", strings.Join(view.ColorSlots, ", "))
	fmt.Fprintf(w, "Scenes (%d):\n", view.SceneCount)
	for _, s := range view.Scenes {
		writeSceneText(w, s)
	}
	return nil
}

func sceneView(tb *table.Table, i int) (SceneView, error) {
	image, err := tb.Scene(i)
	if err != nil {
		return SceneView{}, err
	}
	objects, err := tb.Objects(i)
	if err != nil {
		return SceneView{}, err
	}
	target, err := tb.ChangeTarget(i)
	if err != nil {
		return SceneView{}, err
	}

	view := SceneView{Index: i, Image: image, ChangeTarget: target.Label}
	for _, o := range objects {
		view.Objects = append(view.Objects, ObjectView{
			Color:        string(o.Color),
			Label:        o.Label,
			ChangeTarget: o.ChangeTarget,
		})
	}
	return view, nil
}

func writeSceneText(w io.Writer, s SceneView) {
	fmt.Fprintf(w, "  [%d] %s\n", s.Index, s.Image)
	for _, o := range s.Objects {
		marker := ""
		if o.ChangeTarget {
			marker = "  <- change"
		}
		fmt.Fprintf(w, "      %-7s %s%s\n", o.Color, o.Label, marker)
	}
}
