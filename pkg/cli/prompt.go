package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"forge-hq/t3dport/pkg/importer"
)

// PromptOptions holds the initial values of the request form.
type PromptOptions struct {
	Mode        importer.Mode
	Source      string
	Destination string

	// Input and Output default to the terminal.
	Input  io.Reader
	Output io.Writer

	// Accessible replaces the form with plain line prompts.
	Accessible bool
}

// PromptRequest asks for the import mode, source directory and
// destination. Fields already set in opts are offered as defaults.
func PromptRequest(opts PromptOptions) (importer.Request, error) {
	mode := string(opts.Mode)
	if mode == "" {
		mode = string(importer.ModeScene)
	}
	src, dest := opts.Source, opts.Destination

	modes := make([]huh.Option[string], 0, len(importer.Modes))
	for _, m := range importer.Modes {
		modes = append(modes, huh.NewOption(modeLabel(m), string(m)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Import mode").
				Options(modes...).
				Value(&mode),
			huh.NewInput().
				Title("Source directory").
				Description("Folder holding the exported .T3D documents").
				Value(&src).
				Validate(validateSource),
			huh.NewInput().
				Title("Destination").
				Description("Package path objects are created under, e.g. Maps/Forest").
				Value(&dest).
				Validate(validateDestination),
		),
	).WithAccessible(opts.Accessible)

	if opts.Input != nil {
		form = form.WithInput(opts.Input)
	}
	if opts.Output != nil {
		form = form.WithOutput(opts.Output)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return importer.Request{}, fmt.Errorf("prompt aborted: %w", err)
		}
		return importer.Request{}, fmt.Errorf("prompt failed: %w", err)
	}

	parsed, err := importer.ParseMode(mode)
	if err != nil {
		return importer.Request{}, err
	}
	return importer.Request{
		Mode:        parsed,
		Source:      importer.NormalizeSource(strings.TrimSpace(src)),
		Destination: importer.NormalizeDestination(strings.TrimSpace(dest)),
	}, nil
}

func modeLabel(m importer.Mode) string {
	switch m {
	case importer.ModeScene:
		return "Scene (PersistentLevel.T3D)"
	case importer.ModeMesh:
		return "Static meshes"
	case importer.ModeMaterial:
		return "Materials"
	case importer.ModeMaterialInstance:
		return "Material instances"
	default:
		return string(m)
	}
}

func validateSource(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("source directory is required")
	}
	return nil
}

func validateDestination(s string) error {
	d := importer.NormalizeDestination(strings.TrimSpace(s))
	if d == "" {
		return errors.New("destination is required")
	}
	if strings.Contains(d, "//") {
		return errors.New("destination must not contain empty path segments")
	}
	return nil
}
