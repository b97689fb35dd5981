package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels the export form.
var ErrAborted = errors.New("export aborted")

// Request is what the export command needs before it can write a file.
type Request struct {
	Path   string
	Format Format
	Depth  int
}

// Complete fills in a missing Format from the Path extension, or a missing
// Path from the Format and base name. It does not prompt.
func (r *Request) Complete(base string) error {
	switch {
	case r.Path == "" && r.Format == "":
		return errors.New("output path or format required")
	case r.Format == "":
		f, err := FormatForPath(r.Path)
		if err != nil {
			return err
		}
		r.Format = f
	case r.Path == "":
		if base == "" {
			base = "tree"
		}
		r.Path = base + "." + string(r.Format)
	}
	return nil
}

// Ask prompts for the fields of r that are still empty. Callers should only
// use it when stdin is a terminal.
func (r *Request) Ask(base string) error {
	format := string(r.Format)
	if format == "" {
		format = string(FormatSVG)
	}
	path := r.Path
	depth := fmt.Sprint(r.Depth)

	options := make([]huh.Option[string], 0, len(Formats))
	for _, f := range Formats {
		options = append(options, huh.NewOption(strings.ToUpper(string(f)), string(f)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Format").
				Options(options...).
				Value(&format),
			huh.NewInput().
				Title("Output file").
				Placeholder(base+".svg").
				Value(&path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if filepath.Ext(s) == "" {
						return nil
					}
					_, err := FormatForPath(s)
					return err
				}),
			huh.NewInput().
				Title("Window depth").
				Value(&depth).
				Validate(func(s string) error {
					var n int
					if _, err := fmt.Sscan(s, &n); err != nil || n < 0 {
						return errors.New("depth must be a non-negative integer")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}

	r.Format = Format(format)
	r.Path = strings.TrimSpace(path)
	if r.Path != "" && filepath.Ext(r.Path) == "" {
		r.Path += "." + format
	}
	fmt.Sscan(depth, &r.Depth)
	return r.Complete(base)
}
