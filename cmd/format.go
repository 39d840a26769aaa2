package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/toolbar"
)

// formatAction is one text-toolbar action reachable from the CLI.
type formatAction struct {
	needsValue bool
	apply      func(s *session, value string) error
}

func markAction(fn func(t *toolbar.TextToolbar, d *doc.Document) error) formatAction {
	return formatAction{apply: func(s *session, _ string) error { return fn(s.text, s.doc) }}
}

func valueAction(fn func(t *toolbar.TextToolbar, d *doc.Document, v string) error) formatAction {
	return formatAction{needsValue: true, apply: func(s *session, v string) error { return fn(s.text, s.doc, v) }}
}

// dialogAction answers a dialog with value, or with the dialog's default
// when value is empty.
func dialogAction(kind toolbar.DialogKind, needsValue bool) formatAction {
	return formatAction{needsValue: needsValue, apply: func(s *session, v string) error {
		req, err := s.text.Request(kind)
		if err != nil {
			return err
		}
		if v == "" {
			v = req.Default
		}
		return s.text.Resolve(s.doc, req, v, true)
	}}
}

var formatActions = map[string]formatAction{
	"bold":        markAction((*toolbar.TextToolbar).ToggleBold),
	"italic":      markAction((*toolbar.TextToolbar).ToggleItalic),
	"underline":   markAction((*toolbar.TextToolbar).ToggleUnderline),
	"strike":      markAction((*toolbar.TextToolbar).ToggleStrike),
	"baseline":    markAction((*toolbar.TextToolbar).ToggleBaseline),
	"superscript": markAction((*toolbar.TextToolbar).ToggleSuperscript),
	"subscript":   markAction((*toolbar.TextToolbar).ToggleSubscript),
	"highlight": {apply: func(s *session, v string) error {
		return s.text.ToggleHighlight(s.doc, v)
	}},
	"color":             valueAction((*toolbar.TextToolbar).SetTextColor),
	"align":             valueAction((*toolbar.TextToolbar).SetTextAlign),
	"font-family":       valueAction((*toolbar.TextToolbar).SetFontFamily),
	"font-size":         valueAction((*toolbar.TextToolbar).SetFontSize),
	"font-style":        valueAction((*toolbar.TextToolbar).SetFontStyle),
	"link":              dialogAction(toolbar.DialogLink, true),
	"image":             dialogAction(toolbar.DialogImage, true),
	"table":             dialogAction(toolbar.DialogTable, true),
	"line-spacing":      dialogAction(toolbar.DialogLineSpacing, false),
	"paragraph-spacing": dialogAction(toolbar.DialogParagraphSpacing, false),
}

// NewFormatCmd creates the format subcommand.
func NewFormatCmd(io DocumentIO) *cobra.Command {
	var (
		flags    mutateFlags
		from, to int
		value    string
	)

	names := make([]string, 0, len(formatActions))
	for name := range formatActions {
		names = append(names, name)
	}
	slices.Sort(names)
	cmd := &cobra.Command{
		Use:          "format <action> <document>",
		Short:        "Apply a text formatting action to a range of a document",
		Long:         "Actions: " + strings.Join(names, ", "),
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			action, ok := formatActions[name]
			if !ok {
				return emitPGE002AndError(cmd, flags.jsonMode, fmt.Errorf("unknown action %q (want one of %s)", name, strings.Join(names, ", ")))
			}
			if action.needsValue && value == "" {
				return emitPGE002AndError(cmd, flags.jsonMode, fmt.Errorf("%s needs --value", name))
			}
			summary := fmt.Sprintf("Applied %s to %s", name, sanitizePath(path))
			return runMutation(cmd, io, path, flags, summary, func(s *session) error {
				end := to
				if end < 0 {
					end = s.doc.ContentSize()
				}
				s.doc.SetSelection(from, end)
				return action.apply(s, value)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&from, "from", 0, "start position of the selection")
	cmd.Flags().IntVar(&to, "to", -1, "end position of the selection (default: end of document)")
	cmd.Flags().StringVar(&value, "value", "", "argument of the action: color, alignment, font, URL, RxC or spacing")
	return cmd
}
