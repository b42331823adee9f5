// Package lang holds the UI string table pushed to the rendering surface.
package lang

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Lang is the surface's string table. Empty fields are "unset" so a Lang
// doubles as a partial patch.
type Lang struct {
	MagnifierPositionLabel string `json:"magnifier_position_label,omitempty" yaml:"magnifier_position_label,omitempty"`
	OperationOkTitle       string `json:"operation_ok_title,omitempty" yaml:"operation_ok_title,omitempty"`
	OperationCancelTitle   string `json:"operation_cancel_title,omitempty" yaml:"operation_cancel_title,omitempty"`
	OperationSaveTitle     string `json:"operation_save_title,omitempty" yaml:"operation_save_title,omitempty"`
	OperationRedoTitle     string `json:"operation_redo_title,omitempty" yaml:"operation_redo_title,omitempty"`
	OperationUndoTitle     string `json:"operation_undo_title,omitempty" yaml:"operation_undo_title,omitempty"`
	OperationMosaicTitle   string `json:"operation_mosaic_title,omitempty" yaml:"operation_mosaic_title,omitempty"`
	OperationTextTitle     string `json:"operation_text_title,omitempty" yaml:"operation_text_title,omitempty"`
	OperationBrushTitle    string `json:"operation_brush_title,omitempty" yaml:"operation_brush_title,omitempty"`
	OperationArrowTitle    string `json:"operation_arrow_title,omitempty" yaml:"operation_arrow_title,omitempty"`
	OperationEllipseTitle  string `json:"operation_ellipse_title,omitempty" yaml:"operation_ellipse_title,omitempty"`
	OperationRectTitle     string `json:"operation_rectangle_title,omitempty" yaml:"operation_rectangle_title,omitempty"`
}

// IsZero reports whether no field is set.
func (l Lang) IsZero() bool { return l == Lang{} }

// Merge returns l with every non-empty field of patch applied.
func (l Lang) Merge(patch Lang) Lang {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&l.MagnifierPositionLabel, patch.MagnifierPositionLabel)
	set(&l.OperationOkTitle, patch.OperationOkTitle)
	set(&l.OperationCancelTitle, patch.OperationCancelTitle)
	set(&l.OperationSaveTitle, patch.OperationSaveTitle)
	set(&l.OperationRedoTitle, patch.OperationRedoTitle)
	set(&l.OperationUndoTitle, patch.OperationUndoTitle)
	set(&l.OperationMosaicTitle, patch.OperationMosaicTitle)
	set(&l.OperationTextTitle, patch.OperationTextTitle)
	set(&l.OperationBrushTitle, patch.OperationBrushTitle)
	set(&l.OperationArrowTitle, patch.OperationArrowTitle)
	set(&l.OperationEllipseTitle, patch.OperationEllipseTitle)
	set(&l.OperationRectTitle, patch.OperationRectTitle)
	return l
}

// ZhCN is the surface's default table.
var ZhCN = Lang{
	MagnifierPositionLabel: "坐标",
	OperationOkTitle:       "确定",
	OperationCancelTitle:   "取消",
	OperationSaveTitle:     "保存",
	OperationRedoTitle:     "重做",
	OperationUndoTitle:     "撤销",
	OperationMosaicTitle:   "马赛克",
	OperationTextTitle:     "文本",
	OperationBrushTitle:    "画笔",
	OperationArrowTitle:    "箭头",
	OperationEllipseTitle:  "椭圆",
	OperationRectTitle:     "矩形",
}

var EnUS = Lang{
	MagnifierPositionLabel: "Position",
	OperationOkTitle:       "OK",
	OperationCancelTitle:   "Cancel",
	OperationSaveTitle:     "Save",
	OperationRedoTitle:     "Redo",
	OperationUndoTitle:     "Undo",
	OperationMosaicTitle:   "Mosaic",
	OperationTextTitle:     "Text",
	OperationBrushTitle:    "Brush",
	OperationArrowTitle:    "Arrow",
	OperationEllipseTitle:  "Ellipse",
	OperationRectTitle:     "Rectangle",
}

var (
	builtinTags   = []language.Tag{language.SimplifiedChinese, language.AmericanEnglish}
	builtinTables = []Lang{ZhCN, EnUS}
	matcher       = language.NewMatcher(builtinTags)
)

// ForLocale returns the built-in table closest to a BCP 47 tag. ok is false
// when the tag is empty, unparsable or matches nothing.
func ForLocale(tag string) (Lang, bool) {
	if tag == "" {
		return Lang{}, false
	}
	t, err := language.Parse(tag)
	if err != nil {
		return Lang{}, false
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return Lang{}, false
	}
	return builtinTables[idx], true
}

// LoadFile reads a partial table from YAML.
func LoadFile(path string) (Lang, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lang{}, fmt.Errorf("read lang file: %w", err)
	}
	var l Lang
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Lang{}, fmt.Errorf("parse lang file %s: %w", path, err)
	}
	return l, nil
}

// Resolve builds the initial table from a locale and an optional YAML file
// of overrides. It returns nil when neither yields anything, meaning the
// surface keeps its own defaults.
func Resolve(locale, file string) (*Lang, error) {
	base, _ := ForLocale(locale)
	if file != "" {
		patch, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		base = base.Merge(patch)
	}
	if base.IsZero() {
		return nil, nil
	}
	return &base, nil
}
