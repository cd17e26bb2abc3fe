//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"venueplan/internal/bulk"
	"venueplan/internal/config"
	"venueplan/internal/crash"
	"venueplan/internal/domain"
	"venueplan/internal/export"
	applog "venueplan/internal/log"
	"venueplan/internal/notify"
	"venueplan/internal/session"
	"venueplan/internal/version"
)

// Run opens the plan in dir and starts the desktop editor. It returns when the
// window is closed, after pending edits were flushed.
func Run(dir string, cfg config.AppConfig, token string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("dir", dir))
	if dir == "" {
		return fmt.Errorf("no plan directory given")
	}

	fyneApp := app.NewWithID("venueplan")
	w := fyneApp.NewWindow("VenuePlan")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 800)
	w.Resize(fyne.NewSize(float32(max(winW, 800)), float32(max(winH, 600))))

	status := widget.NewLabel("Ready")
	statusNotifier := notify.Func(func(kind notify.Kind, msg string) {
		fyne.Do(func() { status.SetText(string(kind) + ": " + msg) })
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	s, err := session.Open(ctx, session.Options{Dir: dir, Config: cfg, Token: token, Notifier: statusNotifier, Logger: l})
	cancel()
	if err != nil {
		return err
	}
	defer crash.Recover(s.Handle, s.Elements)

	ctrl := s.Controller
	pc := NewPlanCanvas(ctrl)
	insp := newInspector(pc)
	pc.OnChange = insp.refresh

	title := func() string {
		p := s.Handle.Plan
		t := "VenuePlan - " + p.Name
		if p.LineID != "" {
			t += " (" + p.LineID + ")"
		}
		return t
	}
	w.SetTitle(title())

	add := func(kind domain.Kind, shape domain.Shape) func() {
		return func() {
			vp := ctrl.Viewport()
			x, y := vp.ScreenToCanvas(vp.Width/2, vp.Height/2)
			if _, err := ctrl.AddElement(kind, shape, x, y); err != nil {
				dialog.ShowError(err, w)
			}
			pc.Redraw()
		}
	}
	save := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Commit(ctx); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved " + filepath.Base(s.Handle.PlanPath))
	}
	run := func(fn func()) func() {
		return func() {
			fn()
			pc.Redraw()
		}
	}
	arrange := func(fn func() error) func() {
		return func() {
			_ = fn() // validation problems are notified by the controller
			pc.Redraw()
		}
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), save),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentAddIcon(), add(domain.KindTable, domain.ShapeCircle)),
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), add(domain.KindZone, domain.ShapeRectangle)),
		widget.NewToolbarAction(theme.InfoIcon(), add(domain.KindSpecialArea, domain.ShapeRectangle)),
		widget.NewToolbarAction(theme.WarningIcon(), add(domain.KindSecurity, domain.ShapeCircle)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), run(func() { ctrl.Undo() })),
		widget.NewToolbarAction(theme.ContentRedoIcon(), run(func() { ctrl.Redo() })),
		widget.NewToolbarAction(theme.DeleteIcon(), run(func() { ctrl.DeleteSelection() })),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), run(ctrl.ZoomIn)),
		widget.NewToolbarAction(theme.ZoomOutIcon(), run(ctrl.ZoomOut)),
		widget.NewToolbarAction(theme.ZoomFitIcon(), run(func() { ctrl.FitToContent(40) })),
	)

	exportItem := fyne.NewMenuItem("Export…", func() {
		d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			f, err := export.ParseFormat(filepath.Ext(path))
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			plan := s.Plan()
			plan.Elements = ctrl.Elements()
			if err := export.ToFile(f, plan, path, export.Options{Margin: 20}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			l.Info("exported", slog.String("format", string(f)), slog.String("path", path))
			status.SetText("Exported " + filepath.Base(path))
		}, w)
		d.SetFileName(export.FileName(s.Plan(), export.FormatPNG))
		d.Show()
	})
	saveItem := fyne.NewMenuItem("Save", save)
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	aboutItem := fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About", "VenuePlan "+version.String(), w)
	})

	undoItem := fyne.NewMenuItem("Undo", run(func() { ctrl.Undo() }))
	redoItem := fyne.NewMenuItem("Redo", run(func() { ctrl.Redo() }))
	editMenu := fyne.NewMenu("Edit",
		undoItem, redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy", run(func() { ctrl.Copy() })),
		fyne.NewMenuItem("Paste", run(func() { ctrl.Paste() })),
		fyne.NewMenuItem("Duplicate", run(func() { ctrl.Duplicate() })),
		fyne.NewMenuItem("Delete", run(func() { ctrl.DeleteSelection() })),
		fyne.NewMenuItem("Select All", run(ctrl.SelectAll)),
	)
	arrangeMenu := fyne.NewMenu("Arrange",
		fyne.NewMenuItem("Align Left", arrange(func() error { return ctrl.Align(bulk.AlignLeft) })),
		fyne.NewMenuItem("Align Center", arrange(func() error { return ctrl.Align(bulk.AlignCenter) })),
		fyne.NewMenuItem("Align Right", arrange(func() error { return ctrl.Align(bulk.AlignRight) })),
		fyne.NewMenuItem("Align Top", arrange(func() error { return ctrl.Align(bulk.AlignTop) })),
		fyne.NewMenuItem("Align Middle", arrange(func() error { return ctrl.Align(bulk.AlignMiddle) })),
		fyne.NewMenuItem("Align Bottom", arrange(func() error { return ctrl.Align(bulk.AlignBottom) })),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Distribute Horizontally", arrange(func() error { return ctrl.Distribute(bulk.Horizontal) })),
		fyne.NewMenuItem("Distribute Vertically", arrange(func() error { return ctrl.Distribute(bulk.Vertical) })),
		fyne.NewMenuItem("Match Size", arrange(func() error { return ctrl.MatchSize(nil) })),
	)
	gridItem := fyne.NewMenuItem("Snap to Grid", nil)
	guidesItem := fyne.NewMenuItem("Smart Guides", nil)
	gridItem.Checked = ctrl.Options().GridSnap
	guidesItem.Checked = ctrl.Options().Guides
	var mainMenu *fyne.MainMenu
	gridItem.Action = func() {
		gridItem.Checked = ctrl.ToggleGrid()
		mainMenu.Refresh()
		pc.Redraw()
	}
	guidesItem.Action = func() {
		guidesItem.Checked = ctrl.ToggleGuides()
		mainMenu.Refresh()
	}
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", run(ctrl.ZoomIn)),
		fyne.NewMenuItem("Zoom Out", run(ctrl.ZoomOut)),
		fyne.NewMenuItem("Reset View", run(ctrl.ResetView)),
		fyne.NewMenuItem("Fit to Content", run(func() { ctrl.FitToContent(40) })),
		fyne.NewMenuItemSeparator(),
		gridItem, guidesItem,
	)
	mainMenu = fyne.NewMainMenu(
		fyne.NewMenu("File", saveItem, exportItem, fyne.NewMenuItemSeparator(), aboutItem),
		editMenu, arrangeMenu, viewMenu,
	)
	w.SetMainMenu(mainMenu)
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { save() })

	split := container.NewHSplit(pc, insp.object())
	split.SetOffset(0.8)
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, split))
	w.Canvas().Focus(pc)

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.ShowAndRun()

	if err := s.CloseWithTimeout(); err != nil {
		l.Error("final save failed", slog.Any("err", err))
		return err
	}
	return nil
}

// inspector edits the primary selected element.
type inspector struct {
	pc      *PlanCanvas
	id      string
	shown   domain.Element
	header  *widget.Label
	name    *widget.Entry
	seats   *widget.Entry
	notes   *widget.Entry
	apply   *widget.Button
	summary *widget.Label
}

func newInspector(pc *PlanCanvas) *inspector {
	in := &inspector{
		pc:      pc,
		header:  widget.NewLabel("No selection"),
		name:    widget.NewEntry(),
		seats:   widget.NewEntry(),
		notes:   widget.NewMultiLineEntry(),
		summary: widget.NewLabel(""),
	}
	in.header.TextStyle = fyne.TextStyle{Bold: true}
	in.name.SetPlaceHolder("Name")
	in.seats.SetPlaceHolder("Seats")
	in.notes.SetPlaceHolder("Notes")
	in.apply = widget.NewButton("Apply", in.commit)
	for _, d := range []fyne.Disableable{in.name, in.seats, in.notes, in.apply} {
		d.Disable()
	}
	in.refresh()
	return in
}

func (in *inspector) object() fyne.CanvasObject {
	form := widget.NewForm(
		widget.NewFormItem("Name", in.name),
		widget.NewFormItem("Seats", in.seats),
		widget.NewFormItem("Notes", in.notes),
	)
	return container.NewVBox(in.header, widget.NewSeparator(), form, in.apply, widget.NewSeparator(), in.summary)
}

// refresh shows the primary selection. Entries keep user edits until the
// element's editable fields change underneath them (undo, redo, apply).
func (in *inspector) refresh() {
	ctrl := in.pc.Controller()
	elems := ctrl.Elements()
	seats := 0
	for _, e := range elems {
		if e.Kind == domain.KindTable {
			seats += e.Seats
		}
	}
	in.summary.SetText(fmt.Sprintf("%d elements, %d seats", len(elems), seats))

	id := ctrl.Primary()
	e, ok := ctrl.Element(id)
	if id == in.id && (!ok || sameFields(e, in.shown)) {
		return
	}
	in.id = id
	in.shown = e
	if !ok {
		in.header.SetText("No selection")
		for _, d := range []fyne.Disableable{in.name, in.seats, in.notes, in.apply} {
			d.Disable()
		}
		return
	}
	in.header.SetText(string(e.Kind))
	in.name.SetText(e.Name)
	in.notes.SetText(e.Notes)
	in.seats.SetText(strconv.Itoa(e.Seats))
	in.name.Enable()
	in.apply.Enable()
	if e.Kind == domain.KindTable {
		in.seats.Enable()
		in.notes.Enable()
	} else {
		in.seats.Disable()
		in.notes.Disable()
	}
}

func sameFields(a, b domain.Element) bool {
	return a.Kind == b.Kind && a.Name == b.Name && a.Seats == b.Seats && a.Notes == b.Notes
}

func (in *inspector) commit() {
	if in.id == "" {
		return
	}
	seats, err := strconv.Atoi(in.seats.Text)
	in.pc.Controller().UpdateElement(in.id, func(e *domain.Element) {
		e.Name = in.name.Text
		if e.Kind == domain.KindTable {
			e.Notes = in.notes.Text
			if err == nil && seats >= 0 {
				e.Seats = seats
			}
		}
	})
	in.pc.Redraw()
}
