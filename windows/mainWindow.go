// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package windows holds the Fyne user interface: the main window, the
// curation grid and its popups.
package windows

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"curator/cellstate"
	"curator/config"
	"curator/correction"
	"curator/datatable"
	"curator/delegate"
	"curator/loader"
	"curator/metrics"
	"curator/validation"
	"curator/viewmodel"
)

// Options are the collaborators a MainWindow is built from.
type Options struct {
	Config  config.Config
	Rules   *validation.RuleSet
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// MainWindow is the curation window: a toolbar, a filter entry, the grid
// and a status bar.
type MainWindow struct {
	a      fyne.App
	w      fyne.Window
	cfg    config.Config
	logger *slog.Logger

	data        *datatable.Store
	states      *cellstate.Store
	adapter     *viewmodel.Adapter
	proxy       *viewmodel.Proxy
	renderer    *delegate.Renderer
	grid        *Grid
	validator   *validation.Service
	corrections *correction.Service

	toolbar   *widget.Toolbar
	filter    *widget.Entry
	tips      *ToolTipLayer
	statusBar *widget.Label
	counts    *widget.Label
	path      string

	disconnect []func()
}

// NewMainWindow builds the window on a and wires the stores, the adapter,
// the renderer and the validation and correction services together.
func NewMainWindow(a fyne.App, opts Options) (*MainWindow, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := opts.Rules
	if rules == nil {
		rules = validation.NewRuleSet()
	}
	palette, err := opts.Config.Palette.Colors()
	if err != nil {
		return nil, err
	}

	t := &MainWindow{a: a, cfg: opts.Config, logger: logger}
	t.data = datatable.NewStore(nil)
	t.states = cellstate.NewStore()
	t.validator = validation.New(t.data, t.states, rules, opts.Metrics, logger)
	t.corrections = correction.New(t.data, t.states, opts.Metrics, logger)

	t.adapter, err = viewmodel.New(t.data, t.states,
		viewmodel.WithLogger(logger),
		viewmodel.WithPalette(palette),
		viewmodel.WithValidationHandler(t.handleValidation),
	)
	if err != nil {
		return nil, err
	}
	t.proxy = viewmodel.NewProxy(t.adapter, logger)

	a.Settings().SetTheme(NewCustomTheme(opts.Config.Grid))
	t.w = a.NewWindow("Curator")
	t.w.Resize(fyne.NewSize(1000, 700))
	t.tips = NewToolTipLayer()

	menus := NewMenuPopup(t.w.Canvas())
	t.renderer = delegate.New(delegate.VariantCorrection, t.adapter,
		delegate.WithOptions(delegate.Options{IconSize: opts.Config.Grid.IconSize, Margin: opts.Config.Grid.IconMargin}),
		delegate.WithMenuPresenter(menus),
		delegate.WithToolTipPresenter(t.tips),
		delegate.WithPrompter(NewFormPrompter(t.w)),
	)
	t.disconnect = append(t.disconnect,
		t.renderer.OnValidationRequested(func(req viewmodel.ValidationRequest) {
			t.adapter.SetData(req.Coord.Row, req.Coord.Col, req.Value)
		}),
		t.renderer.OnCorrectionSelected(t.applyCorrection),
		t.states.Subscribe(func(cellstate.Change) { fyne.Do(t.updateCounts) }),
		t.proxy.OnInvalidated(func() { fyne.Do(t.updateCounts) }),
	)

	t.grid = NewGrid(t.adapter, t.proxy, t.renderer, GridOptions{
		MinColumnWidth: opts.Config.Grid.MinColumnWidth,
		Menus:          menus,
		ToolTips:       t.tips,
		Logger:         logger,
	})

	t.layout()
	return t, nil
}

func (t *MainWindow) layout() {
	t.toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.showOpenDialog),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.showExportMenu),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ConfirmIcon(), func() {
			n := t.ValidateAll()
			t.SetStatus(fmt.Sprintf("Validation complete: %d cells flagged", n))
		}),
		widget.NewToolbarAction(theme.HistoryIcon(), t.showJournalDialog),
	)

	t.filter = widget.NewEntry()
	t.filter.SetPlaceHolder("Filter rows...")
	t.filter.OnChanged = func(text string) {
		t.grid.CancelEdit()
		t.proxy.SetFilterText(text)
	}

	t.statusBar = widget.NewLabel("Ready")
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}
	t.counts = widget.NewLabel("")
	t.updateCounts()

	top := container.NewBorder(nil, nil, t.toolbar, nil, t.filter)
	bottom := container.NewBorder(nil, nil, t.statusBar, t.counts)
	content := container.NewBorder(top, bottom, nil, nil, t.grid)
	t.w.SetContent(container.NewStack(content, t.tips.Object()))
}

// Window returns the Fyne window.
func (t *MainWindow) Window() fyne.Window {
	return t.w
}

// Grid returns the curation grid.
func (t *MainWindow) Grid() *Grid {
	return t.grid
}

// ShowAndRun shows the window and runs the application loop.
func (t *MainWindow) ShowAndRun() {
	t.w.ShowAndRun()
}

// Close disconnects every subscription the window made.
func (t *MainWindow) Close() {
	for _, d := range t.disconnect {
		d()
	}
	t.disconnect = nil
	t.grid.Close()
	t.proxy.Close()
	t.adapter.Close()
}

// SetStatus updates the status bar message
func (t *MainWindow) SetStatus(message string) {
	if t.statusBar != nil {
		t.statusBar.SetText(message)
	}
}

// StatusText returns the status bar message.
func (t *MainWindow) StatusText() string {
	return t.statusBar.Text
}

// CountsText returns the row and state summary shown in the status bar.
func (t *MainWindow) CountsText() string {
	return t.counts.Text
}

func (t *MainWindow) updateCounts() {
	if t.counts == nil {
		return
	}
	byStatus := t.states.CountByStatus()
	t.counts.SetText(fmt.Sprintf("%d of %d rows | %d invalid | %d correctable | %d warnings | %d info",
		t.proxy.RowCount(), t.data.RowCount(),
		byStatus[cellstate.StatusInvalid],
		byStatus[cellstate.StatusCorrectable],
		byStatus[cellstate.StatusWarning],
		byStatus[cellstate.StatusInfo],
	))
}

// LoadFile replaces the table with the contents of path, clears every cell
// state and validates the new records.
func (t *MainWindow) LoadFile(path string) error {
	ctx, cancel := createTimeoutContext(loadTimeoutSeconds)
	defer cancel()

	t.SetStatus("Loading " + filepath.Base(path) + "...")
	tbl, err := loader.Load(ctx, path)
	if err != nil {
		t.logger.Error("file load failed", "path", path, "error", err)
		t.SetStatus("Error loading file")
		return fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}

	t.grid.CancelEdit()
	t.states.Clear()
	t.data.UpdateData(tbl)
	t.path = path
	t.applyFilterColumns()
	flagged := t.validator.ValidateAll()

	t.logger.Info("file loaded", "path", path, "rows", tbl.RowCount(), "columns", len(tbl.Columns()), "flagged", flagged)
	t.w.SetTitle("Curator - " + filepath.Base(path))
	t.SetStatus(fmt.Sprintf("Loaded %s: %d rows, %d cells flagged", filepath.Base(path), tbl.RowCount(), flagged))
	t.updateCounts()
	return nil
}

// ExportFile writes the current table to path in the format given by its
// extension.
func (t *MainWindow) ExportFile(path string) error {
	if err := loader.Export(t.data.Snapshot(), path); err != nil {
		t.logger.Error("export failed", "path", path, "error", err)
		t.SetStatus("Error exporting data")
		return err
	}
	t.logger.Info("exported", "path", path, "rows", t.data.RowCount())
	t.SetStatus("Exported to " + filepath.Base(path))
	return nil
}

// ValidateAll re-validates every cell and returns the flagged count.
func (t *MainWindow) ValidateAll() int {
	t.grid.CancelEdit()
	return t.validator.ValidateAll()
}

// WriteJournal writes the applied corrections as YAML.
func (t *MainWindow) WriteJournal(w io.Writer) error {
	return t.corrections.WriteJournal(w)
}

// applyFilterColumns restricts the filter to the configured columns that
// exist in the loaded table.
func (t *MainWindow) applyFilterColumns() {
	var indices []int
	for _, name := range t.cfg.Grid.FilterColumns {
		idx, err := t.data.ColumnIndex(name)
		if err != nil {
			t.logger.Debug("filter column not in table", "column", name)
			continue
		}
		indices = append(indices, idx)
	}
	t.proxy.SetFilterColumns(indices...)
}

func (t *MainWindow) handleValidation(req viewmodel.ValidationRequest) {
	st, err := t.validator.Handle(req)
	switch {
	case errors.Is(err, datatable.ErrWriteRejected):
		t.SetStatus("The value was rejected by the data store")
		dialog.ShowError(err, t.w)
	case err != nil:
		t.logger.Debug("validation request dropped", "error", err)
	case st.Status == cellstate.StatusValid || st.Status == cellstate.StatusNormal:
		t.SetStatus("Value accepted")
	default:
		t.SetStatus(fmt.Sprintf("Value marked %s", st.Status))
	}
}

func (t *MainWindow) applyCorrection(ev delegate.CorrectionSelected) {
	if err := t.corrections.Apply(ev.Coord, ev.Suggestion); err != nil {
		t.SetStatus("Correction failed")
		dialog.ShowError(err, t.w)
		return
	}
	t.SetStatus(fmt.Sprintf("Changed %q to %q", ev.Suggestion.OriginalValue, ev.Suggestion.CorrectedValue))
}

func (t *MainWindow) showOpenDialog() {
	openDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if reader == nil {
			// User cancelled the dialog
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if err := t.LoadFile(path); err != nil {
			dialog.ShowError(err, t.w)
		}
	}, t.w)
	openDialog.SetFilter(storage.NewExtensionFileFilter(dataExtensions))
	openDialog.Show()
}

func (t *MainWindow) showExportMenu() {
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Export as CSV...", func() { t.showExportDialog(".csv") }),
		fyne.NewMenuItem("Export as Parquet...", func() { t.showExportDialog(".parquet") }),
		fyne.NewMenuItem("Export as JSON...", func() { t.showExportDialog(".json") }),
	)
	pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(t.toolbar)
	widget.ShowPopUpMenuAtPosition(menu, t.w.Canvas(), pos.Add(fyne.NewPos(0, t.toolbar.Size().Height)))
}

func (t *MainWindow) showExportDialog(ext string) {
	if t.data.ColumnCount() == 0 {
		dialog.ShowInformation("Nothing to Export", "Open a file before exporting.", t.w)
		return
	}
	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if writer == nil {
			// User cancelled the dialog
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := t.ExportFile(path); err != nil {
			dialog.ShowError(err, t.w)
		}
	}, t.w)
	saveDialog.SetFileName(exportFileName(t.path, ext))
	saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	saveDialog.Show()
}

func (t *MainWindow) showJournalDialog() {
	if len(t.corrections.Journal()) == 0 {
		dialog.ShowInformation("No Corrections", "No corrections have been applied yet.", t.w)
		return
	}
	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if writer == nil {
			// User cancelled the dialog
			return
		}
		defer writer.Close()

		if err := t.WriteJournal(writer); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save journal: %w", err), t.w)
			return
		}
		t.SetStatus("Journal saved to " + writer.URI().Name())
	}, t.w)
	saveDialog.SetFileName(exportFileName(t.path, ".corrections.yaml"))
	saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	saveDialog.Show()
}
