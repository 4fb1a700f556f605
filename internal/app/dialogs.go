package app

import (
	"path/filepath"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"kleinpress/internal/compression"
)

var dialogFilters = map[compression.Pipeline]wailsruntime.FileFilter{
	compression.PipelineImage: {DisplayName: "Images (*.jpg, *.png, *.webp, *.gif, *.bmp, *.tiff)", Pattern: "*.jpg;*.jpeg;*.png;*.webp;*.gif;*.bmp;*.tif;*.tiff"},
	compression.PipelineWebP:  {DisplayName: "Images (*.jpg, *.png, *.gif, *.bmp, *.tiff)", Pattern: "*.jpg;*.jpeg;*.png;*.gif;*.bmp;*.tif;*.tiff"},
	compression.PipelineAudio: {DisplayName: "Audio (*.mp3, *.wav, *.flac, *.ogg, *.m4a)", Pattern: "*.mp3;*.wav;*.flac;*.ogg;*.oga;*.m4a;*.aac;*.opus;*.webm"},
	compression.PipelinePDF:   {DisplayName: "PDF Files (*.pdf)", Pattern: "*.pdf"},
}

// OpenFileDialog opens a file selection dialog for the given pipeline
func (a *App) OpenFileDialog(pipelineName string) ([]string, error) {
	p, err := compression.ParsePipeline(pipelineName)
	if err != nil {
		return nil, err
	}

	selection, err := wailsruntime.OpenMultipleFilesDialog(a.ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select files to compress",
		Filters: []wailsruntime.FileFilter{dialogFilters[p]},
	})

	if err != nil {
		return nil, err
	}

	return selection, nil
}

// OpenDirectoryDialog opens a directory selection dialog
func (a *App) OpenDirectoryDialog() (string, error) {
	selection, err := wailsruntime.OpenDirectoryDialog(a.ctx, wailsruntime.OpenDialogOptions{
		Title: "Select download folder",
	})

	if err != nil {
		return "", err
	}

	return selection, nil
}

// ShowSaveDialog opens a file save dialog
func (a *App) ShowSaveDialog(filename string) (string, error) {
	options := wailsruntime.SaveDialogOptions{
		Title:           "Save result",
		DefaultFilename: filename,
	}
	if a.config != nil {
		options.DefaultDirectory = a.config.Paths.OutputDir
	}
	if ext := filepath.Ext(filename); ext != "" {
		options.Filters = []wailsruntime.FileFilter{{DisplayName: ext + " files", Pattern: "*" + ext}}
	}

	selection, err := wailsruntime.SaveFileDialog(a.ctx, options)

	if err != nil {
		return "", err
	}

	return selection, nil
}

// OpenFile opens a file using the system default application
func (a *App) OpenFile(filePath string) error {
	wailsruntime.BrowserOpenURL(a.ctx, "file://"+filePath)
	return nil
}
