package ipfplot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// SavePlot saves an ipfplot.Convergence/Heatmap plot to a file, detecting
// the format from filename's extension.
//
// Supported formats:
//   - .png → PNG (raster graphics)
//   - .svg → SVG (vector graphics)
//   - .pdf → PDF (vector graphics)
//
// Example:
//
//	err := SavePlot(conv, "fit_convergence.png", 10, 6)
func SavePlot(p *plot.Plot, filename string, width, height float64) error {
	if filename == "" {
		return fmt.Errorf("filename is empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png":
		return SavePNG(p, filename, width, height)
	case ".svg":
		return SaveSVG(p, filename, width, height)
	case ".pdf":
		return SavePDF(p, filename, width, height)
	default:
		return fmt.Errorf("unsupported format: %s (use .png, .svg, or .pdf)", ext)
	}
}

// SavePNG saves a plot to a PNG file (96 DPI raster graphics).
func SavePNG(p *plot.Plot, filename string, width, height float64) error {
	return save(p, filename, width, height, "PNG")
}

// SaveSVG saves a plot to an SVG file (scalable vector graphics).
func SaveSVG(p *plot.Plot, filename string, width, height float64) error {
	return save(p, filename, width, height, "SVG")
}

// SavePDF saves a plot to a PDF file (vector graphics for documents).
func SavePDF(p *plot.Plot, filename string, width, height float64) error {
	return save(p, filename, width, height, "PDF")
}

// save does the common validation, directory creation, and gonum
// plot.Plot.Save call shared by SavePNG/SaveSVG/SavePDF — the three
// formats differ only in the error message's format name, since
// plot.Plot.Save itself dispatches on filename's extension.
func save(p *plot.Plot, filename string, width, height float64, format string) error {
	if p == nil {
		return fmt.Errorf("plot is nil")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions: width=%f, height=%f", width, height)
	}

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	w := vg.Length(width) * vg.Inch
	h := vg.Length(height) * vg.Inch
	if err := p.Save(w, h, filename); err != nil {
		return fmt.Errorf("failed to save %s: %w", format, err)
	}
	return nil
}
