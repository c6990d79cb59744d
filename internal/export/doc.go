// Package export renders carousel slides to 1080x1080 images and assembles
// them into PNG files or a one-slide-per-page PDF.
//
// Rendering is done on a fogleman/gg canvas with the Go fonts. Slide imagery is
// fetched best effort: when it cannot be loaded the slide keeps its plain
// background.
package export
