// Package robot provides input injection, screen capture and window focus
// through robotgo. It is compiled only with the robotgo build tag because
// robotgo requires cgo and platform X11/Win32/Cocoa headers. OCR is added
// with the tesseract build tag.
//
// The provider has no Reader and no ActionPerformer: tree locators fail with
// platform.ErrUnsupported unless a snapshot supplies the tree, and toggle and
// focus fall back to clicks.
package robot
