// Command kleinpress compresses images, audio and PDFs from the terminal
// using the same engine as the desktop app.
package main
