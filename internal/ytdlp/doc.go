// Package ytdlp wraps the yt-dlp command line tool.
//
// The client translates extraction requests into argument lists and
// launches the external process. Launching is abstracted behind an
// Executor so tests exercise argument construction and outcome handling
// without a real binary.
package ytdlp
