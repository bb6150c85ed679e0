// Package cli provides the interactive pdftranslator command-line client.
//
// It wires configuration, local storage, the authenticated API client and
// the services, then runs a REPL in place of the web front end: open a PDF,
// pick a page range, try a translation with the chosen prompts, upload,
// initiate translation and work through the records one by one or in bulk.
//
// Alerts published by the services are printed as they arrive. The bulk
// queue and the token refresher run in the background while the REPL waits
// for input.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
