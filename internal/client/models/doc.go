// Package models defines the client-side data model of pdftranslator: the
// session, uploaded files, translation records, prompt presets and user
// settings, in the shape the backend exchanges them.
package models
