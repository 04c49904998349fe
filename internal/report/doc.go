// Package report renders run progress and end-of-run summaries as text, a
// table or JSON.
package report
