// Package browse implements the interactive variable browser.
//
// The browser lists every variable with its value. Typing filters the list
// by fuzzy matching against variable names, with matched characters
// highlighted. Up/Down (or Ctrl+P/Ctrl+N, Shift+Tab/Tab) move the cursor,
// PgUp/PgDown move a page, Enter chooses the highlighted variable, and
// Esc or Ctrl+C quits without a choice.
package browse
