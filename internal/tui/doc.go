/*
Package tui implements the interactive insight form.

The screen is a single page: a text area for the input, a submit control,
an error banner and the "Key Insights" result block. Submitting runs the
extraction in a tea.Cmd so the UI stays responsive; completion arrives as
a message tagged with the submission's generation and only the latest
generation is applied.

While a request is in flight the submit control is disabled and further
submissions are ignored. A failed request keeps the previous result on
screen and marks it "(previous)" so it is never mistaken for the answer
to the current input.

Overlays:

  - history: past submissions stored in SQLite, fuzzy searchable;
    selecting one restores its input and result
  - query: a JMESPath expression applied to the displayed result
*/
package tui
