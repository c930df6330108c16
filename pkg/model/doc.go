// Package model defines the recommendation form model consumed by the form
// state machine and the renderers. A FormModel lists the four recommendation
// methods offered by the selector and the identifier fields that can back the
// single visible text input. Each field carries a visibility rule evaluated
// against the selected method so exactly one field is bound at a time.
package model
