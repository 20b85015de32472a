// Package template renders reminder message templates supplied by the
// surrounding administration app. Substitution is purely textual: recognized
// variables are replaced, unknown ones are left verbatim so a typo in a
// template degrades visibly instead of failing the whole batch.
package template

import "strings"

// Variable names recognized in message templates.
const (
	VarStudentName  = "student_name"
	VarGroupName    = "group_name"
	VarCurrentDate  = "date"
	VarLastPresence = "last_presence"
)

// Vars holds the per-recipient substitution values.
type Vars struct {
	StudentName  string
	GroupName    string
	CurrentDate  string
	LastPresence string
}

// Render replaces {variable} tokens in tmpl with the values in vars.
func Render(tmpl string, vars Vars) string {
	replacer := strings.NewReplacer(
		"{"+VarStudentName+"}", vars.StudentName,
		"{"+VarGroupName+"}", vars.GroupName,
		"{"+VarCurrentDate+"}", vars.CurrentDate,
		"{"+VarLastPresence+"}", vars.LastPresence,
	)
	return replacer.Replace(tmpl)
}
