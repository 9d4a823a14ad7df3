// Package trailer formats test-case numbers as a commit message trailer and
// splices it into a message.
//
// A trailer is one or more lines of the form
//
//	Tests: #101, #102, #205
//
// wrapped at a fixed width. Insert places it above the trailing block of git
// instructions so that the comments git strips stay last.
package trailer
