// Show-changed-tests lists the test cases whose Gherkin scenarios are touched
// by the staged changes and records them as a commit message trailer.
//
// Scenarios carry their test-case number in a tag such as @tc:1234. A changed
// step marks its scenario; a changed background marks every scenario it
// applies to.
//
// Usage:
//
//	show-changed-tests                          # print the trailer for staged changes
//	show-changed-tests --format json            # structured report
//	show-changed-tests --commit HEAD            # analyse a commit instead
//	show-changed-tests .git/COMMIT_EDITMSG      # insert the trailer into a message
//	show-changed-tests hook install             # run on every commit
package main
