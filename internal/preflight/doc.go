// Package preflight provides readiness checks for the filesystem paths and
// external tools furymod depends on.
//
// These checks run in two contexts:
//   - The install command calls RunAll before touching game files. If any
//     check fails, the install stops before anything is written.
//   - The CLI "furymod status" command uses individual check functions
//     (CheckDirectoryAccess, CheckSystemDeps, InspectGame) to display readiness.
//
// Encoder checks are limited to the tools the installed Sounds and Video
// folders actually need.
package preflight
