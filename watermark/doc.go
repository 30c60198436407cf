// Package watermark persists the last millisecond a generator minted in, so a
// restarted process can skip past it.
//
// The in memory wait loop of the generator protects against the clock moving
// backwards while the process runs. It can't protect a process that restarts
// onto a clock that is behind the one its predecessor used: the new process
// starts with no memory and could mint ids the old one already handed out.
// A Keeper saves the generator's last millisecond every interval and, on
// start, resumes the generator one interval past the saved mark.
package watermark
