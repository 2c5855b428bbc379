// Package typing tracks which connections are typing in which rooms and
// emits the aggregate typing / stop typing events. The per-room set exists
// so the last-typist edge can be detected; the typing event itself is
// re-emitted on every keystroke signal.
package typing
