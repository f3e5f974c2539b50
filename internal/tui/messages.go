package tui

import (
	"github.com/wethinkt/go-folio/internal/document"
	"github.com/wethinkt/go-folio/internal/positionstore"
	"github.com/wethinkt/go-folio/internal/timer"
)

// NavigateMsg asks the reader to jump to Page. The event server sends it
// through tea.Program.Send.
type NavigateMsg struct {
	Page int
}

// timerFiredMsg delivers a scheduled timer back to the update loop.
type timerFiredMsg struct {
	fire timer.Fire
}

// pageRenderedMsg carries one finished render.
type pageRenderedMsg struct {
	result document.Result
}

// positionLoadedMsg is sent when the persisted position has been read.
type positionLoadedMsg struct {
	pos positionstore.Position
	err error
}

// positionSavedMsg is sent after a position write.
type positionSavedMsg struct {
	pos positionstore.Position
	err error
}

// pageCountMsg carries the authoritative page count of the open source.
type pageCountMsg struct {
	total int
	err   error
}

// docChangedMsg is sent when the watcher sees the file change.
type docChangedMsg struct {
	path string
}

// sourceReloadedMsg carries a freshly opened source after a change on disk.
type sourceReloadedMsg struct {
	src   document.Source
	total int
	err   error
}

// configSavedMsg is sent after a settings change has been written.
type configSavedMsg struct {
	err error
}

// scrollFrameMsg advances the smooth scroll animation.
type scrollFrameMsg struct {
	seq int
}
