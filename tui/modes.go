package tui

type Mode int

const (
	ModeBrowse Mode = iota
	ModeInput
	ModeMove
	ModeConfirm
	ModeSketch
	ModeSummaries
	ModeReader
)

func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "BROWSE"
	case ModeInput:
		return "INPUT"
	case ModeMove:
		return "MOVE"
	case ModeConfirm:
		return "CONFIRM"
	case ModeSketch:
		return "SKETCH"
	case ModeSummaries:
		return "SUMMARIES"
	case ModeReader:
		return "READ"
	default:
		return "UNKNOWN"
	}
}

type InputOperation int

const (
	InputNewFolder InputOperation = iota
	InputNewNote
	InputRename
	InputExportPNG
)

func (op InputOperation) prompt() string {
	switch op {
	case InputNewFolder:
		return "New folder"
	case InputNewNote:
		return "New note"
	case InputRename:
		return "Rename to"
	case InputExportPNG:
		return "Export PNG to"
	default:
		return "Input"
	}
}

type ConfirmAction int

const (
	ConfirmDeleteNode ConfirmAction = iota
	ConfirmClearCanvas
	ConfirmRemovePreset
	ConfirmOverwriteFile
)

const (
	padTop    = 1 // title line above the sketch pad
	padBottom = 1 // status line
	listTop   = 2 // breadcrumb and blank line above lists
)
