package editing

import (
	"qrtoolkit/payload"
	"qrtoolkit/qr"
)

// --- Synchronous requests (wait for Reply) ---

// SerializeReq requests to serialize the form settings.
type SerializeReq struct {
	Reply chan<- SerializeResp
}

// SerializeResp is the response for SerializeReq.
type SerializeResp struct {
	State string
	Err   error
}

// DeserializeReq requests to restore the form settings.
type DeserializeReq struct {
	State string
	Reply chan<- DeserializeResp
}

// DeserializeResp is the response for DeserializeReq.
type DeserializeResp struct {
	Err error
}

// GetSnapshotReq requests a snapshot of the current form state.
type GetSnapshotReq struct {
	Reply chan<- Snapshot
}

// --- Asynchronous requests (no Reply needed) ---

// SetModeReq switches the content mode.
type SetModeReq struct {
	Mode payload.Mode
}

// SetTextReq replaces the free text.
type SetTextReq struct {
	Text string
}

// SetContactReq replaces the contact fields.
type SetContactReq struct {
	Contact payload.Contact
}

// SetMeetingReq replaces the meeting fields.
type SetMeetingReq struct {
	Meeting payload.Meeting
}

// SetStyleReq replaces the visual style.
type SetStyleReq struct {
	Style qr.Style
}

// SetLogoReq replaces the logo path only.
type SetLogoReq struct {
	Path string
}

// SetAvailableHeightReq records the height available for the preview.
type SetAvailableHeightReq struct {
	Height int
}
