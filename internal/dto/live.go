package dto

// LiveMessage is one frame on the live websocket. Type is "snapshot" for the
// first frame and "change" afterwards; exactly one of Home or Shopping is set.
type LiveMessage struct {
	Type       string                `json:"type"`
	Collection string                `json:"collection"`
	Rev        int64                 `json:"rev,omitempty"`
	Home       *HomeResponse         `json:"home,omitempty"`
	Shopping   *ShoppingListResponse `json:"shopping,omitempty"`
}
