package domain

// Inbound events (client to server).
const (
	EventCreateRoom   = "create-room"
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
	EventToggleAudio  = "toggle-audio"
	EventToggleVideo  = "toggle-video"
	EventJoinUserRoom = "join-user-room"
	EventPing         = "ping"
	EventWhoAmI       = "whoami"
)

// Outbound events (server to client).
const (
	EventRoomCreated     = "room-created"
	EventUserJoined      = "user-joined"
	EventUserLeft        = "user-left"
	EventError           = "error"
	EventUserToggleAudio = "user-toggle-audio"
	EventUserToggleVideo = "user-toggle-video"
	EventPong            = "pong"
)

// Application notifications pushed through the per-account channel.
const (
	EventMeetingInvite    = "meeting-invite"
	EventMeetingResponse  = "meeting-response"
	EventMeetingCancelled = "meeting-cancelled"
	EventDocumentShared   = "document-shared"
	EventDocumentSigned   = "document-signed"
)

var protocolEvents = map[string]struct{}{
	EventCreateRoom: {}, EventJoinRoom: {}, EventLeaveRoom: {},
	EventOffer: {}, EventAnswer: {}, EventICECandidate: {},
	EventToggleAudio: {}, EventToggleVideo: {}, EventJoinUserRoom: {},
	EventPing: {}, EventWhoAmI: {},
	EventRoomCreated: {}, EventUserJoined: {}, EventUserLeft: {}, EventError: {},
	EventUserToggleAudio: {}, EventUserToggleVideo: {}, EventPong: {},
}

// IsProtocolEvent reports whether name belongs to the signaling protocol.
// Such events are only ever produced by the server itself.
func IsProtocolEvent(name string) bool {
	_, ok := protocolEvents[name]
	return ok
}
